package server

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/archtrace/lattice/internal/config"
	"github.com/archtrace/lattice/internal/embed"
	"github.com/archtrace/lattice/internal/engine"
	"github.com/archtrace/lattice/internal/engine/strategy"
	"github.com/archtrace/lattice/internal/lexicon"
	"github.com/archtrace/lattice/internal/model"
	"github.com/archtrace/lattice/internal/store"
)

type Server struct {
	Engine *engine.Engine
	Store  store.Store
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	st, err := store.Open(context.Background(), cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}

	var embedder embed.Client
	if cfg.Embedding.APIKey != "" || cfg.Embedding.Provider == "ollama" {
		embedder, err = embed.NewClient(context.Background(), cfg.Embedding)
		if err != nil {
			log.Fatalf("Failed to initialize embedding client: %v", err)
		}
	} else {
		log.Println("No embedding credentials configured, semantic matching disabled")
	}

	res := &strategy.Resources{
		Aliases:  lexicon.NewAliasTable(cfg.Matching.Aliases),
		Embedder: embedder,
		Matching: cfg.Matching,
	}

	return &Server{
		Engine: engine.New(cfg, st, res),
		Store:  st,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.POST("/runs", s.CreateRun)
	r.GET("/runs/:id/findings", s.RunFindings)
	r.GET("/runs/:id/matches", s.RunMatches)
	r.POST("/paths/confidence", s.PathConfidence)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) CreateRun(c *gin.Context) {
	var snap model.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Engine.Run(c.Request.Context(), &snap)
	if err != nil {
		log.Printf("Failed to run matching: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run matching"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) RunFindings(c *gin.Context) {
	findings, err := s.Store.FindingsByRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("Failed to load findings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load findings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings})
}

func (s *Server) RunMatches(c *gin.Context) {
	matches, err := s.Store.MatchesByRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("Failed to load matches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

type PathConfidenceRequest struct {
	NodeIDs []string `json:"node_ids"`
	EdgeIDs []string `json:"edge_ids"`
}

// PathConfidence evaluates the effective confidence of a derivation path.
// Every referenced node and edge must exist; an unknown id is a client
// error, the endpoint never substitutes a default for missing elements.
func (s *Server) PathConfidence(c *gin.Context) {
	var req PathConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	nodeConfs, err := s.Store.NodeConfidences(c.Request.Context(), req.NodeIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	edgeConfs, err := s.Store.EdgeConfidences(c.Request.Context(), req.EdgeIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nodes := make([]model.Confidence, 0, len(req.NodeIDs))
	for _, id := range req.NodeIDs {
		nodes = append(nodes, nodeConfs[id])
	}
	edges := make([]model.Confidence, 0, len(req.EdgeIDs))
	for _, id := range req.EdgeIDs {
		edges = append(edges, edgeConfs[id])
	}

	c.JSON(http.StatusOK, gin.H{"confidence": engine.ChainConfidence(nodes, edges)})
}
