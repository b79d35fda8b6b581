package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/archtrace/lattice/cmd/lattice/commands"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}
	commands.Execute()
}
