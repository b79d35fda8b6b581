package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	// Bilingual requirement text with Turkish characters and HDL names.
	tokens := Tokenize("Sistem AXI_DMA_0 üzerinden çalışacak")
	assert.Contains(t, tokens, "axi_dma_0")
	assert.Contains(t, tokens, "sistem")
	assert.Contains(t, tokens, "çalışacak")

	// Sorted and unique.
	assert.Equal(t, tokens, Tokenize("çalışacak sistem axi_dma_0 sistem üzerinden"))
}

func TestTerms(t *testing.T) {
	terms := Terms("Bu projede DMA ile veri transferi olacak")
	assert.Contains(t, terms, "dma")
	assert.Contains(t, terms, "veri")
	assert.NotContains(t, terms, "bu")
	assert.NotContains(t, terms, "ile")
	assert.NotContains(t, terms, "olacak")
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "axi_dma", BaseName("axi_dma_0"))
	assert.Equal(t, "axi_dma", BaseName("AXI_DMA_12"))
	assert.Equal(t, "clk_wiz", BaseName("clk_wiz"))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, EditDistance("uart", "uart"))
	assert.Equal(t, 1, EditDistance("uart", "usart"))
	assert.Equal(t, 2, EditDistance("spi", "qspi_"))
	assert.Equal(t, 4, EditDistance("", "gpio"))
}

func TestAliasTable(t *testing.T) {
	table := NewAliasTable(map[string][]string{
		"DMA ": {"axi_dma", " AXI_CDMA"},
		"":     {"ignored"},
	})

	assert.Equal(t, []string{"axi_cdma", "axi_dma"}, table.Lookup("dma"))
	assert.Equal(t, []string{"axi_cdma", "axi_dma"}, table.Lookup("DMA"))
	assert.Nil(t, table.Lookup("uart"))

	var nilTable *AliasTable
	assert.Nil(t, nilTable.Lookup("dma"))
}
