package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/boothsync/internal/survey"
)

func TestCheckPIN(t *testing.T) {
	cfg := survey.AppConfig{AdminPIN: "Feria2025"}

	assert.True(t, CheckPIN(cfg, "Feria2025"))
	assert.True(t, CheckPIN(cfg, "FERIA2025"))
	assert.True(t, CheckPIN(cfg, "feria2025"))
	assert.False(t, CheckPIN(cfg, "feria2024"))
	assert.False(t, CheckPIN(cfg, ""))
}

func TestCheckPIN_TrimsEnteredPIN(t *testing.T) {
	cfg := survey.AppConfig{AdminPIN: "1234"}
	assert.True(t, CheckPIN(cfg, " 1234"))
	assert.True(t, CheckPIN(cfg, "1234\t\n"))
	assert.False(t, CheckPIN(cfg, "12 34"))
}

func TestSectorLabel(t *testing.T) {
	assert.Equal(t, "PABELLÓN A", SectorLabel("Pabellón a"))
	assert.Equal(t, "", SectorLabel(""))
}

func TestCheckPIN_UnicodeFolding(t *testing.T) {
	cfg := survey.AppConfig{AdminPIN: "ÑANDÚ"}
	assert.True(t, CheckPIN(cfg, "ñandú"))
}

func TestAddRemoveProduct(t *testing.T) {
	cfg := survey.AppConfig{AvailableProducts: []string{"A", "B"}}

	assert.True(t, AddProduct(&cfg, "  C "))
	assert.False(t, AddProduct(&cfg, "c"), "duplicates ignore case")
	assert.False(t, AddProduct(&cfg, "   "))
	assert.Equal(t, []string{"A", "B", "C"}, cfg.AvailableProducts)

	assert.True(t, RemoveProduct(&cfg, "b"))
	assert.False(t, RemoveProduct(&cfg, "missing"))
	assert.Equal(t, []string{"A", "C"}, cfg.AvailableProducts)
}

func TestRemoveProduct_DoesNotAliasOriginal(t *testing.T) {
	original := []string{"A", "B", "C"}
	cfg := survey.AppConfig{AvailableProducts: original}

	RemoveProduct(&cfg, "A")
	assert.Equal(t, []string{"A", "B", "C"}, original)
	assert.Equal(t, []string{"B", "C"}, cfg.AvailableProducts)
}
