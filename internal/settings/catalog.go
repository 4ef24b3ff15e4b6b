package settings

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/boothsync/internal/survey"
)

// CheckPIN reports whether pin matches the configured admin PIN, ignoring
// case and any space around the entered pin. This is a UI gate, not a
// credential check.
func CheckPIN(cfg survey.AppConfig, pin string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(pin)) == fold.String(cfg.AdminPIN)
}

// SectorLabel returns the form in which a sector name is stored: upper
// case, so every device of a stand shows the same label.
func SectorLabel(name string) string {
	return cases.Upper(language.Spanish).String(name)
}

// AddProduct appends name to the catalog unless an equal entry (ignoring
// case and surrounding space) already exists. Reports whether it was added.
func AddProduct(cfg *survey.AppConfig, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || indexOfProduct(cfg.AvailableProducts, name) >= 0 {
		return false
	}
	cfg.AvailableProducts = append(cfg.AvailableProducts, name)
	return true
}

// RemoveProduct deletes the catalog entry matching name. Reports whether an
// entry was removed. Responses that already reference the product keep it.
func RemoveProduct(cfg *survey.AppConfig, name string) bool {
	i := indexOfProduct(cfg.AvailableProducts, strings.TrimSpace(name))
	if i < 0 {
		return false
	}
	cfg.AvailableProducts = append(cfg.AvailableProducts[:i:i], cfg.AvailableProducts[i+1:]...)
	return true
}

func indexOfProduct(products []string, name string) int {
	fold := cases.Fold()
	want := fold.String(name)
	for i, p := range products {
		if fold.String(strings.TrimSpace(p)) == want {
			return i
		}
	}
	return -1
}
