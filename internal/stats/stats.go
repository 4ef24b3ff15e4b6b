// Package stats computes the read-only dashboard views over stored
// responses. Nothing here is persisted; every call recomputes from the
// current record set.
package stats

import (
	"context"
	"fmt"

	"github.com/roach88/boothsync/internal/survey"
)

// NoSector labels responses collected on a device without a sector name.
const NoSector = "Sin sector"

// NPSBreakdown classifies answered scores into the usual three bands.
type NPSBreakdown struct {
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
	// Score is %promoters - %detractors over the classified responses.
	Score float64 `json:"score"`
}

// Summary is the dashboard view of a record set.
type Summary struct {
	Count              int                 `json:"count"`
	AverageNPS         float64             `json:"averageNps"`
	RoleDistribution   map[survey.Role]int `json:"roleDistribution"`
	PendingSync        int                 `json:"pendingSync"`
	InterestRate       float64             `json:"interestRate"`
	ProductInterest    map[string]int      `json:"productInterest"`
	SectorDistribution map[string]int      `json:"sectorDistribution"`
	NPS                NPSBreakdown        `json:"nps"`
}

// Compute derives a Summary from rs. Only scores in [0,10] enter AverageNPS
// and the NPS breakdown; foreign records with a missing or unreadable score
// still count everywhere else. Catalog items are reported in
// ProductInterest even when nobody selected them; products outside the
// catalog are counted as well.
//
// Maps are never nil, so an empty set encodes as {} rather than null.
func Compute(rs []survey.Response, catalog []string) Summary {
	s := Summary{
		RoleDistribution:   make(map[survey.Role]int),
		ProductInterest:    make(map[string]int, len(catalog)),
		SectorDistribution: make(map[string]int),
	}
	for _, p := range catalog {
		s.ProductInterest[p] = 0
	}
	if len(rs) == 0 {
		return s
	}

	var npsSum, interested, scored int
	for _, r := range rs {
		if r.NPS >= survey.NPSMin && r.NPS <= survey.NPSMax {
			npsSum += r.NPS
			scored++
		}

		role := r.Role
		if !role.IsKnown() {
			role = survey.RoleOther
		}
		s.RoleDistribution[role]++

		if !r.IsSynced() {
			s.PendingSync++
		}

		if r.InterestedInInfo {
			interested++
			for _, p := range r.SelectedProducts {
				s.ProductInterest[p]++
			}
		}

		sector := r.SectorName
		if sector == "" {
			sector = NoSector
		}
		s.SectorDistribution[sector]++

		switch {
		case r.NPS >= 9 && r.NPS <= survey.NPSMax:
			s.NPS.Promoters++
		case r.NPS >= 7 && r.NPS <= 8:
			s.NPS.Passives++
		case r.NPS >= survey.NPSMin && r.NPS <= 6:
			s.NPS.Detractors++
		}
	}

	s.Count = len(rs)
	if scored > 0 {
		s.AverageNPS = float64(npsSum) / float64(scored)
		s.NPS.Score = percent(s.NPS.Promoters, scored) - percent(s.NPS.Detractors, scored)
	}
	s.InterestRate = percent(interested, len(rs))
	return s
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Source is where the aggregator reads responses from.
type Source interface {
	Responses(ctx context.Context) ([]survey.Response, error)
}

// CatalogSource supplies the configured product list.
type CatalogSource interface {
	GetConfig(ctx context.Context) (survey.AppConfig, error)
}

// Aggregator computes summaries on demand from a live store.
type Aggregator struct {
	source  Source
	catalog CatalogSource
}

// NewAggregator creates an aggregator. catalog may be nil.
func NewAggregator(source Source, catalog CatalogSource) *Aggregator {
	return &Aggregator{source: source, catalog: catalog}
}

// Summary reads the current responses and computes their Summary.
func (a *Aggregator) Summary(ctx context.Context) (Summary, error) {
	rs, err := a.source.Responses(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("stats: %w", err)
	}
	var products []string
	if a.catalog != nil {
		cfg, err := a.catalog.GetConfig(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("stats: %w", err)
		}
		products = cfg.AvailableProducts
	}
	return Compute(rs, products), nil
}
