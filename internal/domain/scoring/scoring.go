// Package scoring ranks catalog cards by impact so the most consequential
// checks come first, independent of how often they recur.
package scoring

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/wardwatch/internal/domain/catalog"
	"github.com/okian/wardwatch/internal/domain/model"
)

// Severity bounds and the fallback for cards missing from the table.
const (
	minSeverity     = 1
	maxSeverity     = 5
	defaultSeverity = 2
	criticalBonus   = 1
)

// defaultSeverities rates the shipped catalog cards.
var defaultSeverities = map[string]int{
	catalog.CardMedicalGas:        5,
	catalog.CardGenerator:         5,
	catalog.CardSterilizers:       4,
	catalog.CardElevators:         4,
	catalog.CardBoilers:           4,
	catalog.CardFireAlarm:         5,
	catalog.CardHydrants:          4,
	catalog.CardExtinguishers:     3,
	catalog.CardEmergencyLighting: 3,
	catalog.CardUPS:               3,
	catalog.CardLegionella:        3,
	catalog.CardElectricalPanels:  3,
	catalog.CardSSMMedical:        3,
	catalog.CardSSMInduction:      2,
	catalog.CardSSMEIP:            2,
	catalog.CardEvacuationPlan:    2,
	catalog.CardHVAC:              2,
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSeverities replaces the severity table. Values are clamped to 1..5 and
// a non-positive fallback keeps the default of 2.
func WithSeverities(table map[string]int, fallback int) Option {
	return func(s *Scorer) {
		s.severities = make(map[string]int, len(table))
		for id, v := range table {
			s.severities[id] = clampSeverity(v)
		}
		if fallback > 0 {
			s.fallback = clampSeverity(fallback)
		}
	}
}

// WithLanguage sets the collation used to break impact ties.
func WithLanguage(tag language.Tag) Option {
	return func(s *Scorer) {
		s.lang = tag
	}
}

// Ranked pairs a card with its computed impact.
type Ranked struct {
	model.MaintenanceCard
	Impact int `json:"impact"`
}

// Scorer computes impact scores from a fixed severity table.
type Scorer struct {
	severities map[string]int
	fallback   int
	lang       language.Tag
}

// New creates a Scorer over the default table with Romanian collation.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		severities: defaultSeverities,
		fallback:   defaultSeverity,
		lang:       language.Romanian,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Severity returns the table value for id, or the fallback when absent.
func (s *Scorer) Severity(id string) int {
	if v, ok := s.severities[id]; ok {
		return clampSeverity(v)
	}
	return s.fallback
}

// ImpactOf is severity plus one for critical cards.
func (s *Scorer) ImpactOf(card model.MaintenanceCard) int {
	impact := s.Severity(card.ID)
	if card.Critical {
		impact += criticalBonus
	}
	return impact
}

// SortByImpactDesc returns a new slice ordered by impact descending, ties by
// case-insensitive locale-aware title. The sort is stable.
func (s *Scorer) SortByImpactDesc(cards []model.MaintenanceCard) []model.MaintenanceCard {
	ranked := s.Rank(cards)
	out := make([]model.MaintenanceCard, len(ranked))
	for i, r := range ranked {
		out[i] = r.MaintenanceCard
	}
	return out
}

// Rank is SortByImpactDesc with the impact attached to each card.
func (s *Scorer) Rank(cards []model.MaintenanceCard) []Ranked {
	out := make([]Ranked, len(cards))
	for i, c := range cards {
		out[i] = Ranked{MaintenanceCard: c, Impact: s.ImpactOf(c)}
	}
	// Collators keep internal buffers; one per call.
	col := collate.New(s.lang, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b Ranked) int {
		if a.Impact != b.Impact {
			return b.Impact - a.Impact
		}
		return col.CompareString(a.Title, b.Title)
	})
	return out
}

var std = New()

// ImpactOf scores card with the default table.
func ImpactOf(card model.MaintenanceCard) int { return std.ImpactOf(card) }

// SortByImpactDesc orders cards with the default table.
func SortByImpactDesc(cards []model.MaintenanceCard) []model.MaintenanceCard {
	return std.SortByImpactDesc(cards)
}

// Rank ranks cards with the default table.
func Rank(cards []model.MaintenanceCard) []Ranked { return std.Rank(cards) }

func clampSeverity(v int) int {
	if v < minSeverity {
		return minSeverity
	}
	if v > maxSeverity {
		return maxSeverity
	}
	return v
}
