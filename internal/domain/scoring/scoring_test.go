package scoring_test

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/okian/wardwatch/internal/domain/catalog"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestImpactOf(t *testing.T) {
	Convey("Given the shipped catalog", t, func() {
		cards := catalog.AllCards()

		Convey("Then every impact lies in [2,6]", func() {
			for _, c := range cards {
				impact := scoring.ImpactOf(c)
				So(impact, ShouldBeBetweenOrEqual, 2, 6)
				So(scoring.ImpactOf(c), ShouldEqual, impact)
			}
		})

		Convey("Then the lowest rated card still scores two", func() {
			for _, c := range cards {
				if c.ID == catalog.CardHVAC {
					So(c.Critical, ShouldBeFalse)
					So(scoring.ImpactOf(c), ShouldEqual, 2)
				}
			}
		})

		Convey("Then critical adds exactly one", func() {
			for _, c := range cards {
				plain, crit := c, c
				plain.Critical = false
				crit.Critical = true
				So(scoring.ImpactOf(crit)-scoring.ImpactOf(plain), ShouldEqual, 1)
			}
		})
	})

	Convey("Given a card missing from the severity table", t, func() {
		card := model.MaintenanceCard{ID: "unknown-check", Title: "Necunoscut"}

		Convey("Then it falls back to severity 2", func() {
			So(scoring.ImpactOf(card), ShouldEqual, 2)
			card.Critical = true
			So(scoring.ImpactOf(card), ShouldEqual, 3)
		})
	})

	Convey("Given a custom table with out-of-range values", t, func() {
		s := scoring.New(scoring.WithSeverities(map[string]int{"a": 9, "b": -3}, 0))

		Convey("Then values are clamped and the fallback stays 2", func() {
			So(s.Severity("a"), ShouldEqual, 5)
			So(s.Severity("b"), ShouldEqual, 1)
			So(s.Severity("c"), ShouldEqual, 2)
		})
	})
}

func TestSortByImpactDesc(t *testing.T) {
	Convey("Given cards with shared impacts and mixed-case titles", t, func() {
		s := scoring.New(scoring.WithSeverities(map[string]int{
			"hi": 5, "x": 3, "y": 3, "z": 3, "w": 3,
		}, 2), scoring.WithLanguage(language.Romanian))
		cards := []model.MaintenanceCard{
			{ID: "x", Title: "zona b", Frequency: "zilnic"},
			{ID: "y", Title: "Ascensor", Frequency: "anual"},
			{ID: "low", Title: "Alfa"},
			{ID: "z", Title: "ăla", Frequency: "lunar"},
			{ID: "hi", Title: "Zeta"},
			{ID: "w", Title: "Bloc"},
		}

		Convey("When sorted", func() {
			sorted := s.SortByImpactDesc(cards)

			Convey("Then impact is non-increasing", func() {
				for i := 1; i < len(sorted); i++ {
					So(s.ImpactOf(sorted[i-1]), ShouldBeGreaterThanOrEqualTo, s.ImpactOf(sorted[i]))
				}
			})

			Convey("Then ties follow locale-aware, case-insensitive title order", func() {
				titles := make([]string, 0, len(sorted))
				for _, c := range sorted {
					titles = append(titles, c.Title)
				}
				// Romanian collation places ă after a and before b.
				So(titles, ShouldResemble, []string{"Zeta", "Ascensor", "ăla", "Bloc", "zona b", "Alfa"})
			})

			Convey("Then the input is untouched and sorting is idempotent", func() {
				So(cards[0].ID, ShouldEqual, "x")
				So(s.SortByImpactDesc(sorted), ShouldResemble, sorted)
			})
		})

		Convey("When ranked", func() {
			ranked := s.Rank(cards)

			Convey("Then the impact is attached", func() {
				So(ranked[0].ID, ShouldEqual, "hi")
				So(ranked[0].Impact, ShouldEqual, 5)
				So(ranked[len(ranked)-1].Impact, ShouldEqual, 2)
			})
		})
	})

	Convey("Given cards differing only in frequency", t, func() {
		a := model.MaintenanceCard{ID: "same", Title: "Bravo", Frequency: "zilnic"}
		b := model.MaintenanceCard{ID: "same", Title: "Alfa", Frequency: "anual"}

		Convey("Then frequency never influences ordering", func() {
			sorted := scoring.SortByImpactDesc([]model.MaintenanceCard{a, b})
			So(sorted[0].Title, ShouldEqual, "Alfa")
			So(sorted[1].Title, ShouldEqual, "Bravo")
		})
	})
}
