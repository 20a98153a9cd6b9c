package catalog_test

import (
	"testing"

	"github.com/okian/wardwatch/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given the static catalog", t, func() {
		cards := catalog.AllCards()

		Convey("Then card ids are unique", func() {
			seen := map[string]bool{}
			for _, c := range cards {
				So(seen[c.ID], ShouldBeFalse)
				seen[c.ID] = true
			}
			So(len(cards), ShouldEqual, len(catalog.MaintenanceCards())+len(catalog.SafetyCards()))
		})

		Convey("Then callers cannot mutate the shared data", func() {
			first := catalog.MaintenanceCards()
			first[0].Title = "changed"
			first[0].Fields[0] = "changed"
			again := catalog.MaintenanceCards()
			So(again[0].Title, ShouldNotEqual, "changed")
			So(again[0].Fields[0], ShouldNotEqual, "changed")
		})

		Convey("When looking up questionnaires", func() {
			q, ok := catalog.Questionnaire(catalog.QuestionnaireFireSafety)
			So(ok, ShouldBeTrue)
			So(len(q.Questions), ShouldBeGreaterThan, 0)

			_, ok = catalog.Questionnaire("missing")
			So(ok, ShouldBeFalse)
		})
	})
}
