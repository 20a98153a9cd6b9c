package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/wardwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(s string) *string { return &s }

func TestParseStatus(t *testing.T) {
	Convey("Given stored status spellings", t, func() {
		Convey("When the value is a closed variant", func() {
			Convey("Then it canonicalizes to closed", func() {
				for _, raw := range []string{"closed", "Closed", "Închis", "inchis", "ÎNCHIS", " done ", "Finalizat", "rezolvat"} {
					So(model.ParseStatus(raw), ShouldEqual, model.StatusClosed)
				}
			})
		})

		Convey("When the value is absent or unknown", func() {
			Convey("Then it defaults to open", func() {
				for _, raw := range []string{"", "open", "Deschis", "in lucru", "pending"} {
					So(model.ParseStatus(raw), ShouldEqual, model.StatusOpen)
				}
			})
		})
	})
}

func TestStatusJSONBoundary(t *testing.T) {
	Convey("Given a task payload written by the legacy pages", t, func() {
		payload := `{"id":"t1","title":"Verificare stingătoare","priority":"Ridicată","status":"Închis","area":"ssm","subdomain":null}`

		Convey("When it is decoded", func() {
			var task model.Task
			err := json.Unmarshal([]byte(payload), &task)

			Convey("Then status and priority are canonical", func() {
				So(err, ShouldBeNil)
				So(task.Status, ShouldEqual, model.StatusClosed)
				So(task.Priority, ShouldEqual, model.PriorityHigh)
				So(task.IsOpen(), ShouldBeFalse)
				So(task.Subdomain, ShouldBeNil)
			})
		})

		Convey("When status is missing", func() {
			var task model.Task
			err := json.Unmarshal([]byte(`{"id":"t2","title":"x"}`), &task)

			Convey("Then the task counts as open", func() {
				So(err, ShouldBeNil)
				So(task.IsOpen(), ShouldBeTrue)
			})
		})

		Convey("When status is null", func() {
			var task model.Task
			err := json.Unmarshal([]byte(`{"id":"t3","status":null,"priority":null}`), &task)

			Convey("Then it is open with medium priority", func() {
				So(err, ShouldBeNil)
				So(task.Status, ShouldEqual, model.StatusOpen)
				So(task.Priority, ShouldEqual, model.PriorityMedium)
			})
		})

		Convey("When status has the wrong JSON type", func() {
			var task model.Task
			err := json.Unmarshal([]byte(`{"id":"t4","status":3}`), &task)

			Convey("Then decoding fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestParsePriorityAndAnswer(t *testing.T) {
	Convey("Given priority and answer spellings", t, func() {
		So(model.ParsePriority("low"), ShouldEqual, model.PriorityLow)
		So(model.ParsePriority("Scăzută"), ShouldEqual, model.PriorityLow)
		So(model.ParsePriority("HIGH"), ShouldEqual, model.PriorityHigh)
		So(model.ParsePriority("medium"), ShouldEqual, model.PriorityMedium)
		So(model.ParsePriority(""), ShouldEqual, model.PriorityMedium)

		So(model.ParseAnswer("Da"), ShouldEqual, model.AnswerYes)
		So(model.ParseAnswer("nu"), ShouldEqual, model.AnswerNo)
		So(model.ParseAnswer("Nu se aplică"), ShouldEqual, model.AnswerNA)
		So(model.ParseAnswer("maybe"), ShouldEqual, model.Answer(""))
	})
}

func TestScopeMatches(t *testing.T) {
	Convey("Given a scope for an area's general bucket", t, func() {
		general := model.Scope{Area: "mentenanta"}

		Convey("Then it matches only unscoped records of that area", func() {
			So(general.Matches("mentenanta", nil), ShouldBeTrue)
			So(general.Matches("mentenanta", ptr("lifturi")), ShouldBeFalse)
			So(general.Matches("ssm", nil), ShouldBeFalse)
		})
	})

	Convey("Given a scope for a subdomain", t, func() {
		sub := model.Scope{Area: "mentenanta", Subdomain: ptr("lifturi")}

		Convey("Then it matches that subdomain only", func() {
			So(sub.Matches("mentenanta", ptr("lifturi")), ShouldBeTrue)
			So(sub.Matches("mentenanta", ptr("hvac")), ShouldBeFalse)
			So(sub.Matches("mentenanta", nil), ShouldBeFalse)
		})
	})

	Convey("Given the empty scope", t, func() {
		all := model.Scope{}

		Convey("Then it matches everything", func() {
			So(all.Matches("ssm", nil), ShouldBeTrue)
			So(all.Matches("psi", ptr("bloc-a")), ShouldBeTrue)
		})
	})
}

func TestRiskLevel(t *testing.T) {
	Convey("Given risks with different factors", t, func() {
		So(model.Risk{Probability: 2, Severity: 3}.Class(), ShouldEqual, model.RiskLow)
		So(model.Risk{Probability: 3, Severity: 4}.Class(), ShouldEqual, model.RiskMedium)
		So(model.Risk{Probability: 5, Severity: 5}.Level(), ShouldEqual, 25)
		So(model.Risk{Probability: 9, Severity: 0}.Level(), ShouldEqual, 5)
		So(model.Risk{Probability: 4, Severity: 4}.Class(), ShouldEqual, model.RiskHigh)
	})
}
