package questionnaire_test

import (
	"testing"

	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/questionnaire"
	. "github.com/smartystreets/goconvey/convey"
)

var form = model.Questionnaire{
	ID: "fire",
	Questions: []model.Question{
		{ID: "q1", Text: "Căi de evacuare libere?"},
		{ID: "q2", Text: "Stingătoare în termen?", RequiresEvidence: true},
		{ID: "q3", Text: "Exercițiu efectuat?"},
	},
}

func TestValidate(t *testing.T) {
	Convey("Given a complete response", t, func() {
		resp := model.QuestionnaireResponse{
			QuestionnaireID: "fire",
			Answers: []model.AnswerEntry{
				{QuestionID: "q1", Value: model.AnswerYes},
				{QuestionID: "q2", Value: model.AnswerYes, EvidenceURL: "https://files.local/ev.jpg"},
				{QuestionID: "q3", Value: model.AnswerNA},
			},
		}

		Convey("Then it is valid", func() {
			So(questionnaire.Validate(form, resp), ShouldBeEmpty)
		})

		Convey("When the evidence is missing on an affirmative answer", func() {
			resp.Answers[1].EvidenceURL = ""

			Convey("Then the field error names the question", func() {
				errs := questionnaire.Validate(form, resp)
				So(errs, ShouldResemble, map[string]string{"answers.q2": questionnaire.MsgEvidenceRequired})
			})
		})

		Convey("When the evidence question is answered no", func() {
			resp.Answers[1] = model.AnswerEntry{QuestionID: "q2", Value: model.AnswerNo}

			Convey("Then no evidence is needed", func() {
				So(questionnaire.Validate(form, resp), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an incomplete response", t, func() {
		resp := model.QuestionnaireResponse{
			QuestionnaireID: "other",
			Answers: []model.AnswerEntry{
				{QuestionID: "q1", Value: model.AnswerYes},
				{QuestionID: "q1", Value: model.AnswerNo},
				{QuestionID: "zz", Value: model.AnswerNo},
				{QuestionID: "q3", Value: ""},
			},
		}

		Convey("Then each problem is reported against its field", func() {
			errs := questionnaire.Validate(form, resp)
			So(errs["questionnaireId"], ShouldEqual, questionnaire.MsgWrongForm)
			So(errs["answers.q1"], ShouldEqual, questionnaire.MsgDuplicate)
			So(errs["answers.zz"], ShouldEqual, questionnaire.MsgUnknownQuestion)
			So(errs["answers.q2"], ShouldEqual, questionnaire.MsgUnanswered)
			So(errs["answers.q3"], ShouldEqual, questionnaire.MsgUnanswered)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given answers mixing yes, no and na", t, func() {
		resp := model.QuestionnaireResponse{Answers: []model.AnswerEntry{
			{Value: model.AnswerYes}, {Value: model.AnswerYes}, {Value: model.AnswerNo}, {Value: model.AnswerNA},
		}}

		Convey("Then na is ignored", func() {
			So(questionnaire.Score(resp), ShouldEqual, 67)
		})
	})

	Convey("Given only na answers", t, func() {
		resp := model.QuestionnaireResponse{Answers: []model.AnswerEntry{{Value: model.AnswerNA}}}
		So(questionnaire.Score(resp), ShouldEqual, 0)
	})

	Convey("Given several responses", t, func() {
		all := []model.QuestionnaireResponse{
			{Answers: []model.AnswerEntry{{Value: model.AnswerYes}}},
			{Answers: []model.AnswerEntry{{Value: model.AnswerNo}}},
			{Answers: []model.AnswerEntry{{Value: model.AnswerYes}, {Value: model.AnswerNo}}},
		}
		So(questionnaire.Average(all), ShouldEqual, 50)
		So(questionnaire.Average(nil), ShouldEqual, 0)
	})
}
