// Package questionnaire validates and scores compliance questionnaire responses.
package questionnaire

import (
	"math"
	"strings"

	"github.com/okian/wardwatch/internal/domain/model"
)

// Field error messages.
const (
	MsgUnanswered       = "answer required (yes, no or na)"
	MsgEvidenceRequired = "evidence required for an affirmative answer"
	MsgUnknownQuestion  = "unknown question"
	MsgDuplicate        = "answered more than once"
	MsgWrongForm        = "response belongs to another questionnaire"
)

// FieldKey is the error key for a question's answer.
func FieldKey(questionID string) string {
	return "answers." + questionID
}

// Validate checks that every question has exactly one yes/no/na answer and
// that affirmative answers to evidence questions carry an evidence URL.
// It returns field errors keyed "answers.<questionId>"; an empty map means valid.
func Validate(q model.Questionnaire, r model.QuestionnaireResponse) map[string]string {
	errs := make(map[string]string)
	if r.QuestionnaireID != "" && r.QuestionnaireID != q.ID {
		errs["questionnaireId"] = MsgWrongForm
	}

	known := make(map[string]model.Question, len(q.Questions))
	for _, question := range q.Questions {
		known[question.ID] = question
	}
	answers := make(map[string]model.AnswerEntry, len(r.Answers))
	for _, a := range r.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			errs[FieldKey(a.QuestionID)] = MsgUnknownQuestion
			continue
		}
		if _, dup := answers[a.QuestionID]; dup {
			errs[FieldKey(a.QuestionID)] = MsgDuplicate
			continue
		}
		answers[a.QuestionID] = a
	}

	for _, question := range q.Questions {
		key := FieldKey(question.ID)
		if _, already := errs[key]; already {
			continue
		}
		a, ok := answers[question.ID]
		switch {
		case !ok || a.Value == "":
			errs[key] = MsgUnanswered
		case question.RequiresEvidence && a.Value == model.AnswerYes && strings.TrimSpace(a.EvidenceURL) == "":
			errs[key] = MsgEvidenceRequired
		}
	}
	return errs
}

// Score is round(100 * yes / (yes + no)); na answers are ignored and a
// response with nothing scorable scores 0.
func Score(r model.QuestionnaireResponse) int {
	var yes, no int
	for _, a := range r.Answers {
		switch a.Value {
		case model.AnswerYes:
			yes++
		case model.AnswerNo:
			no++
		}
	}
	if yes+no == 0 {
		return 0
	}
	return int(math.Round(100 * float64(yes) / float64(yes+no)))
}

// Average is the mean score of the given responses, rounded; 0 when empty.
func Average(responses []model.QuestionnaireResponse) int {
	if len(responses) == 0 {
		return 0
	}
	sum := 0
	for _, r := range responses {
		sum += Score(r)
	}
	return int(math.Round(float64(sum) / float64(len(responses))))
}
