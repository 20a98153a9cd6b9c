package service

import (
	"context"
	"strings"

	"github.com/okian/wardwatch/internal/domain/catalog"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/questionnaire"
	"github.com/okian/wardwatch/internal/domain/scoring"
)

// QuestionnaireScore summarises the responses of one questionnaire in a scope.
type QuestionnaireScore struct {
	QuestionnaireID string `json:"questionnaireId"`
	Responses       int    `json:"responses"`
	Average         int    `json:"average"`
	Latest          int    `json:"latest"`
}

// MaintenanceCards returns the technical maintenance catalog ranked by impact.
func (s *Service) MaintenanceCards() []scoring.Ranked {
	return s.scorer.Rank(catalog.MaintenanceCards())
}

// SafetyCards returns the SSM/PSI catalog ranked by impact.
func (s *Service) SafetyCards() []scoring.Ranked {
	return s.scorer.Rank(catalog.SafetyCards())
}

// Questionnaires returns the questionnaire catalog.
func (s *Service) Questionnaires() []model.Questionnaire {
	return catalog.Questionnaires()
}

// SubmitResponse validates and stores a questionnaire response.
func (s *Service) SubmitResponse(ctx context.Context, resp model.QuestionnaireResponse) (model.QuestionnaireResponse, error) {
	resp.Area = strings.TrimSpace(resp.Area)
	resp.Subdomain = normalizeSubdomain(resp.Subdomain)
	return create(ctx, s, "submit_response", func() error {
		form, ok := catalog.Questionnaire(resp.QuestionnaireID)
		if !ok {
			return &ValidationError{Fields: map[string]string{"questionnaireId": "unknown questionnaire"}}
		}
		f := fieldErrors(questionnaire.Validate(form, resp))
		required(f, "area", resp.Area)
		return f.err()
	}, func() (model.QuestionnaireResponse, error) {
		resp.ID = s.newID()
		resp.SubmittedAt = s.clock()
		err := s.responses.Update(ctx, func(items []model.QuestionnaireResponse) ([]model.QuestionnaireResponse, error) {
			return append(items, resp), nil
		})
		return resp, err
	})
}

// ListResponses returns the stored responses of a questionnaire in scope.
func (s *Service) ListResponses(ctx context.Context, id string, scope model.Scope) []model.QuestionnaireResponse {
	all := filterScope(s.responses.Read(ctx), scope, func(r model.QuestionnaireResponse) (string, *string) {
		return r.Area, r.Subdomain
	})
	out := make([]model.QuestionnaireResponse, 0, len(all))
	for _, r := range all {
		if id == "" || r.QuestionnaireID == id {
			out = append(out, r)
		}
	}
	return out
}

// QuestionnaireScore scores the responses of questionnaire id within scope.
func (s *Service) QuestionnaireScore(ctx context.Context, id string, scope model.Scope) (QuestionnaireScore, error) {
	if _, ok := catalog.Questionnaire(id); !ok {
		return QuestionnaireScore{}, notFound("questionnaire", id)
	}
	responses := s.ListResponses(ctx, id, scope)
	out := QuestionnaireScore{
		QuestionnaireID: id,
		Responses:       len(responses),
		Average:         questionnaire.Average(responses),
	}
	if n := len(responses); n > 0 {
		latest := responses[0]
		for _, r := range responses[1:] {
			if !r.SubmittedAt.Before(latest.SubmittedAt) {
				latest = r
			}
		}
		out.Latest = questionnaire.Score(latest)
	}
	return out, nil
}
