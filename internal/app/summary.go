package service

import (
	"context"
	"time"

	"github.com/okian/wardwatch/internal/domain/aggregate"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
)

// ExpiryBucket reports items expiring within WindowDays. Expired is only set
// for modules that show already-expired items as their own bucket; Expiring
// always includes them.
type ExpiryBucket struct {
	WindowDays int  `json:"windowDays"`
	Expiring   int  `json:"expiring"`
	Expired    *int `json:"expired,omitempty"`
}

// Summary is the dashboard overview.
type Summary struct {
	Scope               model.Scope        `json:"scope"`
	Today               string             `json:"today"`
	Tasks               TaskCounts         `json:"tasks"`
	OpenSuggestions     int                `json:"openSuggestions"`
	TrainingCompliance  TrainingCompliance `json:"trainingCompliance"`
	Equipment           ExpiryBucket       `json:"equipment"`
	EIP                 ExpiryBucket       `json:"eip"`
	Permits             ExpiryBucket       `json:"permits"`
	Contracts           ExpiryBucket       `json:"contracts"`
	OpenIncidents       int                `json:"openIncidents"`
	OverdueIncidents    int                `json:"overdueIncidents"`
	HighRisks           int                `json:"highRisks"`
	OverdueMeasures     int                `json:"overdueMeasures"`
	OpenAudits          int                `json:"openAudits"`
	OverdueAudits       int                `json:"overdueAudits"`
	OverdueDrills       int                `json:"overdueDrills"`
	TopWasteDepartments []aggregate.Total  `json:"topWasteDepartments"`
	KPIReports          int                `json:"kpiReports"`
}

// Summary computes the dashboard for scope. Tasks and suggestions are
// filtered by scope; the hospital-wide registers are not scoped.
func (s *Service) Summary(ctx context.Context, scope model.Scope) Summary {
	now := s.clock()
	today := calendar.Today(now, s.location)

	var measures []model.Measure
	risks := s.risks.List(ctx)
	highRisks := 0
	for _, r := range risks {
		measures = append(measures, r.Measures...)
		if r.Class() == model.RiskHigh {
			highRisks++
		}
	}
	incidents := s.incidents.List(ctx)
	audits := s.audits.List(ctx)
	permits := s.permits.List(ctx)
	contracts := s.contracts.List(ctx)
	topWaste := s.topWaste(ctx, wasteDepartment, s.topN, calendar.CurrentPeriod(now, s.location, false))

	return Summary{
		Scope:              scope,
		Today:              today,
		Tasks:              s.TaskCounts(ctx, scope),
		OpenSuggestions:    aggregate.OpenCount(s.ListSuggestions(ctx, scope)),
		TrainingCompliance: s.CurrentTrainingCompliance(ctx),
		Equipment: ExpiryBucket{
			WindowDays: s.windows.Equipment,
			Expiring:   aggregate.ExpiringWithin(s.equipment.List(ctx), now, s.windows.Equipment),
		},
		EIP: ExpiryBucket{
			WindowDays: s.windows.EIP,
			Expiring:   aggregate.ExpiringWithin(s.eip.List(ctx), now, s.windows.EIP),
		},
		Permits:             splitBucket(permits, now, s.windows.Permits),
		Contracts:           splitBucket(contracts, now, s.windows.Contracts),
		OpenIncidents:       aggregate.OpenCount(incidents),
		OverdueIncidents:    aggregate.OverdueCount(incidents, today),
		HighRisks:           highRisks,
		OverdueMeasures:     aggregate.OverdueCount(measures, today),
		OpenAudits:          aggregate.OpenCount(audits),
		OverdueAudits:       aggregate.OverdueCount(audits, today),
		OverdueDrills:       aggregate.OverdueCount(s.evacuations.List(ctx), today),
		TopWasteDepartments: topWaste,
		KPIReports:          len(s.kpi.List(ctx)),
	}
}

func splitBucket[T aggregate.Expiring](items []T, now time.Time, window int) ExpiryBucket {
	expired := aggregate.ExpiredCount(items, now)
	return ExpiryBucket{
		WindowDays: window,
		Expiring:   aggregate.ExpiringWithin(items, now, window),
		Expired:    &expired,
	}
}
