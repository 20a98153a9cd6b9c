package service

import (
	"context"
	"fmt"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/internal/domain/aggregate"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/pkg/metrics"
)

// Refresh recomputes the Prometheus gauges derived from topic's collection.
// TopicAll refreshes every collection. Gauges are observability only; API
// reads always recompute from the collections.
func (s *Service) Refresh(ctx context.Context, topic bus.Topic) error {
	if topic == bus.TopicAll {
		for _, t := range bus.CollectionTopics() {
			if err := s.Refresh(ctx, t); err != nil {
				return err
			}
		}
		return nil
	}

	now := s.clock()
	today := calendar.Today(now, s.location)
	name := string(topic)

	switch topic {
	case bus.TopicTasks:
		tasks := s.tasks.Read(ctx)
		metrics.UpdateCollectionItems(name, len(tasks))
		metrics.UpdateOpenItems(name, aggregate.OpenCount(tasks))
		metrics.UpdateOverdueItems(name, aggregate.OverdueCount(tasks, today))
	case bus.TopicSuggestions:
		items := s.suggestions.Read(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateOpenItems(name, aggregate.OpenCount(items))
	case bus.TopicTraining:
		rows := s.training.Read(ctx)
		metrics.UpdateCollectionItems(name, len(rows))
		metrics.UpdateTrainingCompliance(s.CurrentTrainingCompliance(ctx).Year)
	case bus.TopicEquipment:
		items := s.equipment.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateExpiringItems(name, aggregate.ExpiringWithin(items, now, s.windows.Equipment))
	case bus.TopicIncidents:
		items := s.incidents.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateOpenItems(name, aggregate.OpenCount(items))
		metrics.UpdateOverdueItems(name, aggregate.OverdueCount(items, today))
	case bus.TopicRisks:
		risks := s.risks.List(ctx)
		var measures []model.Measure
		for _, r := range risks {
			measures = append(measures, r.Measures...)
		}
		metrics.UpdateCollectionItems(name, len(risks))
		metrics.UpdateOpenItems(name, aggregate.OpenCount(measures))
		metrics.UpdateOverdueItems(name, aggregate.OverdueCount(measures, today))
	case bus.TopicAudits:
		items := s.audits.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateOpenItems(name, aggregate.OpenCount(items))
		metrics.UpdateOverdueItems(name, aggregate.OverdueCount(items, today))
	case bus.TopicEIP:
		items := s.eip.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateExpiringItems(name, aggregate.ExpiringWithin(items, now, s.windows.EIP))
	case bus.TopicEvacuations:
		items := s.evacuations.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateOverdueItems(name, aggregate.OverdueCount(items, today))
	case bus.TopicPermits:
		items := s.permits.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateExpiringItems(name, aggregate.ExpiringWithin(items, now, s.windows.Permits))
	case bus.TopicKPI:
		metrics.UpdateCollectionItems(name, len(s.kpi.List(ctx)))
	case bus.TopicWaste:
		metrics.UpdateCollectionItems(name, len(s.waste.List(ctx)))
	case bus.TopicContracts:
		items := s.contracts.List(ctx)
		metrics.UpdateCollectionItems(name, len(items))
		metrics.UpdateExpiringItems(name, aggregate.ExpiringWithin(items, now, s.windows.Contracts))
	case bus.TopicQuestionnaires:
		metrics.UpdateCollectionItems(name, len(s.responses.Read(ctx)))
	default:
		return fmt.Errorf("unknown topic %q", topic)
	}
	return nil
}
