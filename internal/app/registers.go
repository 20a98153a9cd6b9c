package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/internal/adapters/repository"
	"github.com/okian/wardwatch/internal/domain/aggregate"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/pkg/metrics"
)

// Record is any register entry with an id.
type Record interface {
	RecordID() string
}

// Register is a plain CRUD list of one record type.
type Register[T Record] struct {
	s           *Service
	name        string
	col         *repository.Collection[T]
	validate    func(T, fieldErrors)
	prepare     func(item T, id string, now time.Time) T
	adminDelete bool
}

func newRegister[T Record](s *Service, module, name string, topic bus.Topic,
	validate func(T, fieldErrors), prepare func(T, string, time.Time) T,
) *Register[T] {
	return &Register[T]{
		s:        s,
		name:     name,
		col:      newCollection[T](s, module, name, topic),
		validate: validate,
		prepare:  prepare,
	}
}

// Name is the register's collection name.
func (r *Register[T]) Name() string { return r.name }

// List returns every entry.
func (r *Register[T]) List(ctx context.Context) []T {
	return r.col.Read(ctx)
}

// Get returns one entry by id.
func (r *Register[T]) Get(ctx context.Context, id string) (T, error) {
	for _, it := range r.col.Read(ctx) {
		if it.RecordID() == id {
			return it, nil
		}
	}
	var zero T
	return zero, notFound(r.name, id)
}

// Add validates item, assigns an id and appends it.
func (r *Register[T]) Add(ctx context.Context, item T) (T, error) {
	return create(ctx, r.s, "add_"+r.name, func() error {
		f := fieldErrors{}
		r.validate(item, f)
		return f.err()
	}, func() (T, error) {
		item = r.prepare(item, r.s.newID(), r.s.clock())
		err := r.col.Update(ctx, func(items []T) ([]T, error) {
			return append(items, item), nil
		})
		return item, err
	})
}

// Replace overwrites the entry with id, keeping the id.
func (r *Register[T]) Replace(ctx context.Context, id string, item T) (T, error) {
	f := fieldErrors{}
	r.validate(item, f)
	if err := r.s.invalid("replace_"+r.name, f); err != nil {
		return item, err
	}
	item = r.prepare(item, id, r.s.clock())
	err := r.col.Update(ctx, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(it T) bool { return it.RecordID() == id })
		if i < 0 {
			return nil, notFound(r.name, id)
		}
		items[i] = item
		return items, nil
	})
	return item, err
}

// Delete removes the entry with id. Registers that require it only let
// admins delete.
func (r *Register[T]) Delete(ctx context.Context, actor Actor, id string) error {
	if r.adminDelete && !actor.IsAdmin() {
		metrics.RecordUnauthorized("delete_" + r.name)
		return fmt.Errorf("%w: deleting %s requires the %s role", ErrUnauthorized, r.name, RoleAdmin)
	}
	return r.col.Update(ctx, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(it T) bool { return it.RecordID() == id })
		if i < 0 {
			return nil, notFound(r.name, id)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// Register accessors.
func (s *Service) Equipment() *Register[model.Equip]             { return s.equipment }
func (s *Service) Incidents() *Register[model.Incident]          { return s.incidents }
func (s *Service) Risks() *Register[model.Risk]                  { return s.risks }
func (s *Service) Audits() *Register[model.Audit]                { return s.audits }
func (s *Service) EIP() *Register[model.EIPItem]                 { return s.eip }
func (s *Service) Evacuations() *Register[model.EvacuationDrill] { return s.evacuations }
func (s *Service) Permits() *Register[model.Permit]              { return s.permits }
func (s *Service) KPIReports() *Register[model.KPIReport]        { return s.kpi }
func (s *Service) Waste() *Register[model.EnvWasteEntry]         { return s.waste }
func (s *Service) Contracts() *Register[model.Contract]          { return s.contracts }

// DeleteKPIReport removes a KPI report; only admins may do so.
func (s *Service) DeleteKPIReport(ctx context.Context, actor Actor, id string) error {
	return s.kpi.Delete(ctx, actor, id)
}

// SetMeasureStatus opens or closes one mitigation measure of a risk.
func (s *Service) SetMeasureStatus(ctx context.Context, riskID, measureID, status string) (model.Risk, error) {
	var out model.Risk
	err := s.risks.col.Update(ctx, func(items []model.Risk) ([]model.Risk, error) {
		i := slices.IndexFunc(items, func(r model.Risk) bool { return r.ID == riskID })
		if i < 0 {
			return nil, notFound("risk", riskID)
		}
		j := slices.IndexFunc(items[i].Measures, func(m model.Measure) bool { return m.ID == measureID })
		if j < 0 {
			return nil, notFound("measure", measureID)
		}
		items[i].Measures[j].Status = model.ParseStatus(status)
		out = items[i]
		return items, nil
	})
	return out, err
}

// Waste groupings for TopWaste.
const (
	WasteByDepartment = "department"
	WasteByType       = "type"
)

// TopWaste returns the n largest waste totals (kg) grouped by department or
// waste type. A zero period covers all entries; n <= 0 uses the configured default.
func (s *Service) TopWaste(ctx context.Context, by string, n int, period calendar.Period) ([]aggregate.Total, error) {
	var key func(model.EnvWasteEntry) string
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "", WasteByDepartment:
		key = wasteDepartment
	case WasteByType:
		key = func(e model.EnvWasteEntry) string { return e.WasteType }
	default:
		return nil, s.invalid("top_waste", fieldErrors{"by": "expected department or type"})
	}
	if n <= 0 {
		n = s.topN
	}
	return s.topWaste(ctx, key, n, period), nil
}

func (s *Service) topWaste(ctx context.Context, key func(model.EnvWasteEntry) string, n int, period calendar.Period) []aggregate.Total {
	entries := s.waste.List(ctx)
	contribs := make([]aggregate.Contribution, 0, len(entries))
	for _, e := range entries {
		if period.Year != 0 && !period.Contains(e.Date) {
			continue
		}
		contribs = append(contribs, aggregate.Contribution{Key: key(e), Value: e.QuantityKg})
	}
	return aggregate.TopN(contribs, n)
}

func wasteDepartment(e model.EnvWasteEntry) string { return e.Department }

func (s *Service) initRegisters() {
	s.equipment = newRegister(s, "maintenance", "equipment", bus.TopicEquipment,
		func(e model.Equip, f fieldErrors) {
			required(f, "name", e.Name)
			validateDate(f, "lastCheck", e.LastCheck, false)
			validateDate(f, "nextCheck", e.NextCheck, false)
		},
		func(e model.Equip, id string, _ time.Time) model.Equip { e.ID = id; return e })

	s.incidents = newRegister(s, "ssm", "incidents", bus.TopicIncidents,
		func(i model.Incident, f fieldErrors) {
			validateDate(f, "date", i.Date, true)
			validateDate(f, "dueDate", i.DueDate, false)
		},
		func(i model.Incident, id string, _ time.Time) model.Incident {
			i.ID = id
			i.Status = model.ParseStatus(string(i.Status))
			return i
		})

	s.risks = newRegister(s, "ssm", "risks", bus.TopicRisks,
		func(r model.Risk, f fieldErrors) {
			required(f, "hazard", r.Hazard)
			inRange(f, "probability", r.Probability)
			inRange(f, "severity", r.Severity)
			for i, m := range r.Measures {
				required(f, fmt.Sprintf("measures.%d.description", i), m.Description)
				validateDate(f, fmt.Sprintf("measures.%d.dueDate", i), m.DueDate, false)
			}
		},
		func(r model.Risk, id string, _ time.Time) model.Risk {
			r.ID = id
			r.Measures = slices.Clone(r.Measures)
			for i := range r.Measures {
				if r.Measures[i].ID == "" {
					r.Measures[i].ID = fmt.Sprintf("%s-m%d", id, i+1)
				}
				r.Measures[i].Status = model.ParseStatus(string(r.Measures[i].Status))
			}
			if r.Measures == nil {
				r.Measures = []model.Measure{}
			}
			return r
		})

	s.audits = newRegister(s, "quality", "audits", bus.TopicAudits,
		func(a model.Audit, f fieldErrors) {
			required(f, "title", a.Title)
			validateDate(f, "date", a.Date, true)
			validateDate(f, "dueDate", a.DueDate, false)
			if a.Findings < 0 {
				f.add("findings", "must not be negative")
			}
		},
		func(a model.Audit, id string, _ time.Time) model.Audit {
			a.ID = id
			a.Status = model.ParseStatus(string(a.Status))
			return a
		})

	s.eip = newRegister(s, "ssm", "eip", bus.TopicEIP,
		func(e model.EIPItem, f fieldErrors) {
			required(f, "name", e.Name)
			validateDate(f, "issued", e.Issued, false)
			validateDate(f, "expiryDate", e.ExpiryDate, false)
		},
		func(e model.EIPItem, id string, _ time.Time) model.EIPItem { e.ID = id; return e })

	s.evacuations = newRegister(s, "psi", "evacuations", bus.TopicEvacuations,
		func(d model.EvacuationDrill, f fieldErrors) {
			required(f, "building", d.Building)
			validateDate(f, "date", d.Date, true)
			validateDate(f, "nextDue", d.NextDue, false)
			if d.Participants < 0 {
				f.add("participants", "must not be negative")
			}
			if d.DurationMin < 0 {
				f.add("durationMin", "must not be negative")
			}
		},
		func(d model.EvacuationDrill, id string, _ time.Time) model.EvacuationDrill { d.ID = id; return d })

	s.permits = newRegister(s, "psi", "permits", bus.TopicPermits,
		func(p model.Permit, f fieldErrors) {
			required(f, "name", p.Name)
			validateDate(f, "issued", p.Issued, false)
			validateDate(f, "expiryDate", p.ExpiryDate, true)
		},
		func(p model.Permit, id string, _ time.Time) model.Permit { p.ID = id; return p })

	s.kpi = newRegister(s, "quality", "kpi", bus.TopicKPI,
		func(k model.KPIReport, f fieldErrors) {
			if _, err := time.Parse("2006-01", k.Period); err != nil {
				f.add("period", "expected YYYY-MM")
			}
			required(f, "department", k.Department)
			required(f, "indicator", k.Indicator)
		},
		func(k model.KPIReport, id string, now time.Time) model.KPIReport {
			k.ID = id
			if k.CreatedAt.IsZero() {
				k.CreatedAt = now
			}
			return k
		})
	s.kpi.adminDelete = true

	s.waste = newRegister(s, "environment", "waste", bus.TopicWaste,
		func(w model.EnvWasteEntry, f fieldErrors) {
			validateDate(f, "date", w.Date, true)
			required(f, "department", w.Department)
			required(f, "wasteType", w.WasteType)
			if w.QuantityKg <= 0 {
				f.add("quantityKg", "must be positive")
			}
		},
		func(w model.EnvWasteEntry, id string, _ time.Time) model.EnvWasteEntry { w.ID = id; return w })

	s.contracts = newRegister(s, "environment", "contracts", bus.TopicContracts,
		func(c model.Contract, f fieldErrors) {
			required(f, "partner", c.Partner)
			switch c.Kind {
			case "", model.ContractKindContract, model.ContractKindAuthorization:
			default:
				f.add("kind", "expected contract or authorization")
			}
			validateDate(f, "start", c.Start, false)
			validateDate(f, "expiryDate", c.ExpiryDate, true)
		},
		func(c model.Contract, id string, _ time.Time) model.Contract {
			c.ID = id
			if c.Kind == "" {
				c.Kind = model.ContractKindContract
			}
			return c
		})
}

func inRange(f fieldErrors, field string, v int) {
	if v < 1 || v > 5 {
		f.add(field, "expected 1..5")
	}
}
