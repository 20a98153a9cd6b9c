package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	service "github.com/okian/wardwatch/internal/app"
	"github.com/okian/wardwatch/internal/domain/catalog"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/pkg/logger"
)

// Run fills svc with demo data. Dates are spread around svc.Now() so every
// dashboard counter has something to show.
func Run(ctx context.Context, svc *service.Service, cfg Config) (Stats, error) {
	def := DefaultConfig()
	if cfg.Tasks <= 0 {
		cfg.Tasks = def.Tasks
	}
	if cfg.Employees <= 0 {
		cfg.Employees = def.Employees
	}
	if cfg.Waste <= 0 {
		cfg.Waste = def.Waste
	}
	stats := Stats{StartTime: time.Now(), Records: map[string]int{}}
	g := newGenerator(cfg.Seed, svc.Now())
	log := logger.Get().Named("seed")

	log.Info(ctx, "seeding demo data",
		logger.Int("tasksPerArea", cfg.Tasks),
		logger.Int("employees", cfg.Employees),
		logger.Int("waste", cfg.Waste))

	steps := []struct {
		name string
		fn   func(context.Context, *service.Service, *generator, Config, *Stats) error
	}{
		{"tasks", seedTasks},
		{"training", seedTraining},
		{"registers", seedRegisters},
		{"questionnaires", seedResponses},
	}
	for _, step := range steps {
		if err := step.fn(ctx, svc, g, cfg, &stats); err != nil {
			return stats, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "demo data seeded", logger.Int("records", stats.Total()), logger.Duration("duration", stats.Duration))
	return stats, nil
}

func seedTasks(ctx context.Context, svc *service.Service, g *generator, cfg Config, stats *Stats) error {
	for _, area := range areas {
		for i := 0; i < cfg.Tasks; i++ {
			// Every area gets one task due today.
			due := g.dayBetween(-10, 30)
			if i == 0 {
				due = g.day(0)
			}
			task, err := svc.AddTask(ctx, service.TaskInput{
				Title:     pick(g, taskTitles),
				Priority:  pick(g, priorities),
				DueDate:   due,
				Assignee:  g.person(),
				Area:      area,
				Subdomain: g.subdomain(area),
			})
			if err != nil {
				return err
			}
			stats.Tasks++
			if g.rnd.IntN(4) == 0 {
				if _, err := svc.SetTaskStatus(ctx, task.ID, string(model.StatusClosed)); err != nil {
					return err
				}
			}
		}
		if _, err := svc.AddSuggestion(ctx, service.SuggestionInput{
			Title:  "Propunere de îmbunătățire " + area,
			Author: g.person(),
			Area:   area,
		}); err != nil {
			return err
		}
		stats.Suggestions++
	}
	return nil
}

func seedTraining(ctx context.Context, svc *service.Service, g *generator, cfg Config, stats *Stats) error {
	report, err := svc.ImportTrainingCSV(ctx, strings.NewReader(g.trainingCSV(len(departments), cfg.Employees)))
	if err != nil {
		return err
	}
	stats.Training = report.Rows

	// Close out the sessions that already happened, leaving some pending.
	today := svc.Today()
	for i, row := range svc.ListTraining(ctx, "") {
		if row.Date > today || row.Finalized || i%3 == 2 {
			continue
		}
		half := len(row.Planned) / 2
		if _, err := svc.RecordAttendance(ctx, row.ID, row.Planned[:half+1], row.Planned[half+1:]); err != nil {
			return err
		}
		if i%2 == 0 {
			continue
		}
		if _, err := svc.AttachProof(ctx, row.ID, fmt.Sprintf("https://docs.wardwatch.local/training/%s.pdf", row.ID)); err != nil {
			return err
		}
		if _, err := svc.FinalizeTraining(ctx, row.ID); err != nil {
			return err
		}
	}
	return nil
}

func add[T service.Record](ctx context.Context, reg *service.Register[T], stats *Stats, items ...T) error {
	for _, it := range items {
		if _, err := reg.Add(ctx, it); err != nil {
			return err
		}
		stats.Records[reg.Name()]++
	}
	return nil
}

func seedRegisters(ctx context.Context, svc *service.Service, g *generator, cfg Config, stats *Stats) error {
	var equipment []model.Equip
	for _, name := range []string{"Autoclav Melag", "Lift bloc A", "Cazan apă caldă", "Grup electrogen", "UPS bloc operator"} {
		equipment = append(equipment, model.Equip{
			Name: name, Kind: "ISCIR", Location: "Bloc " + pick(g, []string{"A", "B"}),
			LastCheck: g.dayBetween(-300, -30), NextCheck: g.dayBetween(-5, 90),
		})
	}
	if err := add(ctx, svc.Equipment(), stats, equipment...); err != nil {
		return err
	}

	if err := add(ctx, svc.Incidents(), stats,
		model.Incident{Date: g.day(-20), Kind: "accident", Description: "Înțepare cu ac", Location: "ATI", DueDate: g.day(-3)},
		model.Incident{Date: g.day(-8), Kind: "near-miss", Description: "Pardoseală udă nesemnalizată", DueDate: g.day(10)},
		model.Incident{Date: g.day(-90), Kind: "accident", Description: "Alunecare", Status: model.StatusClosed},
	); err != nil {
		return err
	}

	if err := add(ctx, svc.Risks(), stats,
		model.Risk{Hazard: "Expunere la agenți biologici", Area: "ATI", Probability: 4, Severity: 4, Measures: []model.Measure{
			{Description: "Containere pentru înțepătoare la fiecare pat", DueDate: g.day(-2), Responsible: g.person()},
			{Description: "Instruire suplimentară", DueDate: g.day(15)},
		}},
		model.Risk{Hazard: "Manipulare manuală pacienți", Area: "Chirurgie", Probability: 3, Severity: 3},
	); err != nil {
		return err
	}

	if err := add(ctx, svc.Audits(), stats,
		model.Audit{Title: "Audit intern SMC", Auditor: g.person(), Date: g.day(-40), Findings: 3, DueDate: g.day(-1)},
		model.Audit{Title: "Audit ANMCS", Date: g.day(-120), Findings: 1, Status: model.StatusClosed},
	); err != nil {
		return err
	}

	var eip []model.EIPItem
	for i := 0; i < 6; i++ {
		eip = append(eip, model.EIPItem{
			Name: pick(g, []string{"Mască FFP2", "Ochelari de protecție", "Halat impermeabil"}), AssignedTo: g.person(),
			Department: pick(g, departments), Issued: g.dayBetween(-365, -30), ExpiryDate: g.dayBetween(-10, 120),
		})
	}
	if err := add(ctx, svc.EIP(), stats, eip...); err != nil {
		return err
	}

	if err := add(ctx, svc.Evacuations(), stats,
		model.EvacuationDrill{Date: g.day(-200), Building: "Bloc A", Participants: 42, DurationMin: 11, NextDue: g.day(-17)},
		model.EvacuationDrill{Date: g.day(-60), Building: "Bloc B", Participants: 30, DurationMin: 8, NextDue: g.day(120)},
	); err != nil {
		return err
	}

	if err := add(ctx, svc.Permits(), stats,
		model.Permit{Name: "Autorizație de securitate la incendiu", Issuer: "ISU", Number: "AS-112", ExpiryDate: g.day(45)},
		model.Permit{Name: "Aviz ISU bloc B", Issuer: "ISU", ExpiryDate: g.day(-4)},
		model.Permit{Name: "Autorizație sanitară", Issuer: "DSP", ExpiryDate: g.day(400)},
	); err != nil {
		return err
	}

	var kpis []model.KPIReport
	period := g.now.AddDate(0, -1, 0).Format("2006-01")
	for _, dept := range departments {
		kpis = append(kpis, model.KPIReport{
			Period: period, Department: dept, Indicator: "Rata infecțiilor nosocomiale",
			Value: g.quantity(0, 3), Target: 2, Author: g.person(),
		})
	}
	if err := add(ctx, svc.KPIReports(), stats, kpis...); err != nil {
		return err
	}

	var waste []model.EnvWasteEntry
	for i := 0; i < cfg.Waste; i++ {
		waste = append(waste, model.EnvWasteEntry{
			Date: g.dayBetween(-364, 0), Department: pick(g, departments), WasteType: pick(g, wasteTypes),
			QuantityKg: g.quantity(0.5, 40), Contractor: "Eco Med SRL",
		})
	}
	if err := add(ctx, svc.Waste(), stats, waste...); err != nil {
		return err
	}

	return add(ctx, svc.Contracts(), stats,
		model.Contract{Partner: "Eco Med SRL", Subject: "Eliminare deșeuri medicale", Kind: model.ContractKindContract, Start: g.day(-300), ExpiryDate: g.day(60)},
		model.Contract{Partner: "APM", Subject: "Autorizație de mediu", Kind: model.ContractKindAuthorization, ExpiryDate: g.day(-15)},
	)
}

func seedResponses(ctx context.Context, svc *service.Service, g *generator, _ Config, stats *Stats) error {
	answers := []model.Answer{model.AnswerYes, model.AnswerYes, model.AnswerNo, model.AnswerNA}
	for _, q := range catalog.Questionnaires() {
		for _, area := range []string{"calitate", "psi"} {
			resp := model.QuestionnaireResponse{QuestionnaireID: q.ID, Area: area}
			for _, question := range q.Questions {
				a := model.AnswerEntry{QuestionID: question.ID, Value: pick(g, answers)}
				if question.RequiresEvidence && a.Value == model.AnswerYes {
					a.EvidenceURL = fmt.Sprintf("https://docs.wardwatch.local/evidence/%s.jpg", question.ID)
				}
				resp.Answers = append(resp.Answers, a)
			}
			if _, err := svc.SubmitResponse(ctx, resp); err != nil {
				return err
			}
			stats.Responses++
		}
	}
	return nil
}
