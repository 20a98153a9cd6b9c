package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/training"
	"github.com/okian/wardwatch/pkg/logger"
)

// TrainingInput is the payload for scheduling a training session by hand.
type TrainingInput struct {
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Department string   `json:"department"`
	Planned    []string `json:"planned"`
}

// TrainingCompliance is the compliance percentage for the current year and month.
type TrainingCompliance struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// AddTraining schedules a session.
func (s *Service) AddTraining(ctx context.Context, in TrainingInput) (model.TrainingRow, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Department = strings.TrimSpace(in.Department)
	planned := uniqueNames(in.Planned)
	return create(ctx, s, "add_training", func() error {
		f := fieldErrors{}
		required(f, "title", in.Title)
		required(f, "department", in.Department)
		validateDate(f, "date", in.Date, true)
		if len(planned) == 0 {
			f.add("planned", "at least one attendee required")
		}
		return f.err()
	}, func() (model.TrainingRow, error) {
		row := model.TrainingRow{
			ID:               s.newID(),
			Title:            in.Title,
			Date:             in.Date,
			Department:       in.Department,
			Planned:          planned,
			Present:          []string{},
			AbsentsMotivated: []string{},
		}
		err := s.training.Update(ctx, func(items []model.TrainingRow) ([]model.TrainingRow, error) {
			return append(items, row), nil
		})
		return row, err
	})
}

// ImportTrainingCSV imports an attendance export and merges it into the
// existing sessions.
func (s *Service) ImportTrainingCSV(ctx context.Context, r io.Reader) (training.ImportReport, error) {
	release, err := s.claim(ctx, "import_training")
	if err != nil {
		return training.ImportReport{}, err
	}
	rows, report, err := training.ImportCSV(r, s.newID)
	if err != nil {
		release()
		if errors.Is(err, training.ErrEmptyImport) {
			return report, &ValidationError{Fields: map[string]string{"file": "empty file"}}
		}
		return report, err
	}
	if err := s.training.Update(ctx, func(items []model.TrainingRow) ([]model.TrainingRow, error) {
		return training.Merge(items, rows), nil
	}); err != nil {
		release()
		return report, err
	}
	s.logger.Info(ctx, "training import finished",
		logger.Int("lines", report.Lines),
		logger.Int("accepted", report.Accepted),
		logger.Int("rows", report.Rows),
		logger.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// RecordAttendance sets who attended and who was excused.
func (s *Service) RecordAttendance(ctx context.Context, id string, present, excused []string) (model.TrainingRow, error) {
	return s.mutateTraining(ctx, id, func(row model.TrainingRow) (model.TrainingRow, error) {
		return training.SetAttendance(row, present, excused)
	})
}

// AttachProof stores the uploaded proof URL for a session.
func (s *Service) AttachProof(ctx context.Context, id, url string) (model.TrainingRow, error) {
	return s.mutateTraining(ctx, id, func(row model.TrainingRow) (model.TrainingRow, error) {
		return training.AttachProof(row, url)
	})
}

// FinalizeTraining marks a session complete; it needs a proof URL.
func (s *Service) FinalizeTraining(ctx context.Context, id string) (model.TrainingRow, error) {
	return s.mutateTraining(ctx, id, training.Finalize)
}

func (s *Service) mutateTraining(ctx context.Context, id string, fn func(model.TrainingRow) (model.TrainingRow, error)) (model.TrainingRow, error) {
	var out model.TrainingRow
	err := s.training.Update(ctx, func(items []model.TrainingRow) ([]model.TrainingRow, error) {
		i := slices.IndexFunc(items, func(r model.TrainingRow) bool { return r.ID == id })
		if i < 0 {
			return nil, notFound("training", id)
		}
		row, err := fn(items[i])
		if err != nil {
			return nil, trainingError(err)
		}
		items[i] = row
		out = row
		return items, nil
	})
	return out, err
}

// trainingError maps lifecycle failures to field-level validation errors.
func trainingError(err error) error {
	switch {
	case errors.Is(err, training.ErrProofRequired):
		return &ValidationError{Fields: map[string]string{"proofUrl": err.Error()}}
	case errors.Is(err, training.ErrFinalized):
		return &ValidationError{Fields: map[string]string{"finalized": err.Error()}}
	case errors.Is(err, training.ErrNotPlanned), errors.Is(err, training.ErrConflictingAttendance):
		return &ValidationError{Fields: map[string]string{"present": err.Error()}}
	}
	return err
}

// ListTraining returns sessions, optionally limited to a department.
func (s *Service) ListTraining(ctx context.Context, department string) []model.TrainingRow {
	rows := s.training.Read(ctx)
	department = strings.TrimSpace(department)
	if department == "" {
		return rows
	}
	out := make([]model.TrainingRow, 0, len(rows))
	for _, r := range rows {
		if strings.EqualFold(r.Department, department) {
			out = append(out, r)
		}
	}
	return out
}

// TrainingCompliance returns the compliance percentage for period.
func (s *Service) TrainingCompliance(ctx context.Context, period calendar.Period) int {
	return training.PercentCompliance(s.training.Read(ctx), period)
}

// CurrentTrainingCompliance is compliance for the current year and month.
func (s *Service) CurrentTrainingCompliance(ctx context.Context) TrainingCompliance {
	rows := s.training.Read(ctx)
	now := s.clock()
	return TrainingCompliance{
		Year:  training.PercentCompliance(rows, calendar.CurrentPeriod(now, s.location, false)),
		Month: training.PercentCompliance(rows, calendar.CurrentPeriod(now, s.location, true)),
	}
}

func uniqueNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
