// Package training computes session compliance and manages the attendance
// lifecycle of training rows.
package training

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
)

// IsCompliant reports whether a session is finalized or every planned
// attendee is accounted for (present or excused).
func IsCompliant(row model.TrainingRow) bool {
	if row.Finalized {
		return true
	}
	return len(row.Present)+len(row.AbsentsMotivated) >= len(row.Planned)
}

// PercentCompliance is round(100 * compliant / total) over the rows dated in p.
// An empty period yields 0.
func PercentCompliance(rows []model.TrainingRow, p calendar.Period) int {
	var total, compliant int
	for _, r := range rows {
		if !p.Contains(r.Date) {
			continue
		}
		total++
		if IsCompliant(r) {
			compliant++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(compliant) / float64(total)))
}

// SetAttendance replaces the attendance lists of row. Every name must be
// planned and nobody can be both present and excused.
func SetAttendance(row model.TrainingRow, present, excused []string) (model.TrainingRow, error) {
	if row.Finalized {
		return row, ErrFinalized
	}
	present = cleanNames(present)
	excused = cleanNames(excused)
	for _, name := range append(slices.Clone(present), excused...) {
		if !slices.Contains(row.Planned, name) {
			return row, fmt.Errorf("%w: %q", ErrNotPlanned, name)
		}
	}
	for _, name := range present {
		if slices.Contains(excused, name) {
			return row, fmt.Errorf("%w: %q", ErrConflictingAttendance, name)
		}
	}
	row.Present = present
	row.AbsentsMotivated = excused
	return row, nil
}

// AttachProof records the uploaded evidence URL.
func AttachProof(row model.TrainingRow, url string) (model.TrainingRow, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return row, ErrProofRequired
	}
	row.ProofURL = url
	return row, nil
}

// Finalize flips the session to finalized; a proof URL must be attached.
func Finalize(row model.TrainingRow) (model.TrainingRow, error) {
	if strings.TrimSpace(row.ProofURL) == "" {
		return row, ErrProofRequired
	}
	row.Finalized = true
	return row, nil
}

// Merge folds imported rows into existing ones. A row with the same
// (title, date, department) that is not finalized gains the new planned names;
// anything else is appended.
func Merge(existing, imported []model.TrainingRow) []model.TrainingRow {
	out := slices.Clone(existing)
	index := make(map[groupKey]int, len(out))
	for i, r := range out {
		if !r.Finalized {
			index[keyOf(r)] = i
		}
	}
	for _, r := range imported {
		i, ok := index[keyOf(r)]
		if !ok {
			out = append(out, r)
			index[keyOf(r)] = len(out) - 1
			continue
		}
		merged := slices.Clone(out[i].Planned)
		for _, name := range r.Planned {
			if !slices.Contains(merged, name) {
				merged = append(merged, name)
			}
		}
		out[i].Planned = merged
	}
	return out
}

type groupKey struct {
	title, date, department string
}

func keyOf(r model.TrainingRow) groupKey {
	return groupKey{title: r.Title, date: r.Date, department: r.Department}
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
