// Package model contains the persisted record shapes shared by every layer.
//
// Dates the engine reasons about (due, expiry, session dates) are kept as
// "YYYY-MM-DD" strings, exactly as stored; the calendar package owns parsing.
package model

import (
	"time"
)

// Scope filters records to one organisational unit. A nil Subdomain is the
// general bucket of the area. An empty Area matches every record.
type Scope struct {
	Area      string  `json:"area"`
	Subdomain *string `json:"subdomain"`
}

// Matches reports whether a record with (area, subdomain) belongs to s.
func (s Scope) Matches(area string, subdomain *string) bool {
	if s.Area == "" {
		return true
	}
	if area != s.Area {
		return false
	}
	if s.Subdomain == nil || subdomain == nil {
		return s.Subdomain == nil && subdomain == nil
	}
	return *s.Subdomain == *subdomain
}

// Task is a scoped to-do item.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	DueDate   string    `json:"dueDate,omitempty"`
	Assignee  string    `json:"assignee,omitempty"`
	Status    Status    `json:"status"`
	Area      string    `json:"area"`
	Subdomain *string   `json:"subdomain"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Task) IsOpen() bool     { return !t.Status.Closed() }
func (t Task) Due() string      { return t.DueDate }
func (t Task) RecordID() string { return t.ID }

// Suggestion is an improvement proposal raised by staff.
type Suggestion struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Area        string    `json:"area"`
	Subdomain   *string   `json:"subdomain"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s Suggestion) IsOpen() bool     { return !s.Status.Closed() }
func (s Suggestion) RecordID() string { return s.ID }

// TrainingRow is one training session for a department on a date.
type TrainingRow struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Date             string   `json:"date"`
	Department       string   `json:"department"`
	Planned          []string `json:"planned"`
	Present          []string `json:"present"`
	AbsentsMotivated []string `json:"absentsMotivated"`
	ProofURL         string   `json:"proofUrl,omitempty"`
	Finalized        bool     `json:"finalized"`
}

func (r TrainingRow) RecordID() string { return r.ID }

// Equip is a piece of equipment under periodic verification (ISCIR, metrology).
type Equip struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Location  string `json:"location,omitempty"`
	Serial    string `json:"serial,omitempty"`
	LastCheck string `json:"lastCheck,omitempty"`
	NextCheck string `json:"nextCheck,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (e Equip) Expiry() string   { return e.NextCheck }
func (e Equip) RecordID() string { return e.ID }

// Incident is a work accident or near miss with an optional corrective deadline.
type Incident struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      Status `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
}

func (i Incident) IsOpen() bool     { return !i.Status.Closed() }
func (i Incident) Due() string      { return i.DueDate }
func (i Incident) RecordID() string { return i.ID }

// Measure is a mitigation attached to a Risk.
type Measure struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Responsible string `json:"responsible,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      Status `json:"status"`
}

func (m Measure) IsOpen() bool { return !m.Status.Closed() }
func (m Measure) Due() string  { return m.DueDate }

// Risk is an assessed hazard with its mitigation measures.
type Risk struct {
	ID          string    `json:"id"`
	Hazard      string    `json:"hazard"`
	Area        string    `json:"area,omitempty"`
	Probability int       `json:"probability"`
	Severity    int       `json:"severity"`
	Measures    []Measure `json:"measures"`
}

func (r Risk) RecordID() string { return r.ID }

// Risk level classes.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Level is probability x severity with both factors clamped to 1..5.
func (r Risk) Level() int {
	return clamp(r.Probability, 1, 5) * clamp(r.Severity, 1, 5)
}

// Class buckets Level into low (<=6), medium (<=14) and high.
func (r Risk) Class() string {
	switch lvl := r.Level(); {
	case lvl <= 6:
		return RiskLow
	case lvl <= 14:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Audit is an internal or external audit with a follow-up deadline.
type Audit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Auditor  string `json:"auditor,omitempty"`
	Area     string `json:"area,omitempty"`
	Date     string `json:"date"`
	Findings int    `json:"findings"`
	DueDate  string `json:"dueDate,omitempty"`
	Status   Status `json:"status"`
}

func (a Audit) IsOpen() bool     { return !a.Status.Closed() }
func (a Audit) Due() string      { return a.DueDate }
func (a Audit) RecordID() string { return a.ID }

// EIPItem is individual protective equipment issued to an employee.
type EIPItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Department string `json:"department,omitempty"`
	Issued     string `json:"issued,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

func (e EIPItem) Expiry() string   { return e.ExpiryDate }
func (e EIPItem) RecordID() string { return e.ID }

// EvacuationDrill is a fire evacuation exercise; NextDue is when the next one is owed.
type EvacuationDrill struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Building     string `json:"building"`
	Participants int    `json:"participants"`
	DurationMin  int    `json:"durationMin"`
	NextDue      string `json:"nextDue,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (d EvacuationDrill) IsOpen() bool     { return true }
func (d EvacuationDrill) Due() string      { return d.NextDue }
func (d EvacuationDrill) RecordID() string { return d.ID }

// Permit is a fire-safety (ISU) authorization with an expiry date.
type Permit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Issuer     string `json:"issuer,omitempty"`
	Number     string `json:"number,omitempty"`
	Issued     string `json:"issued,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

func (p Permit) Expiry() string   { return p.ExpiryDate }
func (p Permit) RecordID() string { return p.ID }

// KPIReport is a monthly indicator value reported by a department.
type KPIReport struct {
	ID         string    `json:"id"`
	Period     string    `json:"period"`
	Department string    `json:"department"`
	Indicator  string    `json:"indicator"`
	Value      float64   `json:"value"`
	Target     float64   `json:"target"`
	Author     string    `json:"author,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (k KPIReport) RecordID() string { return k.ID }

// EnvWasteEntry is one waste hand-over recorded by a department.
type EnvWasteEntry struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Department string  `json:"department"`
	WasteType  string  `json:"wasteType"`
	QuantityKg float64 `json:"quantityKg"`
	Contractor string  `json:"contractor,omitempty"`
}

func (w EnvWasteEntry) RecordID() string { return w.ID }

// Contract kinds.
const (
	ContractKindContract      = "contract"
	ContractKindAuthorization = "authorization"
)

// Contract is an environmental contract or authorization with an expiry date.
type Contract struct {
	ID         string `json:"id"`
	Partner    string `json:"partner"`
	Subject    string `json:"subject,omitempty"`
	Kind       string `json:"kind"`
	Start      string `json:"start,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

func (c Contract) Expiry() string   { return c.ExpiryDate }
func (c Contract) RecordID() string { return c.ID }

// MaintenanceCard is immutable catalog data describing a recurring check.
type MaintenanceCard struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Frequency string   `json:"frequency"`
	Critical  bool     `json:"critical,omitempty"`
	Fields    []string `json:"fields"`
	Tags      []string `json:"tags,omitempty"`
}

// Question belongs to a Questionnaire.
type Question struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	RequiresEvidence bool   `json:"requiresEvidence,omitempty"`
}

// Questionnaire is immutable catalog data.
type Questionnaire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// AnswerEntry is the answer to one question.
type AnswerEntry struct {
	QuestionID  string `json:"questionId"`
	Value       Answer `json:"value"`
	EvidenceURL string `json:"evidenceUrl,omitempty"`
}

// QuestionnaireResponse is a submitted questionnaire for a scope.
type QuestionnaireResponse struct {
	ID              string        `json:"id"`
	QuestionnaireID string        `json:"questionnaireId"`
	Area            string        `json:"area"`
	Subdomain       *string       `json:"subdomain"`
	Answers         []AnswerEntry `json:"answers"`
	SubmittedAt     time.Time     `json:"submittedAt"`
}

func (q QuestionnaireResponse) RecordID() string { return q.ID }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
