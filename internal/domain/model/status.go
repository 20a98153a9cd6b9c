package model

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the canonical state of an open-work item.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// closedSentinels lists folded spellings that mean "closed" in stored data.
var closedSentinels = map[string]struct{}{
	"closed":    {},
	"inchis":    {},
	"done":      {},
	"finalizat": {},
	"rezolvat":  {},
	"completed": {},
}

// ParseStatus canonicalizes a stored status. Unknown or empty means open.
func ParseStatus(raw string) Status {
	if _, ok := closedSentinels[Fold(raw)]; ok {
		return StatusClosed
	}
	return StatusOpen
}

// Closed reports whether s is the closed sentinel.
func (s Status) Closed() bool { return s == StatusClosed }

// UnmarshalJSON normalizes legacy spellings ("Închis", "inchis", "Done") on decode.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = StatusOpen
		return nil
	}
	*s = ParseStatus(*raw)
	return nil
}

// Priority is the canonical task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "med"
	PriorityHigh   Priority = "high"
)

// ParsePriority canonicalizes a stored priority; anything unrecognised is medium.
func ParsePriority(raw string) Priority {
	switch Fold(raw) {
	case "low", "scazuta", "mica":
		return PriorityLow
	case "high", "ridicata", "mare", "urgent":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// UnmarshalJSON normalizes legacy priority spellings on decode.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = PriorityMedium
		return nil
	}
	*p = ParsePriority(*raw)
	return nil
}

// Answer is a questionnaire answer value.
type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
	AnswerNA  Answer = "na"
)

// ParseAnswer canonicalizes an answer; the empty result means "unanswered".
func ParseAnswer(raw string) Answer {
	switch Fold(raw) {
	case "yes", "da", "y", "true":
		return AnswerYes
	case "no", "nu", "n", "false":
		return AnswerNo
	case "na", "n/a", "nu se aplica":
		return AnswerNA
	default:
		return ""
	}
}

// UnmarshalJSON normalizes answer spellings on decode.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*a = ""
		return nil
	}
	*a = ParseAnswer(*raw)
	return nil
}

// Fold lower-cases s, trims it and strips diacritics ("Închis" -> "inchis").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
