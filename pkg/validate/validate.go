// Package validate sanitizes and canonicalizes ledger inputs before they reach storage.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ogulcanaydogan/token-ledger/pkg/advisory"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"
)

// Default limits.
const (
	DefaultMaxQuantity  int64   = 10_000_000
	DefaultMaxAllowance float64 = 100_000
	DefaultNotesCap             = 1000
)

// truncationMarker is appended to notes cut down to the cap.
const truncationMarker = "..."

// DefaultKnownActors lists the actors accepted without an advisory.
var DefaultKnownActors = []string{"FORGE", "ATLAS", "CLIO", "NEXUS", "BOLT", "GEMINI", "LOGAN"}

// deniedSubstrings are rejected anywhere in a raw actor name. Case-sensitive.
// This is a heuristic filter only; the store always binds parameters.
var deniedSubstrings = []string{";", "--", "/*", "*/", "DROP", "DELETE", "INSERT", "UPDATE"}

var periodPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)

// Limits bounds accepted values.
type Limits struct {
	MaxQuantity  int64
	MaxAllowance float64
	NotesCap     int
	KnownActors  []string
}

// DefaultLimits returns the documented default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxQuantity:  DefaultMaxQuantity,
		MaxAllowance: DefaultMaxAllowance,
		NotesCap:     DefaultNotesCap,
		KnownActors:  DefaultKnownActors,
	}
}

// ClassSet reports whether a normalized resource class is priced.
type ClassSet interface {
	Has(class string) bool
}

// Normalizer validates inputs and emits advisories for accepted oddities.
type Normalizer struct {
	limits  Limits
	known   map[string]struct{}
	classes ClassSet
	sink    advisory.Sink
}

// New creates a Normalizer. A nil sink discards advisories.
func New(limits Limits, classes ClassSet, sink advisory.Sink) *Normalizer {
	if sink == nil {
		sink = advisory.Discard
	}
	known := make(map[string]struct{}, len(limits.KnownActors))
	for _, a := range limits.KnownActors {
		known[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
	}
	return &Normalizer{limits: limits, known: known, classes: classes, sink: sink}
}

// Actor trims and upper-cases an actor name.
func (n *Normalizer) Actor(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid("actor", "must not be empty")
	}
	for _, s := range deniedSubstrings {
		if strings.Contains(raw, s) {
			return "", invalid("actor", fmt.Sprintf("contains forbidden sequence %q", s))
		}
	}

	actor := strings.ToUpper(trimmed)
	if _, ok := n.known[actor]; !ok {
		n.sink.Advise(advisory.Advisory{
			Kind:    advisory.UnknownActor,
			Subject: actor,
			Message: fmt.Sprintf("unknown actor %s, recording anyway", actor),
		})
	}
	return actor, nil
}

// ResourceClass trims and lower-cases a resource class.
func (n *Normalizer) ResourceClass(raw string) (string, error) {
	class := strings.ToLower(strings.TrimSpace(raw))
	if class == "" {
		return "", invalid("resource_class", "must not be empty")
	}
	if n.classes != nil && !n.classes.Has(class) {
		n.sink.Advise(advisory.Advisory{
			Kind:    advisory.UnknownResourceClass,
			Subject: class,
			Message: fmt.Sprintf("unknown resource class %s, fallback pricing applies", class),
		})
	}
	return class, nil
}

// Quantity checks that n is within [0, MaxQuantity].
func (n *Normalizer) Quantity(field string, q int64) (int64, error) {
	if q < 0 {
		return 0, invalid(field, fmt.Sprintf("must not be negative: %d", q))
	}
	if q > n.limits.MaxQuantity {
		return 0, invalid(field, fmt.Sprintf("exceeds maximum (%d): %d", n.limits.MaxQuantity, q))
	}
	return q, nil
}

// Period checks a YYYY-MM budget period key.
func (n *Normalizer) Period(raw string) (string, error) {
	return Period(raw)
}

// Allowance checks a budget amount.
func (n *Normalizer) Allowance(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, invalid("allowance", "must be a finite number")
	}
	if amount < 0 {
		return 0, invalid("allowance", fmt.Sprintf("must not be negative: %.2f", amount))
	}
	if amount > n.limits.MaxAllowance {
		return 0, invalid("allowance", fmt.Sprintf("exceeds limit (%.2f): %.2f", n.limits.MaxAllowance, amount))
	}
	return amount, nil
}

// Notes caps notes length, truncating with a marker. Never fails.
func (n *Normalizer) Notes(notes string) string {
	limit := n.limits.NotesCap
	if limit <= 0 || utf8.RuneCountInString(notes) <= limit {
		return notes
	}

	var out string
	if keep := limit - len(truncationMarker); keep > 0 {
		out = string([]rune(notes)[:keep]) + truncationMarker
	} else {
		out = truncationMarker[:limit]
	}

	n.sink.Advise(advisory.Advisory{
		Kind:    advisory.NotesTruncated,
		Message: fmt.Sprintf("notes truncated to %d characters", limit),
	})
	return out
}

// Period checks a YYYY-MM budget period key without a Normalizer.
func Period(raw string) (string, error) {
	if !periodPattern.MatchString(raw) {
		return "", invalid("period", fmt.Sprintf("use YYYY-MM: %q", raw))
	}
	year, _ := strconv.Atoi(raw[:4])
	month, _ := strconv.Atoi(raw[5:])
	if year < 1900 || year > 2100 {
		return "", invalid("period", fmt.Sprintf("year out of range: %d", year))
	}
	if month < 1 || month > 12 {
		return "", invalid("period", fmt.Sprintf("month out of range: %d", month))
	}
	return raw, nil
}

func invalid(field, msg string) error {
	return &model.ValidationError{Field: field, Message: msg}
}
