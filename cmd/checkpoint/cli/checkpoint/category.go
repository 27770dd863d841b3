// Package checkpoint decides when a session checkpoint commits, when the
// accumulated commits are pushed, and records a metadata snapshot of every
// checkpoint it takes.
//
// The package talks to git only through the Repository interface and to the
// metrics documents only through MetricsReader, so every policy can be
// exercised with fakes.
package checkpoint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for a category name outside the closed set.
// It signals an integration bug in the caller, not a runtime condition.
var ErrUnknownCategory = errors.New("unknown checkpoint category")

// Category is the kind of checkpoint being taken.
type Category string

const (
	Auto        Category = "auto"
	Agent       Category = "agent"
	Domain      Category = "domain"
	Security    Category = "security"
	Performance Category = "performance"
	Milestone   Category = "milestone"
	SessionEnd  Category = "session-end"
)

type categorySpec struct {
	prefix         string
	defaultMessage string
	// gated categories only record when enough files changed.
	gated bool
	// forced categories commit even with auto-commit disabled and push
	// regardless of the batch size.
	forced bool
}

var categorySpecs = map[Category]categorySpec{
	Auto:        {prefix: "checkpoint:", defaultMessage: "Auto-checkpoint", gated: true},
	Agent:       {prefix: "feat(agent):", defaultMessage: "Agent checkpoint"},
	Domain:      {prefix: "feat(domain):", defaultMessage: "Domain checkpoint"},
	Security:    {prefix: "security:", defaultMessage: "Security checkpoint"},
	Performance: {prefix: "perf:", defaultMessage: "Performance checkpoint"},
	Milestone:   {prefix: "milestone:", defaultMessage: "Milestone reached"},
	SessionEnd:  {prefix: "session:", defaultMessage: "End of session checkpoint", forced: true},
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Auto, Agent, Domain, Security, Performance, Milestone, SessionEnd}
}

// ParseCategory accepts a bare category name ("agent") or its command form
// ("agent-checkpoint").
func ParseCategory(s string) (Category, error) {
	name := strings.TrimSuffix(strings.TrimSpace(s), "-checkpoint")
	c := Category(name)
	if _, ok := categorySpecs[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categorySpecs[c]
	return ok
}

// CommitPrefix is the conventional-commit style prefix of the category.
func (c Category) CommitPrefix() string {
	return categorySpecs[c].prefix
}

// DefaultMessage is used when the caller supplies no message.
func (c Category) DefaultMessage() string {
	return categorySpecs[c].defaultMessage
}

// IsThresholdGated reports whether the category only records once the
// minimum number of changed files is reached.
func (c Category) IsThresholdGated() bool {
	return categorySpecs[c].gated
}

// IsForced reports whether the category bypasses the auto-commit switch and
// the push batch size.
func (c Category) IsForced() bool {
	return categorySpecs[c].forced
}

// CommandName is the CLI command that takes this checkpoint.
func (c Category) CommandName() string {
	if c == SessionEnd {
		return string(c)
	}
	return string(c) + "-checkpoint"
}
