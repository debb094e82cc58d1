package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/compozy/repovault/internal/domain"
)

// Filter is a parsed selective filter for one entity. It is either a
// blanket enable/disable or an explicit set of original identifiers.
type Filter struct {
	all     bool
	none    bool
	numbers map[int]struct{}
}

// AllFilter enables every item of the entity.
func AllFilter() Filter { return Filter{all: true} }

// NoneFilter disables the entity entirely.
func NoneFilter() Filter { return Filter{none: true} }

// ParseFilter parses a selective filter value: "true"/"false", or a
// space-separated list of integers and inclusive A-B ranges such as
// "1-3 7 10-11". The empty string is rejected; an entity that should be
// excluded must say so with an explicit "false".
func ParseFilter(raw string) (Filter, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Filter{}, domain.NewConfigurationError(
			"selective filter cannot be empty; use an explicit \"false\" to disable an entity")
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return AllFilter(), nil
	case "false":
		return NoneFilter(), nil
	}
	numbers := make(map[int]struct{})
	for _, token := range strings.Fields(trimmed) {
		if err := parseFilterToken(token, numbers); err != nil {
			return Filter{}, err
		}
	}
	return Filter{numbers: numbers}, nil
}

func parseFilterToken(token string, into map[int]struct{}) error {
	if lo, hi, ok := strings.Cut(token, "-"); ok {
		start, err := strconv.Atoi(lo)
		if err != nil {
			return domain.NewConfigurationError("invalid filter range %q: %v", token, err)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return domain.NewConfigurationError("invalid filter range %q: %v", token, err)
		}
		if start > end {
			return domain.NewConfigurationError("invalid filter range %q: start exceeds end", token)
		}
		for n := start; n <= end; n++ {
			into[n] = struct{}{}
		}
		return nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return domain.NewConfigurationError("invalid filter token %q: %v", token, err)
	}
	into[n] = struct{}{}
	return nil
}

// Enabled reports whether the entity participates in the run at all. A
// number-set filter still enables the entity; it just restricts items.
func (f Filter) Enabled() bool { return !f.none }

// Selective reports whether the filter restricts to specific numbers.
func (f Filter) Selective() bool { return f.numbers != nil }

// Includes reports whether the given original identifier passes the
// filter.
func (f Filter) Includes(number int) bool {
	if f.none {
		return false
	}
	if f.all {
		return true
	}
	_, ok := f.numbers[number]
	return ok
}

// Numbers returns the explicit identifier set, or nil for blanket
// filters.
func (f Filter) Numbers() []int {
	if f.numbers == nil {
		return nil
	}
	out := make([]int, 0, len(f.numbers))
	for n := range f.numbers {
		out = append(out, n)
	}
	return out
}

// String renders the filter for logs.
func (f Filter) String() string {
	switch {
	case f.none:
		return "false"
	case f.all:
		return "true"
	default:
		return fmt.Sprintf("%d numbers", len(f.numbers))
	}
}
