package model

import (
	"fmt"
	"strings"
	"time"
)

// Todo is the domain model for a todo entry.
// FinishedAt is non-nil exactly when Done is true.
type Todo struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	Done       bool       `json:"done"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Text *string
	Done *bool
}

func (p Patch) Empty() bool { return p.Text == nil && p.Done == nil }

// Filter restricts a listing by completion state.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterDone   Filter = "done"
	FilterUndone Filter = "undone"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterDone, FilterUndone}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterDone, FilterUndone:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, done or undone)", s)
}

// Match reports whether t belongs in a listing under f.
func (f Filter) Match(t Todo) bool {
	switch f {
	case FilterDone:
		return t.Done
	case FilterUndone:
		return !t.Done
	}
	return true
}

// Next cycles all -> done -> undone -> all.
func (f Filter) Next() Filter {
	for i, x := range Filters {
		if x == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

func (f Filter) Label() string {
	switch f {
	case FilterDone:
		return "Done"
	case FilterUndone:
		return "Undone"
	}
	return "All"
}

// TimeField selects which timestamp a range query compares.
type TimeField string

const (
	ByFinishedAt TimeField = "finished_at"
	ByCreatedAt  TimeField = "created_at"
)

func ParseTimeField(s string) (TimeField, error) {
	switch f := TimeField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ByFinishedAt, nil
	case ByFinishedAt, ByCreatedAt:
		return f, nil
	}
	return "", fmt.Errorf("unknown time field %q (want finished_at or created_at)", s)
}

// RangeOptions tune a date-range query. Zero values mean finished_at / all.
type RangeOptions struct {
	By     TimeField
	Status Filter
}
