// Package query translates listing parameters into a concrete predicate,
// ordering, and pagination window over persisted task columns. The plan
// is plain data so it can be built and tested without a database; the
// repository applies it to the store.
package query

import (
	"time"

	"github.com/hkaneko/taskboard/internal/model"
)

// Comparison operators a Condition may use.
const (
	OpEq      = "="
	OpLt      = "<"
	OpGt      = ">"
	OpNull    = "IS NULL"
	OpNotNull = "IS NOT NULL"
)

// Condition is one predicate over a persisted column. Value is ignored
// for the null-check operators.
type Condition struct {
	Column string
	Op     string
	Value  any
}

// ListParams are the optional filter/sort/page inputs for a task listing.
// Unknown or invalid values degrade to the defaults instead of failing
// the listing; callers that want strict validation must do it upstream.
type ListParams struct {
	Priority string
	Status   string
	Sort     string
	Order    string
	Page     int
	PerPage  int
}

// Plan is the executable form of a listing: an AND-conjunction of
// conditions, one sort key, and an offset/limit window.
type Plan struct {
	Conditions []Condition
	OrderBy    string
	Descending bool
	Offset     int
	Limit      int
}

// Pagination and sorting defaults.
const (
	DefaultSort    = "due_date"
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// sortable is the allow-list of columns a caller may sort by. Anything
// else falls back to DefaultSort rather than reaching the store.
var sortable = map[string]bool{
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
	"priority":   true,
	"title":      true,
}

// Build plans a listing of actorID's assigned tasks. The assignee
// restriction is unconditional; filters are applied only when their
// value is recognized. today anchors the status predicates at calendar
// day granularity.
func Build(actorID string, today time.Time, p ListParams) Plan {
	conds := []Condition{
		{Column: "assignee_id", Op: OpEq, Value: actorID},
	}

	if model.ValidPriority(model.Priority(p.Priority)) {
		conds = append(conds, Condition{Column: "priority", Op: OpEq, Value: p.Priority})
	}

	if model.ValidStatus(model.Status(p.Status)) {
		conds = append(conds, StatusConditions(model.Status(p.Status), today)...)
	}

	sortCol := p.Sort
	if !sortable[sortCol] {
		sortCol = DefaultSort
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Plan{
		Conditions: conds,
		OrderBy:    sortCol,
		Descending: p.Order == "desc",
		Offset:     (page - 1) * perPage,
		Limit:      perPage,
	}
}

// StatusConditions maps a derived status label onto predicates over the
// persisted completed_at and due_date columns. The mapping must stay
// equivalent to model.ResolveStatus so a status-filtered listing never
// disagrees with the status rendered on its members.
func StatusConditions(s model.Status, today time.Time) []Condition {
	day := model.DateOnly(today)

	switch s {
	case model.StatusDone:
		return []Condition{
			{Column: "completed_at", Op: OpNotNull},
		}
	case model.StatusMissed:
		return []Condition{
			{Column: "completed_at", Op: OpNull},
			{Column: "due_date", Op: OpLt, Value: day},
		}
	case model.StatusDueToday:
		return []Condition{
			{Column: "completed_at", Op: OpNull},
			{Column: "due_date", Op: OpEq, Value: day},
		}
	case model.StatusUpcoming:
		return []Condition{
			{Column: "completed_at", Op: OpNull},
			{Column: "due_date", Op: OpGt, Value: day},
		}
	}
	return nil
}
