package lead

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Clause is one compiled constraint. It renders to SQL for the store and
// evaluates directly against a Lead for in-memory data.
type Clause interface {
	sq.Sqlizer
	Match(l *Lead) bool
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// searchText is the lowercased name, email and phone of l, one per line.
// It is persisted as leads.search_text so the store and in-memory data fold
// case the same way.
func searchText(l *Lead) string {
	return strings.ToLower(strings.Join([]string{l.FirstName, l.LastName, l.Email, l.Phone}, "\n"))
}

// searchClause: case-insensitive substring over name, email and phone
type searchClause struct {
	term string
}

func (c searchClause) ToSql() (string, []interface{}, error) {
	return sq.Expr("search_text LIKE ? ESCAPE '\\'", containsPattern(c.term)).ToSql()
}

func (c searchClause) Match(l *Lead) bool {
	return strings.Contains(searchText(l), c.term)
}

// membershipClause: field value IN values
type membershipClause struct {
	column string
	values []string
	field  func(*Lead) string
}

func membership(column string, values []string, field func(*Lead) string) (Clause, bool) {
	values = nonEmpty(values)
	if len(values) == 0 {
		return nil, false
	}
	return membershipClause{column: column, values: values, field: field}, true
}

func (c membershipClause) ToSql() (string, []interface{}, error) {
	return sq.Eq{c.column: c.values}.ToSql()
}

func (c membershipClause) Match(l *Lead) bool {
	return slices.Contains(c.values, c.field(l))
}

// overlapClause: the collection shares at least one element with values.
// Collections are stored as JSON arrays, so each element is matched by its
// JSON-encoded form.
type overlapClause struct {
	column string
	values []string
	field  func(*Lead) []string
}

func overlap(column string, values []string, field func(*Lead) []string) (Clause, bool) {
	values = nonEmpty(values)
	if len(values) == 0 {
		return nil, false
	}
	return overlapClause{column: column, values: values, field: field}, true
}

func (c overlapClause) ToSql() (string, []interface{}, error) {
	or := make(sq.Or, 0, 4*len(c.values))
	for _, v := range c.values {
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", nil, err
		}
		// arrays are stored without spaces, so an element is bounded by [ or , and by ] or ,
		elem := likeEscaper.Replace(string(encoded))
		for _, pattern := range []string{"[" + elem + "]", "[" + elem + ",%", "%," + elem + ",%", "%," + elem + "]"} {
			or = append(or, sq.Expr(c.column+" LIKE ? ESCAPE '\\'", pattern))
		}
	}
	return or.ToSql()
}

func (c overlapClause) Match(l *Lead) bool {
	for _, v := range c.field(l) {
		if slices.Contains(c.values, v) {
			return true
		}
	}
	return false
}

// createdRangeClause: created_at within [from, to], either bound optional
type createdRangeClause struct {
	from, to *time.Time
}

func newCreatedRange(from, to *time.Time) createdRangeClause {
	c := createdRangeClause{}
	if from != nil {
		f := from.UTC()
		c.from = &f
	}
	if to != nil {
		t := to.UTC()
		c.to = &t
	}
	return c
}

func (c createdRangeClause) ToSql() (string, []interface{}, error) {
	and := sq.And{}
	if c.from != nil {
		and = append(and, sq.GtOrEq{"created_at": *c.from})
	}
	if c.to != nil {
		and = append(and, sq.LtOrEq{"created_at": *c.to})
	}
	return and.ToSql()
}

func (c createdRangeClause) Match(l *Lead) bool {
	if c.from != nil && l.CreatedAt.Before(*c.from) {
		return false
	}
	if c.to != nil && l.CreatedAt.After(*c.to) {
		return false
	}
	return true
}

// scoreRangeClause: lead_score within [min, max], either bound optional
type scoreRangeClause struct {
	min, max *int
}

func (c scoreRangeClause) ToSql() (string, []interface{}, error) {
	and := sq.And{}
	if c.min != nil {
		and = append(and, sq.GtOrEq{"lead_score": *c.min})
	}
	if c.max != nil {
		and = append(and, sq.LtOrEq{"lead_score": *c.max})
	}
	return and.ToSql()
}

func (c scoreRangeClause) Match(l *Lead) bool {
	if c.min != nil && l.LeadScore < *c.min {
		return false
	}
	if c.max != nil && l.LeadScore > *c.max {
		return false
	}
	return true
}
