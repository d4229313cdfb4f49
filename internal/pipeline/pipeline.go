// Package pipeline models a multi-stage aggregation request as an ordered
// list of typed stage variants. Callers assemble stages conditionally with
// the Builder (optional parameters append stages, absent ones do not) and
// hand the finished list to a repository executor, which compiles it into a
// single composed query rather than issuing sequential round trips.
package pipeline

// Stage is a single data-shaping step. The concrete variants below are the
// full vocabulary the repository executors understand.
type Stage interface {
	stage()
}

// Match filters rows on column equality.
type Match struct {
	Column string
	Value  any
}

// MatchLower filters on case-insensitive equality; Value is lowercased by
// the builder so executors compare LOWER(column) against it directly.
type MatchLower struct {
	Column string
	Value  string
}

// Search filters rows where any of Columns contains Term.
type Search struct {
	Columns []string
	Term    string
}

// CountRelated adds a correlated count over a related table as column As.
// ForeignColumn names the related table's column matched against the root
// row's primary key.
type CountRelated struct {
	Table         string
	ForeignColumn string
	As            string
}

// ExistsRelated adds a boolean column As that is true when a row exists in
// the related table matching the root's primary key on ForeignColumn and
// Value on WhereColumn.
type ExistsRelated struct {
	Table         string
	ForeignColumn string
	WhereColumn   string
	Value         any
	As            string
}

// Project restricts the output to the named columns (plus any columns added
// by CountRelated/ExistsRelated stages).
type Project struct {
	Columns []string
}

// Sort orders the result by Column.
type Sort struct {
	Column string
	Desc   bool
}

// Skip drops the first N rows.
type Skip struct {
	N int
}

// Limit caps the result at N rows.
type Limit struct {
	N int
}

func (Match) stage()         {}
func (MatchLower) stage()    {}
func (Search) stage()        {}
func (CountRelated) stage()  {}
func (ExistsRelated) stage() {}
func (Project) stage()       {}
func (Sort) stage()          {}
func (Skip) stage()          {}
func (Limit) stage()         {}
