package pipeline

import "strings"

// Builder accumulates stages in call order. Methods return the builder so
// conditional assembly reads as a chain interleaved with plain if blocks.
type Builder struct {
	stages []Stage
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) Match(column string, value any) *Builder {
	b.stages = append(b.stages, Match{Column: column, Value: value})
	return b
}

func (b *Builder) MatchLower(column, value string) *Builder {
	b.stages = append(b.stages, MatchLower{Column: column, Value: strings.ToLower(value)})
	return b
}

func (b *Builder) Search(term string, columns ...string) *Builder {
	b.stages = append(b.stages, Search{Columns: columns, Term: term})
	return b
}

func (b *Builder) CountRelated(table, foreignColumn, as string) *Builder {
	b.stages = append(b.stages, CountRelated{Table: table, ForeignColumn: foreignColumn, As: as})
	return b
}

func (b *Builder) ExistsRelated(table, foreignColumn, whereColumn string, value any, as string) *Builder {
	b.stages = append(b.stages, ExistsRelated{
		Table:         table,
		ForeignColumn: foreignColumn,
		WhereColumn:   whereColumn,
		Value:         value,
		As:            as,
	})
	return b
}

func (b *Builder) Project(columns ...string) *Builder {
	b.stages = append(b.stages, Project{Columns: columns})
	return b
}

func (b *Builder) Sort(column string, desc bool) *Builder {
	b.stages = append(b.stages, Sort{Column: column, Desc: desc})
	return b
}

func (b *Builder) Skip(n int) *Builder {
	b.stages = append(b.stages, Skip{N: n})
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.stages = append(b.stages, Limit{N: n})
	return b
}

// Stages returns the assembled list in append order.
func (b *Builder) Stages() []Stage {
	return b.stages
}
