package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"vidtube/internal/pipeline"
)

// compilePipeline translates an assembled stage list into one gorm query
// rooted at table. Filter/sort/paginate stages apply directly; CountRelated
// and ExistsRelated become correlated subquery columns so the whole request
// still executes as a single round trip. extraSelects lets an executor add
// join projections of its own (e.g. flattened owner columns).
func compilePipeline(db *gorm.DB, table string, stages []pipeline.Stage, extraSelects ...string) *gorm.DB {
	var (
		selectExprs []string
		selectArgs  []any
		projected   bool
	)

	for _, s := range stages {
		switch st := s.(type) {
		case pipeline.Match:
			db = db.Where(fmt.Sprintf("%s.%s = ?", table, st.Column), st.Value)
		case pipeline.MatchLower:
			db = db.Where(fmt.Sprintf("LOWER(%s.%s) = ?", table, st.Column), st.Value)
		case pipeline.Search:
			var ors []string
			var args []any
			for _, col := range st.Columns {
				ors = append(ors, fmt.Sprintf("%s.%s LIKE ?", table, col))
				args = append(args, "%"+st.Term+"%")
			}
			db = db.Where(strings.Join(ors, " OR "), args...)
		case pipeline.CountRelated:
			selectExprs = append(selectExprs, fmt.Sprintf(
				"(SELECT COUNT(*) FROM %s WHERE %s.%s = %s.id) AS %s",
				st.Table, st.Table, st.ForeignColumn, table, st.As,
			))
		case pipeline.ExistsRelated:
			selectExprs = append(selectExprs, fmt.Sprintf(
				"EXISTS(SELECT 1 FROM %s WHERE %s.%s = %s.id AND %s.%s = ?) AS %s",
				st.Table, st.Table, st.ForeignColumn, table, st.Table, st.WhereColumn, st.As,
			))
			selectArgs = append(selectArgs, st.Value)
		case pipeline.Project:
			projected = true
			qualified := make([]string, 0, len(st.Columns))
			for _, col := range st.Columns {
				qualified = append(qualified, fmt.Sprintf("%s.%s", table, col))
			}
			selectExprs = append(qualified, selectExprs...)
		case pipeline.Sort:
			direction := "ASC"
			if st.Desc {
				direction = "DESC"
			}
			db = db.Order(fmt.Sprintf("%s.%s %s", table, st.Column, direction))
		case pipeline.Skip:
			db = db.Offset(st.N)
		case pipeline.Limit:
			db = db.Limit(st.N)
		}
	}

	if !projected {
		selectExprs = append([]string{table + ".*"}, selectExprs...)
	}
	selectExprs = append(selectExprs, extraSelects...)
	return db.Select(strings.Join(selectExprs, ", "), selectArgs...)
}
