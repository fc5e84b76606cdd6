package schema

import "fmt"

type tableKey struct {
	schemaName string
	tableName  string
}

// Aggregate folds column rows into one TableInfo per (schema, table) run.
// The input must be ordered so that rows of the same table are contiguous;
// the catalog query orders by schema, table and ordinal position. A key that
// reappears after its group has closed means that precondition was violated
// and Aggregate fails rather than emit a split table.
//
// An empty input yields an empty, non-nil table slice so the exported
// artifact is an empty array.
func Aggregate(database string, rows []ColumnRow) ([]TableInfo, error) {
	tables := make([]TableInfo, 0)
	closed := make(map[tableKey]bool)

	var current *TableInfo
	var currentKey tableKey

	for _, row := range rows {
		key := tableKey{schemaName: row.SchemaName, tableName: row.TableName}
		if current == nil || key != currentKey {
			if current != nil {
				closed[currentKey] = true
				tables = append(tables, *current)
			}
			if closed[key] {
				return nil, fmt.Errorf(
					"column rows out of order: %s.%s reappeared after its group closed",
					key.schemaName, key.tableName)
			}
			current = &TableInfo{
				DatabaseName: database,
				SchemaName:   row.SchemaName,
				TableName:    row.TableName,
			}
			currentKey = key
		}
		current.Columns = append(current.Columns, row.Column)
	}

	if current != nil {
		tables = append(tables, *current)
	}
	return tables, nil
}
