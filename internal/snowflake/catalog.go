package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/snowmapper/snowmapper/internal/schema"
)

// queryer is the slice of Session the catalog queries need.
type queryer interface {
	Query(ctx context.Context, intent, query string) (*sql.Rows, error)
}

// Catalog reads database, warehouse and column metadata through a session
// owned by the caller.
type Catalog struct {
	session queryer
	log     *zap.Logger
}

func NewCatalog(session *Session, log *zap.Logger) *Catalog {
	return &Catalog{session: session, log: log}
}

// ListDatabases returns every database visible to the active role.
func (c *Catalog) ListDatabases(ctx context.Context) ([]schema.DatabaseInfo, error) {
	rows, err := c.session.Query(ctx, "list databases", "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := readStringRows(rows)
	if err != nil {
		return nil, err
	}

	databases := make([]schema.DatabaseInfo, 0, len(records))
	for _, r := range records {
		db, err := decodeDatabase(r)
		if err != nil {
			return nil, err
		}
		databases = append(databases, db)
	}
	return databases, nil
}

// ListWarehouses returns every compute warehouse visible to the active role.
func (c *Catalog) ListWarehouses(ctx context.Context) ([]schema.WarehouseInfo, error) {
	warehouses, err := listWarehouses(ctx, c.session)
	if err != nil {
		return nil, err
	}
	c.log.Info("listed warehouses", zap.Int("count", len(warehouses)))
	return warehouses, nil
}

// ListColumns returns the column rows of every table in the database,
// ordered by schema name, table name and ordinal position. The aggregator
// depends on that ordering keeping each table's rows contiguous.
func (c *Catalog) ListColumns(ctx context.Context, database string) ([]schema.ColumnRow, error) {
	query := fmt.Sprintf(
		`SELECT table_schema, table_name, column_name, data_type,
		        is_nullable, character_maximum_length, numeric_precision, numeric_scale
		 FROM %s.information_schema.columns
		 ORDER BY table_schema, table_name, ordinal_position`, database)

	rows, err := c.session.Query(ctx, "list columns for database "+database, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.ColumnRow
	for rows.Next() {
		var tableSchema, tableName, columnName, dataType, isNullable sql.NullString
		var charMaxLength, numericPrecision, numericScale sql.NullString
		if err := rows.Scan(&tableSchema, &tableName, &columnName, &dataType,
			&isNullable, &charMaxLength, &numericPrecision, &numericScale); err != nil {
			return nil, &QueryError{Intent: "scan column row for database " + database, Err: err}
		}

		maxLength, err := optionalInt("character_maximum_length", charMaxLength)
		if err != nil {
			return nil, err
		}
		precision, err := optionalInt("numeric_precision", numericPrecision)
		if err != nil {
			return nil, err
		}
		scale, err := optionalInt("numeric_scale", numericScale)
		if err != nil {
			return nil, err
		}

		out = append(out, schema.ColumnRow{
			SchemaName: stringValue(tableSchema),
			TableName:  stringValue(tableName),
			Column: schema.ColumnInfo{
				Name:                   stringValue(columnName),
				DataType:               stringValue(dataType),
				IsNullable:             strings.EqualFold(stringValue(isNullable), "YES"),
				CharacterMaximumLength: maxLength,
				NumericPrecision:       precision,
				NumericScale:           scale,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Intent: "iterate column rows for database " + database, Err: err}
	}
	return out, nil
}

// listWarehouses is shared between Catalog.ListWarehouses and the session's
// warehouse-selection handshake.
func listWarehouses(ctx context.Context, q queryer) ([]schema.WarehouseInfo, error) {
	rows, err := q.Query(ctx, "list warehouses", "SHOW WAREHOUSES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := readStringRows(rows)
	if err != nil {
		return nil, err
	}

	warehouses := make([]schema.WarehouseInfo, 0, len(records))
	for _, r := range records {
		w, err := decodeWarehouse(r)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, nil
}

func decodeDatabase(r stringRow) (schema.DatabaseInfo, error) {
	var db schema.DatabaseInfo
	var err error
	if db.Name, err = r.string("name"); err != nil {
		return schema.DatabaseInfo{}, err
	}
	if db.CreatedOn, err = r.string("created_on"); err != nil {
		return schema.DatabaseInfo{}, err
	}
	if db.Owner, err = r.string("owner"); err != nil {
		return schema.DatabaseInfo{}, err
	}
	return db, nil
}

func decodeWarehouse(r stringRow) (schema.WarehouseInfo, error) {
	var w schema.WarehouseInfo
	var err error
	if w.Name, err = r.string("name"); err != nil {
		return schema.WarehouseInfo{}, err
	}
	if w.Size, err = r.string("size"); err != nil {
		return schema.WarehouseInfo{}, err
	}
	if w.State, err = r.string("state"); err != nil {
		return schema.WarehouseInfo{}, err
	}
	if w.Type, err = r.string("type"); err != nil {
		return schema.WarehouseInfo{}, err
	}
	return w, nil
}

// stringRow holds one result row from a SHOW command, addressable by
// lower-cased column name. SHOW result sets vary between Snowflake
// releases, so values are looked up by name rather than position.
type stringRow map[string]sql.NullString

// string returns the named column's value, with NULL decoding to the empty
// string. A column missing from the result set is a ColumnError.
func (r stringRow) string(column string) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", &ColumnError{Column: column, Message: "column not present in result set"}
	}
	return stringValue(v), nil
}

func readStringRows(rows *sql.Rows) ([]stringRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Intent: "read result columns", Err: err}
	}

	var out []stringRow
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Intent: "scan result row", Err: err}
		}

		record := make(stringRow, len(cols))
		for i, col := range cols {
			record[strings.ToLower(col)] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Intent: "iterate result rows", Err: err}
	}
	return out, nil
}

func stringValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// optionalInt decodes a numeric information-schema attribute. NULL and the
// empty string mean the attribute is absent; anything else must parse as an
// integer.
func optionalInt(column string, v sql.NullString) (*int, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v.String)
	if err != nil {
		return nil, &ColumnError{
			Column:  column,
			Message: fmt.Sprintf("cannot parse %q as integer: %v", v.String, err),
		}
	}
	return &n, nil
}
