// Package schema defines the catalog entities discovered during a run and
// the aggregation that folds column rows into per-table documents.
package schema

// ColumnInfo describes one column of a table, including the optional length
// and precision attributes from the information schema. Optional fields are
// nil when the catalog reports no value for them.
type ColumnInfo struct {
	Name                   string `json:"name"`
	DataType               string `json:"data_type"`
	IsNullable             bool   `json:"is_nullable"`
	CharacterMaximumLength *int   `json:"character_maximum_length"`
	NumericPrecision       *int   `json:"numeric_precision"`
	NumericScale           *int   `json:"numeric_scale"`
}

// TableInfo is one table document in the exported artifact. Columns are in
// catalog ordinal order.
type TableInfo struct {
	DatabaseName string       `json:"database_name"`
	SchemaName   string       `json:"schema_name"`
	TableName    string       `json:"table_name"`
	Columns      []ColumnInfo `json:"columns"`
}

// DatabaseInfo describes one database from SHOW DATABASES. When databases
// are given explicitly on the command line, CreatedOn and Owner are empty.
type DatabaseInfo struct {
	Name      string `json:"name"`
	CreatedOn string `json:"created_on"`
	Owner     string `json:"owner"`
}

// WarehouseInfo describes one compute warehouse from SHOW WAREHOUSES. It is
// only used to validate the configured warehouse name.
type WarehouseInfo struct {
	Name  string `json:"name"`
	Size  string `json:"size"`
	State string `json:"state"`
	Type  string `json:"type"`
}

// ColumnRow is one decoded row from the information-schema columns view,
// carrying the grouping key alongside the column itself.
type ColumnRow struct {
	SchemaName string
	TableName  string
	Column     ColumnInfo
}
