package snowflake

import "fmt"

// ConnectionError represents a failure to establish or authenticate the
// Snowflake session.
type ConnectionError struct {
	Msg string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to Snowflake: %s: %v", e.Msg, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError represents a failed statement execution. Intent names what the
// statement was doing so the failing SQL is identifiable from the message.
type QueryError struct {
	Intent string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to execute query: %s: %v", e.Intent, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ColumnError represents a decode failure for one named result column.
type ColumnError struct {
	Column  string
	Message string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("failed to read column %s: %s", e.Column, e.Message)
}
