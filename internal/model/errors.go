package model

import "fmt"

// DataError reports a record that reached the scoring pipeline with an
// invalid field. The whole run aborts on the first DataError; the pipeline
// never silently drops records.
type DataError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid record %q: %s: %s", e.RecordID, e.Field, e.Reason)
}

// ConfigurationError reports an invalid run parameter. Raised before any
// computation begins.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Param, e.Reason)
}
