package model

import "time"

// TableResult is the outcome of a table validation on a parsed dataset.
type TableResult struct {
	Timestamp      time.Time
	DatasetName    string
	ValidationName string
	Details        string
	AffectedGroups []map[string]string
	ErrorCount     int
	Passed         bool
}

// TableColumns lists the table report columns in output order.
var TableColumns = []string{
	"timestamp",
	"dataset_name",
	"validation_name",
	"status",
	"error_count",
	"details",
	"affected_groups_count",
	"affected_groups",
}

// StatusString renders Passed the way raw results render their status.
func (r TableResult) StatusString() string {
	if r.Passed {
		return string(StatusPassed)
	}
	return string(StatusFailed)
}
