package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// csvHeader is the fixed column layout of an assignment results export
var csvHeader = []string{"Email ID", "Subject", "From", "Status", "Error", "Case ID", "Timestamp"}

// WriteResultsCSV writes reconciled assignment results as CSV, one row per
// result. The export is derived entirely from already-reconciled client
// state; it never consults the backend.
func WriteResultsCSV(w io.Writer, results []AssignmentResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, res := range results {
		status := "failed"
		if res.Success {
			status = "assigned"
		}
		row := []string{
			res.EmailID,
			res.Email.Subject,
			res.Email.From,
			status,
			res.Error,
			res.CaseID,
			res.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
