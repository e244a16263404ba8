package notify

import (
	"fmt"
	"strings"
	"time"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	signature       = "Regards,\nAutomated Reporting"
)

// Count is one line of the success summary.
type Count struct {
	Name    string
	Records int
}

// Failure is one line of a failure summary.
type Failure struct {
	Step string
	Err  string
}

// Subject builds the subject line, e.g. "Daily Report - FAILED".
func Subject(reportType string, ok bool) string {
	status := "SUCCESS"
	if !ok {
		status = "FAILED"
	}
	title := "Report"
	if reportType != "" {
		title = strings.ToUpper(reportType[:1]) + strings.ToLower(reportType[1:]) + " Report"
	}
	return fmt.Sprintf("%s - %s", title, status)
}

func SuccessBody(counts []Count, at time.Time) string {
	var b strings.Builder
	b.WriteString("Hello,\n\nAttached is your automated report.\n\n")
	if len(counts) > 0 {
		b.WriteString("Records generated:\n")
		for _, c := range counts {
			fmt.Fprintf(&b, "- %s: %d\n", c.Name, c.Records)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Timestamp: %s\n\n%s\n", at.Format(timestampLayout), signature)
	return b.String()
}

// FailureBody lists the step failures and the diagnosis of the run log.
func FailureBody(failures []Failure, diagnosis string, at time.Time) string {
	var b strings.Builder
	b.WriteString("Hello,\n\nThe automated report failed due to the following errors:\n\n")
	writeFailures(&b, failures)
	if diagnosis != "" {
		fmt.Fprintf(&b, "\nLikely cause: %s\n", diagnosis)
	}
	fmt.Fprintf(&b, "\nTimestamp: %s\n\n%s\n", at.Format(timestampLayout), signature)
	return b.String()
}

func AdminSuccessBody(at time.Time) string {
	var b strings.Builder
	b.WriteString("Hello Admin,\n\nThe automated report has been successfully generated.\n\n")
	b.WriteString("This email contains:\n- Excel report\n- run.log file (execution log)\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n\n%s\n", at.Format(timestampLayout), signature)
	return b.String()
}

func AdminFailureBody(failures []Failure, diagnosis string, at time.Time) string {
	var b strings.Builder
	b.WriteString("Hello Admin,\n\nThe automated report FAILED.\n\nErrors:\n")
	writeFailures(&b, failures)
	if diagnosis != "" {
		fmt.Fprintf(&b, "\nDiagnosis: %s\n", diagnosis)
	}
	b.WriteString("\nThis email contains:\n- run.log file only (Excel not generated)\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n\n%s\n", at.Format(timestampLayout), signature)
	return b.String()
}

func writeFailures(b *strings.Builder, failures []Failure) {
	if len(failures) == 0 {
		b.WriteString("- unknown: no error was recorded\n")
		return
	}
	for _, f := range failures {
		fmt.Fprintf(b, "- %s: %s\n", f.Step, f.Err)
	}
}
