package orchestrator

import (
	"fmt"
	"io"
	"strconv"

	"github.com/compozy/repovault/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintReport renders the per-entity outcome table followed by the
// one-line summary.
func PrintReport(w io.Writer, report *domain.RunReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ENTITY", "STATUS", "CREATED", "UPDATED", "SKIPPED", "DETAIL"})
	for _, r := range report.Results {
		table.Append([]string{
			string(r.Entity),
			statusCell(r),
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped),
			detailCell(r),
		})
	}
	table.Render()
	fmt.Fprintf(w, "%s %s: %s\n", report.Mode, report.SessionID, report.Summary())
}

func statusCell(r *domain.Result) string {
	if r.Status == domain.StatusFailed {
		return fmt.Sprintf("%s (%s)", r.Status, r.Stage)
	}
	return string(r.Status)
}

// detailCell shows the first error or warning; the full list goes to
// the structured log.
func detailCell(r *domain.Result) string {
	switch {
	case len(r.Errors) > 0:
		return r.Errors[0]
	case r.SkipReason != domain.SkipReasonNone:
		return string(r.SkipReason)
	case len(r.Warnings) > 0:
		return fmt.Sprintf("%d warning(s): %s", len(r.Warnings), r.Warnings[0])
	default:
		return ""
	}
}
