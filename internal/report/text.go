package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
)

var weekdayAbbrev = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WriteText renders a human readable status report of flow at now.
func WriteText(w io.Writer, flow *model.Flow, now time.Time) error {
	fs := Statuses(flow, now)

	if _, err := fmt.Fprintf(w, "Flow: %s\nGenerated: %s\n\n", flow.Title, now.Format("2006-01-02 15:04 MST")); err != nil {
		return err
	}
	if len(flow.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i := range flow.Tasks {
		t := &flow.Tasks[i]
		ts := fs.Tasks[i]
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, t.Title, ts.Label, describeSchedule(t))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nCompleted today: %d/%d\n", fs.Completed, fs.Scheduled)
	return err
}

func describeSchedule(t *model.Task) string {
	var parts []string

	switch {
	case t.StartDate != nil && t.EndDate != nil && *t.StartDate != *t.EndDate:
		parts = append(parts, t.StartDate.String()+".."+t.EndDate.String())
	case t.StartDate != nil:
		parts = append(parts, t.StartDate.String())
	case t.EndDate != nil:
		parts = append(parts, t.EndDate.String())
	}

	if t.StartTime != nil || t.EndTime != nil {
		from, to := "00:00", "23:59"
		if t.StartTime != nil {
			from = t.StartTime.String()
		}
		if t.EndTime != nil {
			to = t.EndTime.String()
		}
		parts = append(parts, from+"-"+to)
	}

	if len(t.RecurringDays) > 0 {
		days := make([]string, len(t.RecurringDays))
		for i, d := range t.RecurringDays {
			days[i] = weekdayAbbrev[d]
		}
		parts = append(parts, strings.Join(days, ","))
	}

	if len(parts) == 0 {
		return "daily"
	}
	return strings.Join(parts, " ")
}
