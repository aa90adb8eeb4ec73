package publisher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crosspost/internal/ux"
)

// Report aggregates the results of one run.
type Report struct {
	RunID    string
	Results  []Result
	Skipped  []Platform
	Started  time.Time
	Finished time.Time
}

// Counts partitions results. A non-failed result with an artifact is a draft;
// other non-failed results are success or manual by status.
type Counts struct {
	Success int
	Draft   int
	Manual  int
	Failed  int
}

// Total is the number of results counted.
func (c Counts) Total() int { return c.Success + c.Draft + c.Manual + c.Failed }

// Counts computes the partition.
func (r *Report) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch {
		case res.Failed():
			c.Failed++
		case res.ArtifactPath != "":
			c.Draft++
		case res.Status == StatusSuccess:
			c.Success++
		default:
			c.Manual++
		}
	}
	return c
}

func statusLabel(s Status) string {
	switch s {
	case StatusSuccess:
		return "✅ success"
	case StatusManualCheckRequired:
		return "👀 check and publish"
	case StatusManualActionRequired:
		return "✋ paste and publish"
	case StatusFailed:
		return "❌ failed"
	default:
		return string(s)
	}
}

// Table renders the per-platform summary.
func (r *Report) Table() *ux.SimpleTable {
	t := ux.NewSimpleTable("Publish summary", []string{"Platform", "Status", "Reached", "Time", "Details"})
	for _, res := range r.Results {
		details := res.Error
		if details == "" {
			details = res.ArtifactPath
		}
		t.AddRow(
			res.Platform.DisplayName(),
			statusLabel(res.Status),
			res.Reached.String(),
			res.Duration.Round(100*time.Millisecond).String(),
			details,
		)
	}
	for _, p := range r.Skipped {
		t.AddRow(p.DisplayName(), "⏭ skipped", "-", "-", "")
	}
	return t
}

// Render returns the table, the counts and the manual verification reminder.
func (r *Report) Render(styles ux.Styles) string {
	var sb strings.Builder
	sb.WriteString(r.Table().View(styles))
	sb.WriteString("\n")
	c := r.Counts()
	sb.WriteString(styles.Success.Render("success: ") + strconv.Itoa(c.Success) + "  ")
	sb.WriteString(styles.Info.Render("draft: ") + strconv.Itoa(c.Draft) + "  ")
	sb.WriteString(styles.Warning.Render("manual: ") + strconv.Itoa(c.Manual) + "  ")
	sb.WriteString(styles.Error.Render("failed: ") + strconv.Itoa(c.Failed) + "\n\n")
	if c.Total()-c.Failed > 0 {
		sb.WriteString(styles.Warning.Render("⚠️  Nothing is published until you confirm it. Check every open tab before closing the browser."))
		sb.WriteString("\n")
	}
	return sb.String()
}

// String summarises the run in one line.
func (r *Report) String() string {
	c := r.Counts()
	return fmt.Sprintf("run %s: %d success, %d draft, %d manual, %d failed", r.RunID, c.Success, c.Draft, c.Manual, c.Failed)
}
