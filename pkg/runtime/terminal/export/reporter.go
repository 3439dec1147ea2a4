package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/inventory"
)

type TableConfig struct {
	LabelWidth int
	CountWidth int
	ShareWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 24,
		CountWidth: 8,
		ShareWidth: 8,
	}
}

// historyWidths are the column widths of the history table: time, instances,
// running, reserved, matched and cost per hour.
var historyWidths = []int{20, 9, 7, 8, 7, 10}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type summaryRow struct {
	Label string
	Count int
	Share float64
}

type summaryReport struct {
	Status      string
	Error       string
	LastRefresh string
	Rows        []summaryRow
	Totals      []summaryRow
	Cost        string
}

func newSummaryReport(view inventory.View) summaryReport {
	snapshot := view.Snapshot()
	return summaryReport{
		Status:      view.State().Status.String(),
		Error:       view.ErrorMessage(),
		LastRefresh: view.LastRefresh(),
		Rows: []summaryRow{
			{Label: "Instances", Count: view.InstanceCount(), Share: view.InstancePct()},
			{Label: "Running", Count: view.RunningCount(), Share: view.RunningPct()},
			{Label: "In VPC", Count: view.InVPCCount(), Share: view.InVPCPct()},
			{Label: "Reserved", Count: view.ReservedCount(), Share: view.ReservedPct()},
			{Label: "Unmatched reservations", Count: view.UnmatchedCount(), Share: view.UnmatchedPct()},
		},
		Totals: []summaryRow{
			{Label: "Load balancers", Count: len(snapshot.LoadBalancers)},
			{Label: "Databases", Count: len(snapshot.Databases)},
			{Label: "Caches", Count: len(snapshot.Caches)},
			{Label: "Volumes", Count: len(snapshot.Volumes)},
			{Label: "Domain records", Count: len(snapshot.DomainRecords)},
			{Label: "Stacks", Count: len(snapshot.Stacks)},
		},
		Cost: view.FormattedCost(),
	}
}

func rowFuncs(widths []int) template.FuncMap {
	return template.FuncMap{
		"formatRow": func(cells ...interface{}) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf("%-*v", widths[i], cell)
			}
			return "| " + strings.Join(parts, " | ") + " |"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
	}
}

// Summary prints the dashboard figures of a view.
func (c *Reporter) Summary(view inventory.View) error {
	tmpl := `
Fleet inventory
Last refresh: {{.LastRefresh}}
Status: {{.Status}}{{if .Error}} ({{.Error}}){{end}}

{{separator}}
{{formatRow "Resource" "Count" "Share"}}
{{separator}}
{{range .Rows}}{{formatRow .Label .Count (pct .Share)}}
{{end}}{{separator}}

{{range .Totals}}{{.Label}}: {{.Count}}
{{end}}
Cost per hour: $ {{.Cost}}
`

	widths := []int{c.config.LabelWidth, c.config.CountWidth, c.config.ShareWidth}
	t, err := template.New("summary").Funcs(rowFuncs(widths)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, newSummaryReport(view))
}

// History prints one table row per recorded cycle.
func (c *Reporter) History(summaries []domain.Summary) error {
	tmpl := `
{{separator}}
{{formatRow "Time" "Instances" "Running" "Reserved" "Matched" "Cost/h"}}
{{separator}}
{{range .}}{{formatRow (.Timestamp.UTC.Format "2006-01-02 15:04:05") .InstanceCount .RunningCount .ReservedUnits.String .ReservedUsedUnits.String (.TotalCostPerHour.StringFixed 4)}}
{{end}}{{separator}}
`

	t, err := template.New("history").Funcs(rowFuncs(historyWidths)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, summaries)
}
