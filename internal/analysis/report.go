package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	clusterColor = color.New(color.FgYellow, color.Bold)
)

// Report prints the analysis of term to w. A nil result prints the no-data
// notice.
func Report(w io.Writer, term string, res *Result) {
	if res == nil {
		fmt.Fprintln(w, "No product data collected.")
		return
	}

	headingColor.Fprintf(w, "\n📊 Dataset Statistics for '%s':\n", term)
	t := newTable(w)
	t.AppendHeader(table.Row{"", "price"})
	for _, row := range summaryRows(res.Overall) {
		t.AppendRow(row)
	}
	t.Render()

	fmt.Fprintf(w, "\n🧾 Total products analyzed: %d\n", res.Overall.Count)
	if res.PlotPath != "" {
		fmt.Fprintf(w, "🖼  Price scatter plot saved to %s (pass --plot \"\" or set analysis.plot_path to \"\" to skip it)\n", res.PlotPath)
	}

	headingColor.Fprintf(w, "\n📊 Title Cluster Statistics for '%s':\n", term)
	ct := newTable(w)
	ct.AppendHeader(table.Row{"cluster", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, c := range res.Clusters {
		s := c.Summary
		ct.AppendRow(table.Row{c.Label, s.Count,
			num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max)})
	}
	ct.Render()

	for _, c := range res.Clusters {
		clusterColor.Fprintf(w, "\nCluster %d sample titles:\n", c.Label)
		for _, title := range c.Samples {
			fmt.Fprintf(w, " - %s\n", title)
		}
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func summaryRows(s Summary) []table.Row {
	return []table.Row{
		{"count", s.Count},
		{"mean", num(s.Mean)},
		{"std", num(s.Std)},
		{"min", num(s.Min)},
		{"25%", num(s.Q25)},
		{"50%", num(s.Q50)},
		{"75%", num(s.Q75)},
		{"max", num(s.Max)},
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}
