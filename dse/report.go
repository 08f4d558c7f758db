package dse

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report renders a sweep's results as the Pareto set of (latency, BRAM
// cost) points: configurations whose latency and BRAM cost aren't both
// dominated by another configuration in the set.
type Report struct {
	Points []Point
}

// NewReport filters points down to the Pareto frontier and wraps them in a
// Report.
func NewReport(points []Point) Report {
	return Report{Points: paretoFrontier(points)}
}

func paretoFrontier(points []Point) []Point {
	var frontier []Point
	for i, p := range points {
		if p.Latency == nil {
			continue
		}
		dominated := false
		for j, q := range points {
			if i == j || q.Latency == nil {
				continue
			}
			if q.BramCount <= p.BramCount && *q.Latency <= *p.Latency &&
				(q.BramCount < p.BramCount || *q.Latency < *p.Latency) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, p)
		}
	}
	return frontier
}

// WriteTable renders the Pareto set as a table, mirroring the register-dump
// tables in core/util.go.
func (r Report) WriteTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Design Space Exploration")
	t.AppendHeader(table.Row{"Configuration", "Latency", "BRAM Count"})

	for _, p := range r.Points {
		latency := "deadlock"
		if p.Latency != nil {
			latency = fmt.Sprintf("%d", *p.Latency)
		}
		t.AppendRow(table.Row{p.Config.Name(), latency, p.BramCount})
	}

	t.Render()
}
