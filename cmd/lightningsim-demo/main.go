// Command lightningsim-demo exercises the compile/schedule/dse packages
// end to end against a small hand-built trace, the way samples/*/main.go
// exercises the CGRA driver against a hand-written kernel.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/lightningsim/compile"
	"github.com/sarchlab/lightningsim/dse"
	"github.com/sarchlab/lightningsim/graph"
	"github.com/sarchlab/lightningsim/schedule"
)

const demoFifo graph.FifoID = 1

// buildDemoTrace compiles a two-stage pipeline: a producer module writes
// into a FIFO that a consumer module reads from, and the top module waits
// for both to return.
func buildDemoTrace() (*graph.CompiledSimulation, error) {
	b := compile.NewBuilder()

	b.Call(0, 0, 4, 0, false)
	b.AddFifoWrite(0, 2, demoFifo)
	b.Return("producer", 4)

	b.Call(4, 4, 10, 0, false)
	b.AddFifoRead(4, 6, demoFifo)
	b.Return("consumer", 10)

	b.Return("top", 10)

	return b.Finish()
}

func printSchedule(sim *graph.CompiledSimulation, params schedule.SimulationParameters) error {
	result, err := schedule.Run(sim, params)
	if err != nil {
		return fmt.Errorf("resolving schedule: %w", err)
	}
	top := result.TopModule

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Module Schedule")
	t.AppendHeader(table.Row{"Module", "Start", "ap_done", "End"})

	var addRows func(m *schedule.SimulatedModule)
	addRows = func(m *schedule.SimulatedModule) {
		t.AppendRow(table.Row{m.Name, m.Start, m.ApDone, m.End})
		for _, sub := range m.Submodules {
			addRows(sub)
		}
	}
	addRows(top)

	t.Render()
	return nil
}

func runDemoSweep(sim *graph.CompiledSimulation, base schedule.SimulationParameters) error {
	widths := map[graph.FifoID]uint32{demoFifo: 8}

	var configs []dse.Config
	for _, depth := range dse.DesignSpace(8, 32) {
		depth := depth
		configs = append(configs, dse.NewConfigBuilder(fmt.Sprintf("depth=%d", depth)).
			WithFifoDepth(demoFifo, &depth).
			Build())
	}

	points, err := dse.Sweep(sim, base, widths, configs)
	if err != nil {
		return fmt.Errorf("sweeping design space: %w", err)
	}

	dse.NewReport(points).WriteTable(os.Stdout)
	return nil
}

func main() {
	sim, err := buildDemoTrace()
	if err != nil {
		fmt.Fprintln(os.Stderr, "compiling trace:", err)
		os.Exit(1)
	}

	depth := 4
	base := schedule.NewSimulationParametersBuilder().
		WithFifoDepth(demoFifo, &depth).
		Build()

	if err := printSchedule(sim, base); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := runDemoSweep(sim, base); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	atexit.Exit(0)
}
