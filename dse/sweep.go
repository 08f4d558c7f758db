package dse

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/lightningsim/graph"
	"github.com/sarchlab/lightningsim/schedule"
)

// Point is one result of a sweep: the BRAM cost of a configuration and the
// resulting top-level latency, or a nil Latency if that configuration
// deadlocks.
type Point struct {
	Config    Config
	Latency   *graph.ClockCycle
	BramCount int
}

// Sweep resolves sim once per configuration, overlaying each configuration's
// FIFO depths onto base. Configurations run concurrently; the graph and
// module tree are shared read-only, and each task gets its own node-cycle
// buffer, so there is no data race between tasks. A deadlock in one
// configuration is recorded as a nil Latency rather than aborting the rest
// of the sweep; only a genuine parameter error (missing FIFO width, missing
// AXI delay) aborts the whole sweep.
//
// The result order matches configs regardless of how the tasks interleave,
// so two sweeps over the same configs produce identical output regardless of
// GOMAXPROCS.
func Sweep(sim *graph.CompiledSimulation, base schedule.SimulationParameters, fifoWidths map[graph.FifoID]uint32, configs []Config) ([]Point, error) {
	points := make([]Point, len(configs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			point, err := resolveOne(sim, base, fifoWidths, cfg)
			if err != nil {
				return err
			}
			points[i] = point
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func resolveOne(sim *graph.CompiledSimulation, base schedule.SimulationParameters, fifoWidths map[graph.FifoID]uint32, cfg Config) (Point, error) {
	builder := schedule.FromSimulationParameters(base)

	bramCount := 0
	for fifo, depth := range cfg.fifoDepths {
		width, ok := fifoWidths[fifo]
		if !ok {
			return Point{}, &FifoWidthNotProvidedError{Fifo: fifo}
		}
		builder = builder.WithFifoDepth(fifo, depth)
		if depth != nil {
			bramCount += BramCount(width, *depth)
		}
	}

	cycles, err := schedule.Execute(sim, builder.Build())
	if _, deadlocked := err.(*schedule.DeadlockError); deadlocked {
		return Point{Config: cfg, Latency: nil, BramCount: bramCount}, nil
	}
	if err != nil {
		return Point{}, err
	}

	latency := sim.TopModule.End.Resolve(cycles)
	return Point{Config: cfg, Latency: &latency, BramCount: bramCount}, nil
}
