package dse

import (
	"fmt"

	"github.com/sarchlab/lightningsim/graph"
)

// FifoWidthNotProvidedError is returned when a configuration in a sweep
// touches a FIFO that has no entry in the width table needed to cost it.
type FifoWidthNotProvidedError struct {
	Fifo graph.FifoID
}

func (e *FifoWidthNotProvidedError) Error() string {
	return fmt.Sprintf("dse: FIFO width not provided for %d", e.Fifo)
}

// Config is one point in the sweep: a set of FIFO depth overrides to lay
// over a base parameter set.
type Config struct {
	name       string
	fifoDepths map[graph.FifoID]*int
}

// Name identifies the configuration in a Report.
func (c Config) Name() string {
	return c.name
}

// ConfigBuilder builds a Config with the same chained With... idiom as
// schedule.SimulationParametersBuilder.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder starts a Config with the given display name.
func NewConfigBuilder(name string) ConfigBuilder {
	return ConfigBuilder{config: Config{name: name}}
}

// WithFifoDepth overrides the depth of one FIFO for this configuration.
// depth == nil explicitly unsets it (shift-register default) rather than
// leaving it inherited from the base parameters.
func (b ConfigBuilder) WithFifoDepth(id graph.FifoID, depth *int) ConfigBuilder {
	b.config.fifoDepths = cloneFifoDepths(b.config.fifoDepths)
	b.config.fifoDepths[id] = depth
	return b
}

func (b ConfigBuilder) Build() Config {
	return b.config
}

func cloneFifoDepths(m map[graph.FifoID]*int) map[graph.FifoID]*int {
	clone := make(map[graph.FifoID]*int, len(m)+1)
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
