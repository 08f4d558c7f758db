package dse

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/lightningsim/graph"
)

// yamlDocument is the on-disk shape of a design-space config file: a FIFO
// width table (needed to cost each configuration's BRAM usage) plus a named
// list of per-FIFO depth overlays, one per sweep point.
type yamlDocument struct {
	FifoWidths map[graph.FifoID]uint32 `yaml:"fifo_widths"`
	Configs    []yamlConfigEntry       `yaml:"configs"`
}

type yamlConfigEntry struct {
	Name       string                `yaml:"name"`
	FifoDepths map[graph.FifoID]*int `yaml:"fifo_depths"`
}

// LoadConfigsFromYAML reads a design-space config file and returns the FIFO
// width table and configuration list it describes, ready to pass to Sweep.
func LoadConfigsFromYAML(path string) (map[graph.FifoID]uint32, []Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dse: reading design space config: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("dse: parsing design space config: %w", err)
	}

	configs := make([]Config, len(doc.Configs))
	for i, entry := range doc.Configs {
		b := NewConfigBuilder(entry.Name)
		for fifo, depth := range entry.FifoDepths {
			b = b.WithFifoDepth(fifo, depth)
		}
		configs[i] = b.Build()
	}

	return doc.FifoWidths, configs, nil
}
