package latency

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// TimingConfig holds the modeled execution latency of each functional
// unit, in cycles from issue to completion.
type TimingConfig struct {
	// ALULatency covers arithmetic and every instruction without a more
	// specific unit. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency covers conditional branches and register-indirect
	// jumps. Misprediction cost is modeled by the fetch queue, not here.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// LoadLatency assumes the fast path; there is no cache model.
	// Default: 1 cycle.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is fire-and-forget. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// MulDivLatency covers the shared multiply/divide unit. Default: 2
	// cycles, matching the extra write-back cycle the unit tracker
	// reserves.
	MulDivLatency uint64 `json:"muldiv_latency"`
}

// DefaultTimingConfig returns the CVA6-based default latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:    1,
		BranchLatency: 1,
		LoadLatency:   1,
		StoreLatency:  1,
		MulDivLatency: 2,
	}
}

// LoadConfig reads a TimingConfig from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading timing config %s", path)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parsing timing config %s", path)
	}
	return config, nil
}
