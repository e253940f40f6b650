package pipeline

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds the core parameters of the modeled pipeline.
type Config struct {
	// IssueWidth is the number of instructions that may issue per cycle.
	// A second arithmetic unit is modeled whenever it is above 1.
	// Default: 1.
	IssueWidth int `json:"issue_width"`

	// CommitWidth is the number of done scoreboard entries that may
	// retire per cycle. Default: 2.
	CommitWidth int `json:"commit_width"`

	// ScoreboardDepth bounds the number of in-flight instructions.
	// Default: 8.
	ScoreboardDepth int `json:"scoreboard_depth"`

	// FetchSize is the requested fetch-word size in bytes; the fetch
	// queue rounds it up to a power of two, minimum 4. Zero selects
	// 4 bytes per issue slot. Default: 0.
	FetchSize int `json:"fetch_size"`

	// BHTEntries is the branch history table size. Default: 128.
	BHTEntries int `json:"bht_entries"`

	// RASDepth is the configured return-address-stack depth. One slot is
	// shadowed by the hardware, so the effective depth is one less.
	// Default: 2.
	RASDepth int `json:"ras_depth"`

	// HasForwarding lets a consumer issue once its producer is done
	// rather than committed. Default: true.
	HasForwarding bool `json:"has_forwarding"`

	// HasRenaming removes WAW and WAR hazards. Default: true.
	HasRenaming bool `json:"has_renaming"`
}

// DefaultConfig returns the CVA6-based default parameters.
func DefaultConfig() Config {
	return Config{
		IssueWidth:      1,
		CommitWidth:     2,
		ScoreboardDepth: 8,
		FetchSize:       0,
		BHTEntries:      128,
		RASDepth:        2,
		HasForwarding:   true,
		HasRenaming:     true,
	}
}

// LoadConfig reads a Config from a JSON file. Missing fields keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(err, "reading pipeline config %s", path)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "parsing pipeline config %s", path)
	}
	return config, nil
}

// fetchSize resolves the configured fetch size, defaulting to one
// 4-byte slot per issue lane.
func (c Config) fetchSize() int {
	if c.FetchSize > 0 {
		return c.FetchSize
	}
	return 4 * c.IssueWidth
}
