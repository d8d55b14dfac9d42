package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/canvass/internal/csvio"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when --config is omitted.
const DefaultFile = "canvass.yml"

// CanvassConfig represents the top-level canvass.yml configuration
type CanvassConfig struct {
	Version     string            `yaml:"version"`
	Strict      bool              `yaml:"strict,omitempty"`       // Require the full register layout and a complete street order
	StreetOrder []string          `yaml:"street_order"`           // Walking order of streets
	Canvassers  []CanvasserConfig `yaml:"canvassers,omitempty"`   // Inline roster
	RosterFile  string            `yaml:"roster_file,omitempty"`  // CSV roster with Name and Email columns
	RosterLists *RosterLists      `yaml:"roster_lists,omitempty"` // Comma-separated parallel lists
	// CanvasserCount creates anonymous canvassers "Canvasser 1".."Canvasser N"
	CanvasserCount int `yaml:"canvasser_count,omitempty"`
	Pairing     *PairingConfig    `yaml:"pairing,omitempty"`
	Assignment  *AssignmentConfig `yaml:"assignment,omitempty"`

	// Dir is the directory of the loaded file; relative paths resolve against it
	Dir string `yaml:"-"`
}

// CanvasserConfig is one inline roster entry
type CanvasserConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email,omitempty"`
}

// RosterLists holds names and emails typed as two comma-separated lists
type RosterLists struct {
	Names  string `yaml:"names"`
	Emails string `yaml:"emails"`
}

// PairingConfig groups canvassers into pairs
type PairingConfig struct {
	Count int               `yaml:"count,omitempty"` // Number of pairs (default: len(pairs))
	Pairs []roster.PairSpec `yaml:"pairs,omitempty"`
}

// AssignmentConfig selects how chunks are assigned
type AssignmentConfig struct {
	Mode   assign.Mode       `yaml:"mode,omitempty"`   // automatic (default) or manual
	Manual map[string]string `yaml:"manual,omitempty"` // chunk ID → canvasser, pair or Unassigned
}

// Validate performs strict validation on the configuration and applies defaults
func (c *CanvassConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := route.StreetOrder(c.StreetOrder).Validate(); err != nil {
		return fmt.Errorf("street_order: %w", err)
	}

	sources := 0
	if len(c.Canvassers) > 0 {
		sources++
	}
	if c.RosterFile != "" {
		sources++
	}
	if c.RosterLists != nil {
		sources++
	}
	if c.CanvasserCount < 0 {
		return fmt.Errorf("canvasser_count must be >= 0, got %d", c.CanvasserCount)
	}
	if c.CanvasserCount > 0 {
		sources++
	}
	if sources > 1 {
		return fmt.Errorf("only one of canvassers, roster_file, roster_lists or canvasser_count may be set")
	}

	if c.Pairing != nil {
		if c.Pairing.Count == 0 {
			c.Pairing.Count = len(c.Pairing.Pairs)
		}
		if c.Pairing.Count < 0 {
			return fmt.Errorf("pairing.count must be >= 0, got %d", c.Pairing.Count)
		}
		if len(c.Pairing.Pairs) > c.Pairing.Count {
			return fmt.Errorf("pairing.count is %d but %d pairs are listed", c.Pairing.Count, len(c.Pairing.Pairs))
		}
	}

	if c.Assignment == nil {
		c.Assignment = &AssignmentConfig{}
	}
	if c.Assignment.Mode == "" {
		c.Assignment.Mode = assign.ModeAutomatic
	}
	if err := c.Assignment.Mode.Validate(); err != nil {
		return fmt.Errorf("assignment.mode: %w", err)
	}

	return nil
}

// Policy returns the street-order policy implied by Strict
func (c *CanvassConfig) Policy() route.Policy {
	if c.Strict {
		return route.PolicyStrict
	}
	return route.PolicyLenient
}

// Roster builds the canvasser roster from whichever source is configured.
// No source yields an empty roster, which plans the route without canvassers.
func (c *CanvassConfig) Roster() (*roster.Roster, error) {
	switch {
	case c.CanvasserCount > 0:
		return roster.Numbered(c.CanvasserCount)
	case c.RosterFile != "":
		return csvio.ReadRosterFile(c.ResolvePath(c.RosterFile))
	case c.RosterLists != nil:
		return roster.FromLists(c.RosterLists.Names, c.RosterLists.Emails)
	default:
		canvassers := make([]roster.Canvasser, len(c.Canvassers))
		for i, cc := range c.Canvassers {
			canvassers[i] = roster.Canvasser{Name: cc.Name, Contact: cc.Email}
		}
		return roster.New(canvassers)
	}
}

// Pairs builds the pairing for r, or nil when pairing is not configured
func (c *CanvassConfig) Pairs(r *roster.Roster) (*roster.Pairing, error) {
	if c.Pairing == nil {
		return nil, nil
	}
	return roster.NewPairing(r, c.Pairing.Count, c.Pairing.Pairs)
}

// ResolvePath makes a relative path relative to the config file's directory
func (c *CanvassConfig) ResolvePath(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Load reads and validates canvass.yml from the specified path
func Load(path string) (*CanvassConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config CanvassConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.Dir = filepath.Dir(path)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// StreetOrderYAML renders streets as a street_order block ready to paste
// into canvass.yml
func StreetOrderYAML(streets []string) (string, error) {
	doc := struct {
		StreetOrder []string `yaml:"street_order"`
	}{StreetOrder: streets}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode street order: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode street order: %w", err)
	}
	return sb.String(), nil
}
