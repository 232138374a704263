// Package replay drives recorded answer sequences through fresh sessions and
// checks the finalized top three against expectations.
package replay

import (
	_ "embed"
	"fmt"
	"os"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var builtin []byte

// Fixture is a YAML document of named scenarios.
type Fixture struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one recorded walk through the questionnaire. Expect, when set,
// lists the three recommended services in rank order.
type Scenario struct {
	Name    string   `yaml:"name"`
	Answers []Step   `yaml:"answers"`
	Expect  []string `yaml:"expect,omitempty"`
}

type Step struct {
	Node   q.NodeID `yaml:"node"`
	Choice string   `yaml:"choice"`
}

// ParseFixtureYAML parses a Fixture from YAML bytes and validates it.
func ParseFixtureYAML(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}

	if err := validateFixture(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	return &f, nil
}

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixtureYAML(data)
}

// Builtin returns the scenarios shipped with the binary.
func Builtin() (*Fixture, error) {
	return ParseFixtureYAML(builtin)
}

func validateFixture(f *Fixture) error {
	if len(f.Scenarios) == 0 {
		return fmt.Errorf("no scenarios")
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i, s := range f.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Answers) == 0 {
			return fmt.Errorf("scenario %q has no answers", s.Name)
		}
		if s.Expect != nil && len(s.Expect) != 3 {
			return fmt.Errorf("scenario %q expects %d services, want 3", s.Name, len(s.Expect))
		}
		for _, name := range s.Expect {
			if !q.Service(name).Valid() {
				return fmt.Errorf("scenario %q expects unknown service %q", s.Name, name)
			}
		}
	}
	return nil
}
