package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/boothsync/internal/survey"
)

// Scenario defines a multi-device sync scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Devices lists the participating devices.
	Devices []Device `yaml:"devices"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state of every device.
	Assertions []Assertion `yaml:"assertions"`
}

// Device configures one simulated tablet.
type Device struct {
	Name   string `yaml:"name"`
	Sector string `yaml:"sector,omitempty"`
}

// Step is one operation on one device.
type Step struct {
	Device string `yaml:"device"`

	Submit    *Submission `yaml:"submit,omitempty"`
	Export    string      `yaml:"export,omitempty"`
	Import    string      `yaml:"import,omitempty"`
	ImportRaw string      `yaml:"import_raw,omitempty"`
	Clear     bool        `yaml:"clear,omitempty"`

	// Expect validates the step outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Submission is a survey draft in scenario form.
type Submission struct {
	FirstName  string   `yaml:"firstName"`
	LastName   string   `yaml:"lastName"`
	Email      string   `yaml:"email"`
	Role       string   `yaml:"role,omitempty"`
	NPS        int      `yaml:"nps"`
	Interested bool     `yaml:"interested,omitempty"`
	Products   []string `yaml:"products,omitempty"`
}

// Draft converts s to a survey draft.
func (s Submission) Draft() survey.Draft {
	products := s.Products
	if products == nil {
		products = []string{}
	}
	return survey.Draft{
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Email:            s.Email,
		Role:             survey.Role(s.Role),
		NPS:              s.NPS,
		InterestedInInfo: s.Interested,
		SelectedProducts: products,
	}
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected survey error code (VALIDATION, FORMAT, ...).
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Added and Duplicates are checked on import steps when set.
	Added      *int `yaml:"added,omitempty"`
	Duplicates *int `yaml:"duplicates,omitempty"`
}

// Assertion validates final device state.
type Assertion struct {
	// Type specifies the assertion type: count, pending, order, same_set.
	Type string `yaml:"type"`

	// Device is the device to inspect (count, pending, order).
	Device string `yaml:"device,omitempty"`

	// Count is the expected number (count, pending).
	Count int `yaml:"count,omitempty"`

	// IDs is the expected id sequence (order).
	IDs []string `yaml:"ids,omitempty"`

	// Devices are compared with each other (same_set).
	Devices []string `yaml:"devices,omitempty"`
}

// Assertion type constants.
const (
	AssertCount   = "count"
	AssertPending = "pending"
	AssertOrder   = "order"
	AssertSameSet = "same_set"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Devices) == 0 {
		return fmt.Errorf("devices list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	devices := make(map[string]bool, len(s.Devices))
	for i, d := range s.Devices {
		if d.Name == "" {
			return fmt.Errorf("devices[%d]: name is required", i)
		}
		if devices[d.Name] {
			return fmt.Errorf("devices[%d]: duplicate device %q", i, d.Name)
		}
		devices[d.Name] = true
	}

	exported := make(map[string]bool)
	for i, step := range s.Steps {
		if !devices[step.Device] {
			return fmt.Errorf("steps[%d]: unknown device %q", i, step.Device)
		}
		if n := step.operations(); n != 1 {
			return fmt.Errorf("steps[%d]: exactly one operation is required, got %d", i, n)
		}
		if step.Import != "" && !exported[step.Import] {
			return fmt.Errorf("steps[%d]: snapshot %q imported before it was exported", i, step.Import)
		}
		if step.Export != "" {
			exported[step.Export] = true
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, devices); err != nil {
			return err
		}
	}
	return nil
}

func (s Step) operations() int {
	n := 0
	if s.Submit != nil {
		n++
	}
	if s.Export != "" {
		n++
	}
	if s.Import != "" {
		n++
	}
	if s.ImportRaw != "" {
		n++
	}
	if s.Clear {
		n++
	}
	return n
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, devices map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCount, AssertPending, AssertOrder:
		if !devices[a.Device] {
			return fmt.Errorf("assertions[%d]: unknown device %q", index, a.Device)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertSameSet:
		if len(a.Devices) < 2 {
			return fmt.Errorf("assertions[%d]: same_set needs at least two devices", index)
		}
		for _, d := range a.Devices {
			if !devices[d] {
				return fmt.Errorf("assertions[%d]: unknown device %q", index, d)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
