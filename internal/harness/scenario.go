package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of actions against a fake remote.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Site is injected into every action that does not name one. Defaults
	// to 1.
	Site int64 `yaml:"site,omitempty"`

	// Remote is the initial remote truth in fake.Seed form.
	Remote yaml.Node `yaml:"remote,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step changes the remote, then optionally dispatches one action.
type Step struct {
	// Action is the snake_case action name, e.g. "synchronize_orders".
	Action string `yaml:"action,omitempty"`

	// Args are the action fields in snake_case.
	Args map[string]any `yaml:"args,omitempty"`

	// Remote records are added to the remote truth before the action.
	Remote yaml.Node `yaml:"remote,omitempty"`

	// Remove deletes remote records before the action.
	Remove *Removal `yaml:"remove,omitempty"`

	// Fail injects a failure into the next call of one remote operation.
	Fail *Failure `yaml:"fail,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Removal lists remote records to delete, by ID.
type Removal struct {
	Orders          []int64 `yaml:"orders,omitempty"`
	Products        []int64 `yaml:"products,omitempty"`
	Refunds         []int64 `yaml:"refunds,omitempty"`
	ProductTags     []int64 `yaml:"product_tags,omitempty"`
	ShippingClasses []int64 `yaml:"shipping_classes,omitempty"`
}

// Failure describes an injected remote error.
type Failure struct {
	// Op is the remote operation, e.g. "LoadOrder".
	Op string `yaml:"op"`

	// Kind is one of not_found, no_route, invalid_parameter, transport.
	Kind string `yaml:"kind"`
}

// Expect checks a step's completion.
type Expect struct {
	// Outcome is "ok" or an error class (see Classify). Defaults to "ok".
	Outcome string `yaml:"outcome,omitempty"`

	// Result is subset-matched against the JSON form of the completion
	// value.
	Result any `yaml:"result,omitempty"`
}

// Assertion checks the committed cache after the last step.
type Assertion struct {
	// Type is count, present or absent.
	Type string `yaml:"type"`

	// Kind is the storage kind, e.g. "order".
	Kind string `yaml:"kind"`

	// Key is the entity key within the scenario site, e.g. "7" or "7/2".
	Key string `yaml:"key,omitempty"`

	Count int `yaml:"count,omitempty"`

	// Expect is subset-matched against the stored payload (present only).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion types.
const (
	AssertCount   = "count"
	AssertPresent = "present"
	AssertAbsent  = "absent"
)

// Outcome classes.
const (
	OutcomeOK               = "ok"
	OutcomeValidation       = "validation"
	OutcomeNotFound         = "not_found"
	OutcomeNoRoute          = "no_route"
	OutcomeInvalidParameter = "invalid_parameter"
	OutcomeTransport        = "transport"
	OutcomeError            = "error"
)

// LoadScenario reads and checks a scenario file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and checks a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Site == 0 {
		s.Site = 1
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Site < 0 {
		return fmt.Errorf("site must be positive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Action == "" && step.Expect != nil {
			return fmt.Errorf("steps[%d]: expect needs an action", i)
		}
		if step.Action != "" {
			if _, ok := actions[step.Action]; !ok {
				return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
			}
		}
		if f := step.Fail; f != nil {
			if f.Op == "" {
				return fmt.Errorf("steps[%d].fail: op is required", i)
			}
			if _, ok := injectedError(f.Kind); !ok {
				return fmt.Errorf("steps[%d].fail: unknown kind %q", i, f.Kind)
			}
		}
	}

	for i, a := range s.Assertions {
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required", i)
		}
		switch a.Type {
		case AssertCount:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		case AssertPresent, AssertAbsent:
			if a.Key == "" {
				return fmt.Errorf("assertions[%d]: key is required for %s", i, a.Type)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
