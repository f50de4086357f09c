package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPlayerUID is used when a scenario names no player.
const DefaultPlayerUID = "player"

// Scenario is one end-to-end quest run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Quests lists CUE files, relative to the scenario file once loaded.
	Quests []string `yaml:"quests,omitempty"`

	// Source is inline CUE compiled alongside Quests.
	Source string `yaml:"source,omitempty"`

	Player     PlayerSetup `yaml:"player,omitempty"`
	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// PlayerSetup is the player's state before the first step.
type PlayerSetup struct {
	UID       string            `yaml:"uid,omitempty"`
	Inventory []Item            `yaml:"inventory,omitempty"`
	Attrs     map[string]string `yaml:"attrs,omitempty"`
}

// Item is a code and an amount.
type Item struct {
	Code   string `yaml:"code"`
	Amount int    `yaml:"amount"`
}

// Step is one thing that happens to the player.
type Step struct {
	Accept   string    `yaml:"accept,omitempty"`
	Complete string    `yaml:"complete,omitempty"`
	Abandon  string    `yaml:"abandon,omitempty"`
	Tick     int       `yaml:"tick,omitempty"`
	Move     []float64 `yaml:"move,omitempty"`
	Kill     string    `yaml:"kill,omitempty"`
	Interact string    `yaml:"interact,omitempty"`
	Give     *Item     `yaml:"give,omitempty"`
	Storm    *bool     `yaml:"storm,omitempty"`
	Hour     *float64  `yaml:"hour,omitempty"`

	// Giver is the entity code of the quest giver for accept.
	Giver string `yaml:"giver,omitempty"`

	// Error is a substring the step's error must contain.
	Error string `yaml:"error,omitempty"`
}

// Kind names the single action the step sets, or "" when it sets none or
// more than one.
func (s Step) Kind() string {
	var kinds []string
	if s.Accept != "" {
		kinds = append(kinds, "accept")
	}
	if s.Complete != "" {
		kinds = append(kinds, "complete")
	}
	if s.Abandon != "" {
		kinds = append(kinds, "abandon")
	}
	if s.Tick > 0 {
		kinds = append(kinds, "tick")
	}
	if s.Move != nil {
		kinds = append(kinds, "move")
	}
	if s.Kill != "" {
		kinds = append(kinds, "kill")
	}
	if s.Interact != "" {
		kinds = append(kinds, "interact")
	}
	if s.Give != nil {
		kinds = append(kinds, "give")
	}
	if s.Storm != nil {
		kinds = append(kinds, "storm")
	}
	if s.Hour != nil {
		kinds = append(kinds, "hour")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Assertion checks the final state.
type Assertion struct {
	Type string `yaml:"type"`

	// Quests is used by active and completed.
	Quests []string `yaml:"quests,omitempty"`

	// Key and Value are used by attr.
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`

	// Text is used by notified.
	Text string `yaml:"text,omitempty"`

	// Code and Amount are used by inventory.
	Code   string `yaml:"code,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
}

// Assertion type constants.
const (
	AssertActive    = "active"
	AssertCompleted = "completed"
	AssertAttr      = "attr"
	AssertNotified  = "notified"
	AssertInventory = "inventory"
)

// LoadScenario reads and parses a scenario YAML file. Quest paths are
// resolved against the file's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	for i, q := range s.Quests {
		if !filepath.IsAbs(q) {
			s.Quests[i] = filepath.Join(base, q)
		}
	}
	if err := s.checkFiles(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// PlayerUID returns the configured uid or DefaultPlayerUID.
func (s *Scenario) PlayerUID() string {
	if s.Player.UID == "" {
		return DefaultPlayerUID
	}
	return s.Player.UID
}

// Validate checks required fields and the shape of steps and assertions.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Quests) == 0 && s.Source == "" {
		return errors.New("quests or source is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}
	for i, st := range s.Steps {
		kind := st.Kind()
		if kind == "" {
			return fmt.Errorf("steps[%d]: exactly one action is required", i)
		}
		if kind == "move" && len(st.Move) != 2 {
			return fmt.Errorf("steps[%d]: move takes [dx, dz]", i)
		}
		if kind == "give" && (st.Give.Code == "" || st.Give.Amount <= 0) {
			return fmt.Errorf("steps[%d]: give needs a code and a positive amount", i)
		}
		if st.Giver != "" && kind != "accept" {
			return fmt.Errorf("steps[%d]: giver only applies to accept", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertActive:
	case AssertCompleted:
		if len(a.Quests) == 0 {
			return fmt.Errorf("assertions[%d]: quests is required for completed", index)
		}
	case AssertAttr:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for attr", index)
		}
	case AssertNotified:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for notified", index)
		}
	case AssertInventory:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for inventory", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func (s *Scenario) checkFiles() error {
	for _, q := range s.Quests {
		if _, err := os.Stat(q); err != nil {
			return fmt.Errorf("quest file not found: %s", q)
		}
	}
	return nil
}
