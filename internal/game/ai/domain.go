// Package ai implements the Hierarchical Task Network (HTN) planner that
// drives monster fighters.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered methods.
// Method preconditions are evaluated as Lua hooks; operators map to fight actions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/action"
)

// RootTask is the task every plan starts from.
const RootTask = "behave"

// Operator action selectors resolved against the fighter's action set at
// planning time. Any other operator action is a literal action ID.
const (
	SelectBestAttack  = "best_attack"  // affordable attack with the highest base power
	SelectCheapAttack = "cheap_attack" // affordable attack with the lowest cost
	SelectHeal        = "heal"         // first affordable heal
	SelectDebuff      = "debuff"       // first affordable debuff
	SelectBuff        = "buff"         // first affordable buff
)

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"` // Lua function name; empty = always applicable
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive step that maps to one fight action.
//
// Precondition: ID and Action must be non-empty.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"` // action ID, "pass", or one of the Select* selectors
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks required fields, ID uniqueness and cross-references.
//
// Postcondition: nil return guarantees a non-empty ID, a RootTask, unique IDs
// across tasks and operators, unique method IDs, and that every method
// decomposes a declared task into declared tasks or operators. Otherwise
// every problem found is joined into the returned error.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("ai.Domain %q: "+format, append([]any{d.ID}, args...)...))
	}

	// Tasks and operators share one namespace: subtasks name either.
	kinds := make(map[string]string, len(d.Tasks)+len(d.Operators))
	claim := func(kind, id string) {
		if prev, dup := kinds[id]; dup {
			bad("%s ID %q already used by a %s", kind, id, prev)
			return
		}
		kinds[id] = kind
	}
	for _, t := range d.Tasks {
		if t.ID == "" {
			bad("task has empty ID")
			continue
		}
		claim("task", t.ID)
	}
	for _, op := range d.Operators {
		if op.ID == "" || op.Action == "" {
			bad("operator missing ID or Action")
			continue
		}
		claim("operator", op.ID)
	}
	if kinds[RootTask] != "task" {
		bad("missing root task %q", RootTask)
	}

	methods := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			bad("method missing TaskID or ID")
			continue
		}
		if methods[m.ID] {
			bad("duplicate method ID %q", m.ID)
		}
		methods[m.ID] = true
		if kinds[m.TaskID] != "task" {
			bad("method %q: TaskID %q references unknown task", m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			bad("method %q: subtasks must not be empty", m.ID)
		}
		for _, sub := range m.Subtasks {
			if _, ok := kinds[sub]; !ok {
				bad("method %q: subtask %q is neither a task nor an operator", m.ID, sub)
			}
		}
	}
	return errors.Join(errs...)
}

// Hooks returns the distinct precondition hook names of d in sorted order.
func (d *Domain) Hooks() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range d.Methods {
		if m.Precondition != "" && !seen[m.Precondition] {
			seen[m.Precondition] = true
			out = append(out, m.Precondition)
		}
	}
	sort.Strings(out)
	return out
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// ValidateActions checks that every literal operator action is registered.
//
// Postcondition: returns an error naming the first unknown action ID.
func (d *Domain) ValidateActions(reg *action.Registry) error {
	for _, op := range d.Operators {
		if isSelector(op.Action) {
			continue
		}
		if _, ok := reg.Get(op.Action); !ok {
			return fmt.Errorf("ai.Domain %q operator %q: unknown action %q", d.ID, op.ID, op.Action)
		}
	}
	return nil
}

func isSelector(token string) bool {
	switch token {
	case SelectBestAttack, SelectCheapAttack, SelectHeal, SelectDebuff, SelectBuff:
		return true
	}
	return false
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains
// sorted by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate, or
// if two files declare the same domain ID.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: reading %s: %w", e.Name(), err)
		}
		var f yamlDomainFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: parsing %s: %w", e.Name(), err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s missing top-level 'domain' key", e.Name())
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, err
		}
		if prev, dup := seen[f.Domain.ID]; dup {
			return nil, fmt.Errorf("ai.LoadDomains: domain %q declared in both %s and %s", f.Domain.ID, prev, e.Name())
		}
		seen[f.Domain.ID] = e.Name()
		domains = append(domains, f.Domain)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].ID < domains[j].ID })
	return domains, nil
}
