// Package assembly loads reusable assembly templates from YAML files
// and keeps them queryable by name, tag, and free-text search.
package assembly

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/swarmlab/convene/pkg/models"
)

// Definition is one assembly template as stored on disk: the assembly
// itself plus free-form metadata such as tags and an estimated duration.
type Definition struct {
	models.Assembly `yaml:",inline"`
	// Metadata holds arbitrary template annotations.
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// Validate checks the definition for structural problems and returns
// one message per problem. A valid definition returns nil.
func (d *Definition) Validate() []string {
	var errs []string

	if d.Name == "" {
		errs = append(errs, "assembly must have a name")
	}
	if len(d.Roles) == 0 {
		errs = append(errs, "assembly must define at least one role")
	}
	if len(d.Workflow.Steps) == 0 {
		errs = append(errs, "workflow must have at least one step")
	}

	defined := make(map[string]bool, len(d.Roles))
	for _, role := range d.Roles {
		defined[role.Name] = true
	}
	for _, step := range d.Workflow.Steps {
		if !defined[step.Role] {
			errs = append(errs, fmt.Sprintf("step references undefined role: %s", step.Role))
		}
	}

	if d.Workflow.ErrorHandling != "" && !d.Workflow.ErrorHandling.Valid() {
		errs = append(errs, fmt.Sprintf("unknown error handling policy: %s", d.Workflow.ErrorHandling))
	}
	if len(d.SuccessCriteria.RequiredOutputs) == 0 {
		errs = append(errs, "success criteria must define required_outputs")
	}

	return errs
}

// RoleNames returns the names of the definition's roles, in order.
func (d *Definition) RoleNames() []string {
	names := make([]string, len(d.Roles))
	for i, role := range d.Roles {
		names[i] = role.Name
	}
	return names
}

// Tags returns the template's tags from metadata, if any.
func (d *Definition) Tags() []string {
	raw, ok := d.Metadata["tags"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// EstimatedDuration returns the template's estimated duration from
// metadata, or the empty string.
func (d *Definition) EstimatedDuration() string {
	if s, ok := d.Metadata["estimated_duration"].(string); ok {
		return s
	}
	return ""
}

// Loader loads and manages assembly definitions from a templates
// directory. It is safe for concurrent use.
type Loader struct {
	dir string

	mu         sync.RWMutex
	assemblies map[string]*Definition
}

// NewLoader creates a Loader and loads every template under dir. A
// missing directory yields an empty loader, not an error; individual
// broken templates are skipped with a log message.
func NewLoader(dir string) (*Loader, error) {
	l := &Loader{
		dir:        dir,
		assemblies: make(map[string]*Definition),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads every template in the directory, replacing the
// current set.
func (l *Loader) Reload() error {
	loaded := make(map[string]*Definition)

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[assembly] templates directory not found: %s", l.dir)
			l.mu.Lock()
			l.assemblies = loaded
			l.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		def, err := loadTemplate(path)
		if err != nil {
			log.Printf("[assembly] skipping %s: %v", entry.Name(), err)
			continue
		}
		loaded[def.Name] = def
	}

	l.mu.Lock()
	l.assemblies = loaded
	l.mu.Unlock()

	log.Printf("[assembly] loaded %d assembly templates", len(loaded))
	return nil
}

// loadTemplate parses and validates a single template file.
func loadTemplate(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if def.Version == "" {
		def.Version = "1.0.0"
	}

	if errs := def.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid assembly %q: %s", def.Name, strings.Join(errs, "; "))
	}
	return &def, nil
}

// Get returns the named definition.
func (l *Loader) Get(name string) (*Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	def, ok := l.assemblies[name]
	return def, ok
}

// All returns every loaded definition, sorted by name.
func (l *Loader) All() []*Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Definition, 0, len(l.assemblies))
	for _, def := range l.assemblies {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the loaded assembly names, sorted.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.assemblies))
	for name := range l.assemblies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded definitions.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.assemblies)
}

// ByTag returns all definitions carrying the given tag, sorted by name.
func (l *Loader) ByTag(tag string) []*Definition {
	var out []*Definition
	for _, def := range l.All() {
		for _, t := range def.Tags() {
			if t == tag {
				out = append(out, def)
				break
			}
		}
	}
	return out
}

// Search returns definitions whose name or description contains the
// query, case-insensitively, sorted by name.
func (l *Loader) Search(query string) []*Definition {
	query = strings.ToLower(query)
	var out []*Definition
	for _, def := range l.All() {
		if strings.Contains(strings.ToLower(def.Name), query) ||
			strings.Contains(strings.ToLower(def.Description), query) {
			out = append(out, def)
		}
	}
	return out
}

// Add registers or replaces a definition. Invalid definitions are
// rejected.
func (l *Loader) Add(def *Definition) error {
	if errs := def.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid assembly %q: %s", def.Name, strings.Join(errs, "; "))
	}

	l.mu.Lock()
	l.assemblies[def.Name] = def
	l.mu.Unlock()
	return nil
}

// Remove deletes a definition by name, reporting whether it existed.
func (l *Loader) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assemblies[name]; !ok {
		return false
	}
	delete(l.assemblies, name)
	return true
}
