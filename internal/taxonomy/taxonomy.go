// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy loads an entity-type tree and maps free-form type labels
// onto it. A Taxonomy is built once and is read-only afterwards, so it can be
// shared by every stage that assigns entity types.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed classes.json
var defaultClasses []byte

// DefaultType is the type assigned when a label cannot be mapped.
const DefaultType = "CreativeWork"

// DefaultAliases maps the pipeline's raw labels onto taxonomy types.
var DefaultAliases = map[string]string{
	"AIPaper":    "Thesis",
	"Researcher": "Person",
	"AIModel":    "SoftwareApplication",
	"Metric":     "CreativeWork",
}

// fallbackTypes are tried in order when the default is not a valid type.
var fallbackTypes = []string{"CreativeWork", "Person", "Article"}

// promptTypes is the academic subset offered to the LLM.
var promptTypes = []string{
	"Thesis", "Article", "CreativeWork", "Person",
	"Dataset", "SoftwareApplication", "TechArticle", "Report",
}

// Node is one class in the taxonomy tree.
type Node struct {
	Name     string `json:"name" yaml:"name"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Options configures New.
type Options struct {
	// Default is the preferred type for unmappable labels. Empty uses DefaultType.
	Default string

	// Aliases maps raw labels to types. Nil uses DefaultAliases.
	Aliases map[string]string
}

// Taxonomy is an immutable set of valid type labels plus the alias table
// and default used to normalize labels against it.
type Taxonomy struct {
	allowed map[string]bool
	sorted  []string
	aliases map[string]string
	def     string
}

// Load reads a taxonomy document: a JSON list of nodes, or YAML when the
// file extension is .yaml or .yml. An empty path returns the built-in tree.
func Load(path string) ([]Node, error) {
	if path == "" {
		return parse(defaultClasses, false)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	roots, err := parse(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	return roots, nil
}

func parse(data []byte, isYAML bool) ([]Node, error) {
	var roots []Node
	if isYAML {
		if err := yaml.Unmarshal(data, &roots); err != nil {
			return nil, err
		}
		return roots, nil
	}
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// New builds a Taxonomy from roots. Every non-blank name at any depth is a
// valid type.
func New(roots []Node, opts Options) *Taxonomy {
	allowed := make(map[string]bool)
	for _, r := range roots {
		collect(r, allowed)
	}

	sorted := make([]string, 0, len(allowed))
	for name := range allowed {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	aliases := opts.Aliases
	if aliases == nil {
		aliases = DefaultAliases
	}
	copied := make(map[string]string, len(aliases))
	for k, v := range aliases {
		copied[k] = v
	}

	def := opts.Default
	if def == "" {
		def = DefaultType
	}

	t := &Taxonomy{allowed: allowed, sorted: sorted, aliases: copied}
	// Resolve the default once so that Normalize(Normalize(x)) == Normalize(x)
	// even when the configured default is not a valid type.
	t.def = fallback(def, allowed, sorted, def)
	return t
}

// LoadDefault loads the taxonomy at path (built-in when empty) and builds it.
func LoadDefault(path string, opts Options) (*Taxonomy, error) {
	roots, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(roots, opts), nil
}

func collect(n Node, out map[string]bool) {
	if name := strings.TrimSpace(n.Name); name != "" {
		out[name] = true
	}
	for _, c := range n.Children {
		collect(c, out)
	}
}

// AllowedTypes returns every valid type label in sorted order.
func (t *Taxonomy) AllowedTypes() []string {
	out := make([]string, len(t.sorted))
	copy(out, t.sorted)
	return out
}

// Allowed reports whether name is a valid type label.
func (t *Taxonomy) Allowed(name string) bool {
	return t.allowed[name]
}

// Default returns the type unmappable labels resolve to.
func (t *Taxonomy) Default() string {
	return t.def
}

// Normalize maps raw onto the taxonomy using its aliases and default.
func (t *Taxonomy) Normalize(raw string) string {
	return normalize(raw, t.allowed, t.sorted, t.aliases, t.def)
}

// CategoriesFor normalizes types and returns the distinct results in
// first-seen order.
func (t *Taxonomy) CategoriesFor(types []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range types {
		norm := t.Normalize(raw)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// PromptTypes returns the comma-separated list of types offered to the LLM:
// the academic subset present in the taxonomy, or the first 15 sorted types
// when none of the subset is present.
func (t *Taxonomy) PromptTypes() string {
	var subset []string
	for _, name := range promptTypes {
		if t.allowed[name] {
			subset = append(subset, name)
		}
	}
	if len(subset) == 0 {
		subset = t.sorted
		if len(subset) > 15 {
			subset = subset[:15]
		}
	}
	return strings.Join(subset, ", ")
}

// Normalize maps raw onto allowed. Blank input yields def. A valid label is
// returned unchanged; an alias that maps to a valid label returns the mapped
// label; otherwise def is returned when valid, then the first present of
// CreativeWork, Person and Article, then the smallest valid label. With an
// empty allowed set the trimmed input is returned.
func Normalize(raw string, allowed []string, aliases map[string]string, def string) string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	sorted := make([]string, 0, len(set))
	for a := range set {
		sorted = append(sorted, a)
	}
	sort.Strings(sorted)
	return normalize(raw, set, sorted, aliases, def)
}

func normalize(raw string, allowed map[string]bool, sorted []string, aliases map[string]string, def string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return def
	}
	if allowed[name] {
		return name
	}
	if mapped, ok := aliases[name]; ok && allowed[mapped] {
		return mapped
	}
	return fallback(def, allowed, sorted, name)
}

// fallback picks def if valid, then the fixed priority list, then the
// smallest valid label, then orElse.
func fallback(def string, allowed map[string]bool, sorted []string, orElse string) string {
	if allowed[def] {
		return def
	}
	for _, f := range fallbackTypes {
		if allowed[f] {
			return f
		}
	}
	if len(sorted) > 0 {
		return sorted[0]
	}
	return orElse
}

// Builtin returns the embedded taxonomy with default aliases and default type.
func Builtin() *Taxonomy {
	roots, err := parse(defaultClasses, false)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded classes.json: %v", err))
	}
	return New(roots, Options{})
}
