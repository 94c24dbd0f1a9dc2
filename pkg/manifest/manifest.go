// Package manifest loads component property declarations from observe.yaml.
//
// A manifest lets a component declare its properties, and which of them are
// subscription-managed, outside Go code:
//
//	version: v1.0.0
//	components:
//	  todo-view:
//	    properties:
//	      list:  { type: object, observe: true }
//	      title: { type: string }
//
// Components then return the declaration from their Properties method:
//
//	func (v *todoView) Properties() core.Properties {
//	    props, _ := appManifest.Properties("todo-view")
//	    return props
//	}
package manifest

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/observe/pkg/core"
	"github.com/go-drift/observe/pkg/errors"
)

// FileName is the manifest file looked up by LoadOptional.
const FileName = "observe.yaml"

// SupportedMajor is the manifest schema major version this package reads.
const SupportedMajor = "v1"

var componentName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// scalarTypes can never hold a subject, so they cannot be observed.
var scalarTypes = []string{"string", "number", "boolean"}

// Manifest is the parsed observe.yaml.
type Manifest struct {
	Version    string                       `yaml:"version"`
	Components map[string]ComponentManifest `yaml:"components"`
}

// ComponentManifest declares one component type.
type ComponentManifest struct {
	Properties map[string]PropertyManifest `yaml:"properties"`
	// Observing lists names of class-level subjects, resolved by the
	// application through its own registry.
	Observing []string `yaml:"observing,omitempty"`
}

// PropertyManifest declares one property.
type PropertyManifest struct {
	Type    string `yaml:"type,omitempty"`
	Observe bool   `yaml:"observe,omitempty"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads observe.yaml from dir if present. A missing file yields
// an empty manifest.
func LoadOptional(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	m, err := Load(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Manifest{Version: SupportedMajor + ".0.0"}, nil
		}
		return nil, err
	}
	return m, nil
}

// Validate checks the schema version and all declared names.
func (m *Manifest) Validate() error {
	if !semver.IsValid(m.Version) {
		return invalid("", fmt.Errorf("version %q is not a valid semantic version", m.Version))
	}
	if major := semver.Major(m.Version); major != SupportedMajor {
		return invalid("", fmt.Errorf("unsupported manifest version %s (want %s.x.y)", m.Version, SupportedMajor))
	}
	for _, name := range m.ComponentNames() {
		if !componentName.MatchString(name) {
			return invalid("", fmt.Errorf("invalid component name %q", name))
		}
		component := m.Components[name]
		for prop, p := range component.Properties {
			if strings.TrimSpace(prop) == "" {
				return invalid("", fmt.Errorf("component %s: empty property name", name))
			}
			if p.Observe && slices.Contains(scalarTypes, p.Type) {
				return invalid(prop, fmt.Errorf("component %s: observed property cannot have scalar type %q", name, p.Type))
			}
		}
		for _, subject := range component.Observing {
			if strings.TrimSpace(subject) == "" {
				return invalid("", fmt.Errorf("component %s: empty observing entry", name))
			}
		}
	}
	return nil
}

func invalid(property string, err error) error {
	return &errors.ObserveError{
		Op:       "manifest.Validate",
		Kind:     errors.KindManifest,
		Property: property,
		Err:      err,
	}
}

// ComponentNames returns the declared component names in sorted order.
func (m *Manifest) ComponentNames() []string {
	names := make([]string, 0, len(m.Components))
	for name := range m.Components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Properties returns the declared properties of component, converted for
// core.Component.Properties.
func (m *Manifest) Properties(component string) (core.Properties, bool) {
	c, ok := m.Components[component]
	if !ok {
		return nil, false
	}
	props := make(core.Properties, len(c.Properties))
	for name, p := range c.Properties {
		props[name] = core.PropertyOptions{Type: p.Type, Observe: p.Observe}
	}
	return props, true
}

// ObservedProperties returns the names of component's observe-enabled
// properties in sorted order.
func (m *Manifest) ObservedProperties(component string) []string {
	var names []string
	for name, p := range m.Components[component].Properties {
		if p.Observe {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// FindProjectRoot walks up from dir to the nearest directory containing go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

// ModulePath returns the module path declared by dir/go.mod.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}
