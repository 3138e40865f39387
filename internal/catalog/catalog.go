// Package catalog holds the static faculty -> specialty mapping used to
// validate, filter and group diplomas.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Specialty is a normalized catalog entry. Key is what diplomas store.
type Specialty struct {
	Key   string `json:"key" yaml:"-"`
	Label string `json:"label" yaml:"-"`
}

// UnmarshalYAML accepts either a bare code or a {code, name} mapping.
func (s *Specialty) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		code := strings.TrimSpace(node.Value)
		s.Key, s.Label = code, code
		return nil
	}

	var raw struct {
		Key   string `yaml:"key"`
		Code  string `yaml:"code"`
		Name  string `yaml:"name"`
		Label string `yaml:"label"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Key = firstNonEmpty(raw.Key, raw.Code, raw.Name)
	s.Label = firstNonEmpty(raw.Label, raw.Name, raw.Code, s.Key)
	return nil
}

// Faculty groups specialties under a stable key and a display name.
type Faculty struct {
	Key         string      `json:"key" yaml:"key"`
	Name        string      `json:"name" yaml:"name"`
	Specialties []Specialty `json:"specialties" yaml:"specialties"`
}

// Codes returns the specialty keys of the faculty in catalog order.
func (f Faculty) Codes() []string {
	codes := make([]string, 0, len(f.Specialties))
	for _, s := range f.Specialties {
		codes = append(codes, s.Key)
	}
	return codes
}

// Labels returns the specialty labels of the faculty in catalog order.
func (f Faculty) Labels() []string {
	labels := make([]string, 0, len(f.Specialties))
	for _, s := range f.Specialties {
		labels = append(labels, s.Label)
	}
	return labels
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	faculties   []Faculty
	byKey       map[string]int
	bySpecialty map[string]int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Faculties []Faculty `yaml:"faculties"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Faculties)
}

// New validates faculties and indexes them. A specialty key that appears under
// more than one faculty resolves to the first one.
func New(faculties []Faculty) (*Catalog, error) {
	if len(faculties) == 0 {
		return nil, errors.New("catalog has no faculties")
	}

	c := &Catalog{
		faculties:   make([]Faculty, 0, len(faculties)),
		byKey:       make(map[string]int, len(faculties)),
		bySpecialty: make(map[string]int),
	}
	for _, f := range faculties {
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return nil, errors.New("catalog faculty without key")
		}
		if _, dup := c.byKey[f.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog faculty %q", f.Key)
		}
		if strings.TrimSpace(f.Name) == "" {
			f.Name = f.Key
		}

		specs := make([]Specialty, 0, len(f.Specialties))
		for _, s := range f.Specialties {
			if s.Key == "" {
				return nil, fmt.Errorf("faculty %q has a specialty without code", f.Key)
			}
			specs = append(specs, s)
		}
		f.Specialties = specs

		idx := len(c.faculties)
		c.faculties = append(c.faculties, f)
		c.byKey[f.Key] = idx
		for _, s := range specs {
			if _, seen := c.bySpecialty[s.Key]; !seen {
				c.bySpecialty[s.Key] = idx
			}
		}
	}
	return c, nil
}

// Faculties returns every faculty in catalog order.
func (c *Catalog) Faculties() []Faculty {
	out := make([]Faculty, len(c.faculties))
	copy(out, c.faculties)
	return out
}

// Lookup finds a faculty by key.
func (c *Catalog) Lookup(key string) (Faculty, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Faculty{}, false
	}
	return c.faculties[idx], true
}

// ResolveFaculty matches a faculty key exactly or a display name case-insensitively.
func (c *Catalog) ResolveFaculty(keyOrName string) (Faculty, bool) {
	v := strings.TrimSpace(keyOrName)
	if v == "" {
		return Faculty{}, false
	}
	if f, ok := c.Lookup(v); ok {
		return f, true
	}
	for _, f := range c.faculties {
		if strings.EqualFold(f.Name, v) {
			return f, true
		}
	}
	return Faculty{}, false
}

// FacultyForSpecialty is the reverse lookup used to enrich diploma rows.
func (c *Catalog) FacultyForSpecialty(code string) (Faculty, bool) {
	idx, ok := c.bySpecialty[strings.TrimSpace(code)]
	if !ok {
		return Faculty{}, false
	}
	return c.faculties[idx], true
}

// HasSpecialty reports whether code is a known specialty key.
func (c *Catalog) HasSpecialty(code string) bool {
	_, ok := c.bySpecialty[strings.TrimSpace(code)]
	return ok
}

// SpecialtyCodes returns all unique specialty keys in catalog order.
func (c *Catalog) SpecialtyCodes() []string {
	seen := make(map[string]struct{}, len(c.bySpecialty))
	codes := make([]string, 0, len(c.bySpecialty))
	for _, f := range c.faculties {
		for _, s := range f.Specialties {
			if _, ok := seen[s.Key]; ok {
				continue
			}
			seen[s.Key] = struct{}{}
			codes = append(codes, s.Key)
		}
	}
	return codes
}

// Map returns the catalog keyed by faculty key, as served by the raw catalog endpoint.
func (c *Catalog) Map() map[string]Faculty {
	out := make(map[string]Faculty, len(c.faculties))
	for _, f := range c.faculties {
		out[f.Key] = f
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
