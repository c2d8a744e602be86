// Package layouts holds the landing page layout catalogue: the HTML
// templates mentors pick from and the default images of each.
package layouts

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models/landing"
)

//go:embed layouts.yaml templates/*.html
var embedded embed.FS

// Layout is one landing page template.
type Layout struct {
	Name     string                         `yaml:"name" json:"name"`
	Title    string                         `yaml:"title" json:"title"`
	Template string                         `yaml:"template" json:"-"`
	Images   map[string]landing.ImageConfig `yaml:"images" json:"images"`
	HTML     string                         `yaml:"-" json:"-"`
}

type catalogueFile struct {
	Default string   `yaml:"default"`
	Layouts []Layout `yaml:"layouts"`
}

// Catalogue is an immutable set of layouts.
type Catalogue struct {
	byName      map[string]*Layout
	defaultName string
}

// Load reads the embedded catalogue.
func Load() (*Catalogue, error) {
	return LoadFS(embedded, "layouts.yaml")
}

// LoadFS reads a catalogue file and its templates from fsys.
func LoadFS(fsys fs.FS, path string) (*Catalogue, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read layout catalogue: %w", err)
	}

	var file catalogueFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse layout catalogue: %w", err)
	}
	if len(file.Layouts) == 0 {
		return nil, fmt.Errorf("layout catalogue %s is empty", path)
	}

	c := &Catalogue{byName: make(map[string]*Layout), defaultName: file.Default}
	for i := range file.Layouts {
		l := file.Layouts[i]
		if l.Name == "" {
			return nil, fmt.Errorf("layout %d has no name", i)
		}
		if _, dup := c.byName[l.Name]; dup {
			return nil, fmt.Errorf("duplicate layout %q", l.Name)
		}

		html, err := fs.ReadFile(fsys, l.Template)
		if err != nil {
			return nil, fmt.Errorf("read template for layout %q: %w", l.Name, err)
		}
		l.HTML = string(html)
		if l.Images == nil {
			l.Images = map[string]landing.ImageConfig{}
		}
		c.byName[l.Name] = &l
	}

	if c.defaultName == "" {
		c.defaultName = file.Layouts[0].Name
	}
	if _, ok := c.byName[c.defaultName]; !ok {
		return nil, fmt.Errorf("default layout %q not defined", c.defaultName)
	}

	return c, nil
}

// Get returns the named layout.
func (c *Catalogue) Get(name string) (*Layout, error) {
	l, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown layout %q", domain.ErrValidation, name)
	}
	return l, nil
}

// Default returns the layout used for pages without a record.
func (c *Catalogue) Default() *Layout {
	return c.byName[c.defaultName]
}

// Resolve returns the named layout, or the default for an empty name.
func (c *Catalogue) Resolve(name string) (*Layout, error) {
	if name == "" {
		return c.Default(), nil
	}
	return c.Get(name)
}

// All returns the layouts sorted by name.
func (c *Catalogue) All() []*Layout {
	out := make([]*Layout, 0, len(c.byName))
	for _, l := range c.byName {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the layout names sorted.
func (c *Catalogue) Names() []string {
	all := c.All()
	names := make([]string, len(all))
	for i, l := range all {
		names[i] = l.Name
	}
	return names
}
