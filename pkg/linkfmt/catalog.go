package linkfmt

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"formatlink/pkg/errors"
	"formatlink/pkg/filter"

	"gopkg.in/yaml.v3"
)

//go:embed formats.yaml
var builtinFormats []byte

// FormatSpec describes one supported dialect.
type FormatSpec struct {
	ID          string `yaml:"id" json:"id"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	MenuLabel   string `yaml:"menu_label" json:"menuLabel"`
	Template    string `yaml:"template" json:"template"`
	TemplateAlt string `yaml:"template_alt,omitempty" json:"templateAlt,omitempty"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
}

// TemplateFor picks TemplateAlt when the link has no text of its own.
func (f FormatSpec) TemplateFor(content, url string) string {
	return pickTemplate(f.Template, f.TemplateAlt, content, url)
}

func pickTemplate(template, alt, content, url string) string {
	if alt == "" {
		return template
	}
	c := strings.TrimSpace(content)
	if c == "" || c == strings.TrimSpace(url) {
		return alt
	}
	return template
}

// DisplayTitle is the label used in notifications.
func (f FormatSpec) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.ID
}

type catalogFile struct {
	Formats []FormatSpec `yaml:"formats"`
}

// Catalog is the fixed set of formats, loaded once. Only the enabled flags
// change after load.
type Catalog struct {
	mu      sync.RWMutex
	formats []FormatSpec
	index   map[string]int
}

// LoadCatalog parses the built-in format definitions.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(builtinFormats)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to parse format catalog", err)
	}

	c := &Catalog{index: make(map[string]int, len(file.Formats))}
	for _, f := range file.Formats {
		if f.ID == "" || f.Template == "" {
			return nil, errors.ConfigError(fmt.Sprintf("format %q needs an id and a template", f.ID))
		}
		if _, dup := c.index[f.ID]; dup {
			return nil, errors.ConfigError(fmt.Sprintf("duplicate format id %q", f.ID))
		}
		c.index[f.ID] = len(c.formats)
		c.formats = append(c.formats, f)
	}
	return c, nil
}

func (c *Catalog) List() []FormatSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]FormatSpec, len(c.formats))
	copy(out, c.formats)
	return out
}

func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.formats))
	for i, f := range c.formats {
		ids[i] = f.ID
	}
	return ids
}

func (c *Catalog) Get(id string) (FormatSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return FormatSpec{}, false
	}
	return c.formats[i], true
}

// Resolve finds a format by id, ignoring case, and suggests near misses.
func (c *Catalog) Resolve(id string) (FormatSpec, error) {
	if f, ok := c.Get(id); ok {
		return f, nil
	}
	for _, f := range c.List() {
		if strings.EqualFold(f.ID, id) {
			return f, nil
		}
	}
	return FormatSpec{}, errors.UnknownFormatError(id, filter.Suggest(id, c.IDs(), 3))
}

func (c *Catalog) SetEnabled(id string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return errors.InvalidArgument("format", fmt.Sprintf("unknown format %q", id))
	}
	c.formats[i].Enabled = enabled
	return nil
}

// ApplyEnabled overlays persisted toggles; unknown ids are ignored.
func (c *Catalog) ApplyEnabled(toggles map[string]bool) {
	for id, enabled := range toggles {
		_ = c.SetEnabled(id, enabled)
	}
}
