// Package catalog defines the measurable performance dimensions and the
// per-metric classification tables used by gap analysis.
//
// Tables are data, not code: the default catalog is embedded YAML and a
// deployment may replace it with its own file.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/peerbench/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Entry is one metric with its lookup-table values.
type Entry struct {
	Key              string           `yaml:"key"`
	Name             string           `yaml:"name"`
	Category         string           `yaml:"category"`
	ValidRange       model.ValidRange `yaml:"valid_range"`
	GapType          string           `yaml:"gap_type"`
	Addressability   string           `yaml:"addressability"`
	QuickWins        []string         `yaml:"quick_wins"`
	StrategicActions []string         `yaml:"strategic_actions"`
	Headline         string           `yaml:"headline"`
}

type document struct {
	Sectors []string `yaml:"sectors"`
	Metrics []Entry  `yaml:"metrics"`
}

// Catalog is an immutable, ordered set of metric entries.
type Catalog struct {
	entries []Entry
	index   map[string]int
	sectors map[string]struct{}
	sorted  []string
}

var (
	gapTypes = map[string]bool{
		model.GapTypeProcess: true, model.GapTypeSkill: true,
		model.GapTypeSystem: true, model.GapTypeCulture: true,
	}
	addressabilities = map[string]bool{
		model.AddressEasy: true, model.AddressModerate: true, model.AddressDifficult: true,
	}
)

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return New(doc.Sectors, doc.Metrics)
}

// New builds a catalog from sectors and entries, validating each entry.
func New(sectors []string, entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no metrics defined", ErrInvalidCatalog)
	}
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
		sectors: make(map[string]struct{}, len(sectors)),
	}
	for _, s := range sectors {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: empty sector", ErrInvalidCatalog)
		}
		c.sectors[s] = struct{}{}
		c.sorted = append(c.sorted, s)
	}
	for _, e := range entries {
		if err := validate(e); err != nil {
			return nil, err
		}
		if _, dup := c.index[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate metric %q", ErrInvalidCatalog, e.Key)
		}
		if e.GapType == "" {
			e.GapType = model.GapTypeProcess
		}
		if e.Addressability == "" {
			e.Addressability = model.AddressModerate
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func validate(e Entry) error {
	switch {
	case strings.TrimSpace(e.Key) == "":
		return fmt.Errorf("%w: metric with empty key", ErrInvalidCatalog)
	case e.ValidRange.Min >= e.ValidRange.Max:
		return fmt.Errorf("%w: metric %q has empty valid range", ErrInvalidCatalog, e.Key)
	case e.GapType != "" && !gapTypes[e.GapType]:
		return fmt.Errorf("%w: metric %q has unknown gap_type %q", ErrInvalidCatalog, e.Key, e.GapType)
	case e.Addressability != "" && !addressabilities[e.Addressability]:
		return fmt.Errorf("%w: metric %q has unknown addressability %q", ErrInvalidCatalog, e.Key, e.Addressability)
	}
	return nil
}

// Has reports whether the metric is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Metric returns the definition for a key.
func (c *Catalog) Metric(key string) (model.MetricDefinition, bool) {
	i, ok := c.index[key]
	if !ok {
		return model.MetricDefinition{}, false
	}
	return definition(c.entries[i]), true
}

// Metrics returns every definition in catalog order.
func (c *Catalog) Metrics() []model.MetricDefinition {
	out := make([]model.MetricDefinition, len(c.entries))
	for i, e := range c.entries {
		out[i] = definition(e)
	}
	return out
}

// Keys returns metric keys in catalog order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Key
	}
	return out
}

// Order returns the catalog position of a key; unknown keys sort last.
func (c *Catalog) Order(key string) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return len(c.entries)
}

// Category returns the metric's category, or empty when unknown.
func (c *Catalog) Category(key string) string {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Category
	}
	return ""
}

// GapType classifies a metric's gaps; unknown metrics are process gaps.
func (c *Catalog) GapType(key string) string {
	if i, ok := c.index[key]; ok {
		return c.entries[i].GapType
	}
	return model.GapTypeProcess
}

// Addressability returns how tractable a metric's gap is; unknown metrics are moderate.
func (c *Catalog) Addressability(key string) string {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Addressability
	}
	return model.AddressModerate
}

// Actions returns copies of the quick-win and strategic action identifiers.
func (c *Catalog) Actions(key string) (quickWins, strategic []string) {
	i, ok := c.index[key]
	if !ok {
		return []string{}, []string{}
	}
	e := c.entries[i]
	return append([]string{}, e.QuickWins...), append([]string{}, e.StrategicActions...)
}

// Headline returns the metric's headline template, if any.
func (c *Catalog) Headline(key string) string {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Headline
	}
	return ""
}

// Sectors returns the known sectors in declaration order.
func (c *Catalog) Sectors() []string {
	return append([]string{}, c.sorted...)
}

// HasSector reports whether the sector is known. A catalog without sectors accepts any.
func (c *Catalog) HasSector(sector string) bool {
	if len(c.sectors) == 0 {
		return strings.TrimSpace(sector) != ""
	}
	_, ok := c.sectors[sector]
	return ok
}

func definition(e Entry) model.MetricDefinition {
	return model.MetricDefinition{
		Key:        e.Key,
		Name:       e.Name,
		Category:   e.Category,
		ValidRange: e.ValidRange,
	}
}
