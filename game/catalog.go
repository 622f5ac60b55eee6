package game

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Template is a catalog entry that instances are rolled from.
type Template struct {
	ID         string         `yaml:"-" json:"id"`
	Name       string         `yaml:"name" json:"name"`
	Type       ItemType       `yaml:"type" json:"type"`
	Slot       Slot           `yaml:"slot" json:"slot,omitempty"`
	FitSlots   []Slot         `yaml:"fit_slots" json:"fit_slots"`
	BaseWeight float64        `yaml:"base_weight" json:"base_weight"`
	BaseValue  int            `yaml:"base_value" json:"base_value"`
	Tags       []string       `yaml:"tags" json:"tags"`
	Mods       Mods           `yaml:"mods" json:"mods"`
	Weapon     *WeaponProfile `yaml:"weapon" json:"weapon,omitempty"`
	Armor      int            `yaml:"armor" json:"armor,omitempty"`
}

// Affix is a named roll that adjusts weight, value and mods.
type Affix struct {
	Name        string  `yaml:"name"`
	Weights     []int   `yaml:"weights"`
	WeightDelta float64 `yaml:"weight_delta"`
	ValueMult   float64 `yaml:"value_mult"`
	Mods        Mods    `yaml:"mods"`
}

type Catalog struct {
	templates map[string]Template
	affixes   []Affix
}

type catalogFile struct {
	Templates map[string]Template `yaml:"templates"`
	Affixes   []Affix             `yaml:"affixes"`
}

// LoadCatalog parses the catalog compiled into the binary.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{templates: make(map[string]Template, len(f.Templates)), affixes: f.Affixes}
	for id, t := range f.Templates {
		t.ID = id
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		if len(t.FitSlots) == 0 && t.Slot != "" {
			t.FitSlots = []Slot{t.Slot}
		}
		if t.Mods == nil {
			t.Mods = Mods{}
		}
		if t.Weapon != nil {
			t.Weapon.Name = t.Name
		}
		c.templates[id] = t
	}
	for _, a := range c.affixes {
		if len(a.Weights) != len(Tiers) {
			return nil, fmt.Errorf("affix %s: want %d tier weights, got %d", a.Name, len(Tiers), len(a.Weights))
		}
	}
	for i := range Tiers {
		total := 0
		for _, a := range c.affixes {
			total += a.Weights[i]
		}
		if len(c.affixes) > 0 && total <= 0 {
			return nil, fmt.Errorf("affixes: tier %s has no weight", Tiers[i])
		}
	}
	return c, nil
}

func (t Template) validate() error {
	if t.Name == "" {
		return fmt.Errorf("missing name")
	}
	if !t.Type.valid() {
		return fmt.Errorf("unknown type %q", t.Type)
	}
	for _, s := range append([]Slot{t.Slot}, t.FitSlots...) {
		if s != "" && !slices.Contains(Slots, s) {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, s)
		}
	}
	if w := t.Weapon; w != nil {
		if w.MinRange > w.MaxRange {
			return fmt.Errorf("weapon range %s..%s is inverted", w.MinRange, w.MaxRange)
		}
		if w.DamageMin > w.DamageMax || w.DamageMin < 0 {
			return fmt.Errorf("weapon damage %d..%d is invalid", w.DamageMin, w.DamageMax)
		}
	}
	return nil
}

// Template returns the template for a def id.
func (c *Catalog) Template(id string) (Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// List returns every template sorted by def id.
func (c *Catalog) List() []Template {
	ids := slices.Sorted(maps.Keys(c.templates))
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.templates[id])
	}
	return out
}

func (c *Catalog) Affixes() []Affix {
	return slices.Clone(c.affixes)
}
