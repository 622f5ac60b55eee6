// Package game holds the item catalog, item instances and the per-guild
// inventory that duels draw their loadouts from.
package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrUnknownTier   = errors.New("unknown tier")
	ErrUnknownSlot   = errors.New("unknown slot")
	ErrBadQuantity   = errors.New("quantity must be between 1 and 99")
	ErrItemNotOwned  = errors.New("item not owned")
	ErrSlotMismatch  = errors.New("item does not fit slot")
	ErrNotEquippable = errors.New("item cannot be equipped")
)

type ItemType string

const (
	TypeWeapon     ItemType = "weapon"
	TypeArmor      ItemType = "armor"
	TypeAccessory  ItemType = "accessory"
	TypeConsumable ItemType = "consumable"
	TypeHostage    ItemType = "hostage"
)

func (t ItemType) valid() bool {
	switch t {
	case TypeWeapon, TypeArmor, TypeAccessory, TypeConsumable, TypeHostage:
		return true
	}
	return false
}

// Slot is an equipment slot. The empty slot means "not equippable".
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
	SlotArmor     Slot = "armor"
	SlotAccessory Slot = "accessory"
)

// Slots lists the equipment slots in display order.
var Slots = []Slot{SlotPrimary, SlotSecondary, SlotArmor, SlotAccessory}

// ParseSlot accepts a slot name in any case.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Slots, slot) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
	}
	return slot, nil
}

func SlotNames() []string {
	names := make([]string, len(Slots))
	for i, s := range Slots {
		names[i] = string(s)
	}
	return names
}

type Tier string

const (
	TierCommon   Tier = "common"
	TierUncommon Tier = "uncommon"
	TierRare     Tier = "rare"
	TierEpic     Tier = "epic"
)

var Tiers = []Tier{TierCommon, TierUncommon, TierRare, TierEpic}

func ParseTier(s string) (Tier, error) {
	if s == "" {
		return TierCommon, nil
	}
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Tiers, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

func (t Tier) index() int {
	return slices.Index(Tiers, t)
}

// affixCount is how many affixes an item of the tier rolls.
func (t Tier) affixCount() int {
	switch t {
	case TierUncommon, TierRare:
		return 1
	case TierEpic:
		return 2
	}
	return 0
}

// Mods are integer stat modifiers: accuracy, damage, concealment, escape_bonus.
type Mods map[string]int

func (m Mods) clone() Mods {
	out := make(Mods, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Gate is a coarse distance band between two fighters.
type Gate int

const (
	GateClose Gate = iota
	GateNear
	GateMid
	GateFar
	GateOut
)

var gateNames = [...]string{"Close", "Near", "Mid", "Far", "Out"}

func (g Gate) String() string {
	if g < GateClose || g > GateOut {
		return fmt.Sprintf("Gate(%d)", int(g))
	}
	return gateNames[g]
}

func ParseGate(s string) (Gate, error) {
	for i, name := range gateNames {
		if strings.EqualFold(s, name) {
			return Gate(i), nil
		}
	}
	return 0, fmt.Errorf("unknown range gate %q", s)
}

func (g *Gate) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseGate(value.Value)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g Gate) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(g.String())), nil
}

type WeaponClass string

const (
	ClassBallistic WeaponClass = "ballistic"
	ClassBlunt     WeaponClass = "blunt"
)

// WeaponProfile is the combat view of a weapon.
type WeaponProfile struct {
	Name      string      `yaml:"-" json:"name"`
	MinRange  Gate        `yaml:"min_range" json:"min_range"`
	MaxRange  Gate        `yaml:"max_range" json:"max_range"`
	Accuracy  float64     `yaml:"accuracy" json:"accuracy"`
	DamageMin int         `yaml:"damage_min" json:"damage_min"`
	DamageMax int         `yaml:"damage_max" json:"damage_max"`
	Class     WeaponClass `yaml:"class" json:"class"`
}

// Reaches reports whether the weapon can be used at gate g.
func (w WeaponProfile) Reaches(g Gate) bool {
	return g >= w.MinRange && g <= w.MaxRange
}

// Fists is used when no equipped weapon reaches Close.
var Fists = WeaponProfile{
	Name:      "Fists",
	MinRange:  GateClose,
	MaxRange:  GateClose,
	Accuracy:  0.65,
	DamageMin: 4,
	DamageMax: 7,
	Class:     ClassBlunt,
}
