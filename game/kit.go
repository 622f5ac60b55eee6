package game

import (
	"context"
)

const (
	// DefaultKitWeight stands in for gear weight when nothing is equipped.
	DefaultKitWeight = 15.0

	GrenadeTag = "grenade"
)

// Kit is the combat view of a loadout.
type Kit struct {
	Primary   *WeaponProfile `json:"primary,omitempty"`
	Secondary *WeaponProfile `json:"secondary,omitempty"`
	Armor     int            `json:"armor"`
	Weight    float64        `json:"weight"`
	Grenades  int            `json:"grenades"`
}

// Weapons returns the equipped weapon profiles, primary first.
func (k Kit) Weapons() []WeaponProfile {
	var out []WeaponProfile
	if k.Primary != nil {
		out = append(out, *k.Primary)
	}
	if k.Secondary != nil {
		out = append(out, *k.Secondary)
	}
	return out
}

// PickWeapon returns the first equipped weapon that reaches gate g. At
// Close, fists are always available.
func (k Kit) PickWeapon(g Gate) (WeaponProfile, bool) {
	for _, w := range k.Weapons() {
		if w.Reaches(g) {
			return w, true
		}
	}
	if g == GateClose {
		return Fists, true
	}
	return WeaponProfile{}, false
}

// OnlyFists reports whether no equipped weapon exists.
func (k Kit) OnlyFists() bool {
	return k.Primary == nil && k.Secondary == nil
}

// KitFor builds a kit from a loadout using the catalog's weapon profiles.
// Affixes shift a profile by how far the instance mods differ from the
// template's: one accuracy point is one percentage point to hit, one damage
// point is one hit point on both ends of the roll.
func (c *Catalog) KitFor(lo Loadout) Kit {
	var k Kit
	for slot, it := range lo.Equipped {
		k.Weight += it.Weight
		tmpl, ok := c.templates[it.DefID]
		if !ok {
			continue
		}
		if tmpl.Armor > 0 {
			k.Armor += tmpl.Armor
		}
		if tmpl.Weapon == nil {
			continue
		}
		w := *tmpl.Weapon
		w.Name = it.Name
		w.Accuracy += 0.01 * float64(it.Mods["accuracy"]-tmpl.Mods["accuracy"])
		dmg := it.Mods["damage"] - tmpl.Mods["damage"]
		w.DamageMin = max(0, w.DamageMin+dmg)
		w.DamageMax = max(w.DamageMin, w.DamageMax+dmg)
		switch slot {
		case SlotPrimary:
			k.Primary = &w
		case SlotSecondary:
			k.Secondary = &w
		}
	}
	if k.Weight == 0 {
		k.Weight = DefaultKitWeight
	}
	for _, it := range lo.Items {
		if it.HasTag(GrenadeTag) {
			k.Grenades++
		}
	}
	return k
}

// Kit loads the user's loadout and returns its combat view.
func (inv *Inventory) Kit(ctx context.Context, guildID, userID int64) (Kit, Stats, error) {
	lo, err := inv.Show(ctx, guildID, userID)
	if err != nil {
		return Kit{}, Stats{}, err
	}
	return inv.catalog.KitFor(lo), lo.Player.Stats, nil
}
