package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lowlife.exe.dev/db/dbgen"
)

// DefaultCarryCapacity is the soft carry cap in kilograms.
const DefaultCarryCapacity = 25.0

type Stats struct {
	Combat  int `json:"combat"`
	Fitness int `json:"fitness"`
}

// DefaultStats is what a new player starts with.
var DefaultStats = Stats{Combat: 10, Fitness: 10}

type Player struct {
	GuildID       int64     `json:"guild_id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name,omitempty"`
	Stats         Stats     `json:"stats"`
	CarryCapacity float64   `json:"carry_capacity"`
	CreatedAt     time.Time `json:"created_at"`
}

// Loadout is everything a player owns plus what sits in each slot.
type Loadout struct {
	Player   Player            `json:"player"`
	Items    []Instance        `json:"items"`
	Equipped map[Slot]Instance `json:"equipped"`
}

// CarryWeight is the total weight of every owned item.
func (l Loadout) CarryWeight() float64 {
	var w float64
	for _, it := range l.Items {
		w += it.Weight
	}
	return w
}

func (l Loadout) OverCapacity() bool {
	return l.CarryWeight() > l.Player.CarryCapacity
}

// EquipResult describes a successful equip.
type EquipResult struct {
	Item     Instance
	Slot     Slot
	Replaced *Instance
}

// Inventory stores players and their items in sqlite. Ownership is scoped
// to a guild.
type Inventory struct {
	db      *sql.DB
	q       *dbgen.Queries
	catalog *Catalog

	now  func() time.Time
	seed func() int64
}

func NewInventory(db *sql.DB, catalog *Catalog) *Inventory {
	return &Inventory{
		db:      db,
		q:       dbgen.New(db),
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		seed:    NewSeed,
	}
}

func (inv *Inventory) Catalog() *Catalog { return inv.catalog }

// EnsurePlayer creates the player row if missing and refreshes the display name.
func (inv *Inventory) EnsurePlayer(ctx context.Context, guildID, userID int64, name string) error {
	return ensurePlayer(ctx, inv.q, guildID, userID, name, inv.now())
}

func ensurePlayer(ctx context.Context, q *dbgen.Queries, guildID, userID int64, name string, now time.Time) error {
	var n *string
	if name != "" {
		n = &name
	}
	if err := q.UpsertPlayer(ctx, dbgen.UpsertPlayerParams{GuildID: guildID, UserID: userID, Name: n, CreatedAt: now}); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

// Player returns the stored player, or a default one if none exists yet.
func (inv *Inventory) Player(ctx context.Context, guildID, userID int64) (Player, error) {
	row, err := inv.q.GetPlayer(ctx, dbgen.GetPlayerParams{GuildID: guildID, UserID: userID})
	if errors.Is(err, sql.ErrNoRows) {
		return Player{
			GuildID:       guildID,
			UserID:        userID,
			Stats:         DefaultStats,
			CarryCapacity: DefaultCarryCapacity,
		}, nil
	}
	if err != nil {
		return Player{}, fmt.Errorf("get player: %w", err)
	}
	p := Player{
		GuildID:       row.GuildID,
		UserID:        row.UserID,
		Stats:         Stats{Combat: int(row.Combat), Fitness: int(row.Fitness)},
		CarryCapacity: row.CarryCapacity,
		CreatedAt:     row.CreatedAt,
	}
	if row.Name != nil {
		p.Name = *row.Name
	}
	return p, nil
}

func (inv *Inventory) Show(ctx context.Context, guildID, userID int64) (Loadout, error) {
	p, err := inv.Player(ctx, guildID, userID)
	if err != nil {
		return Loadout{}, err
	}
	items, err := inv.items(ctx, guildID, userID)
	if err != nil {
		return Loadout{}, err
	}
	equipped, err := inv.equipped(ctx, guildID, userID, items)
	if err != nil {
		return Loadout{}, err
	}
	return Loadout{Player: p, Items: items, Equipped: equipped}, nil
}

func (inv *Inventory) items(ctx context.Context, guildID, userID int64) ([]Instance, error) {
	rows, err := inv.q.ListItemsByOwner(ctx, dbgen.ListItemsByOwnerParams{GuildID: guildID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]Instance, 0, len(rows))
	for _, r := range rows {
		it, err := instanceFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (inv *Inventory) equipped(ctx context.Context, guildID, userID int64, items []Instance) (map[Slot]Instance, error) {
	rows, err := inv.q.ListEquipment(ctx, dbgen.ListEquipmentParams{GuildID: guildID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	byID := make(map[string]Instance, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make(map[Slot]Instance, len(rows))
	for _, r := range rows {
		if it, ok := byID[r.InstID]; ok {
			out[Slot(r.Slot)] = it
		}
	}
	return out, nil
}

// Give rolls qty fresh instances of defID for the user.
func (inv *Inventory) Give(ctx context.Context, guildID, userID int64, defID string, qty int, tier Tier) ([]Instance, error) {
	if qty < 1 || qty > 99 {
		return nil, ErrBadQuantity
	}
	if _, ok := inv.catalog.Template(defID); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, defID)
	}
	out := make([]Instance, 0, qty)
	for range qty {
		it, err := inv.catalog.Instantiate(defID, tier, inv.seed())
		if err != nil {
			return nil, err
		}
		it.CreatedAt = inv.now()
		out = append(out, it)
	}
	err := inv.inTx(ctx, func(q *dbgen.Queries) error {
		if err := ensurePlayer(ctx, q, guildID, userID, "", inv.now()); err != nil {
			return err
		}
		for _, it := range out {
			if err := createItem(ctx, q, guildID, userID, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddHostage gives the victor a hostage item naming the kidnapped player.
func (inv *Inventory) AddHostage(ctx context.Context, guildID, victorID, targetID int64, targetName string) (Instance, error) {
	it := Hostage(targetID, targetName)
	it.CreatedAt = inv.now()
	err := inv.inTx(ctx, func(q *dbgen.Queries) error {
		if err := ensurePlayer(ctx, q, guildID, victorID, "", inv.now()); err != nil {
			return err
		}
		return createItem(ctx, q, guildID, victorID, it)
	})
	if err != nil {
		return Instance{}, err
	}
	return it, nil
}

// Equip puts an owned item into a slot. ref is an instance id or a def id;
// for a def id the first unequipped matching item is used. An empty slot
// means the item's own slot. Whatever was in the slot is replaced.
func (inv *Inventory) Equip(ctx context.Context, guildID, userID int64, ref string, slot Slot) (EquipResult, error) {
	lo, err := inv.Show(ctx, guildID, userID)
	if err != nil {
		return EquipResult{}, err
	}
	it, ok := findOwned(lo, ref)
	if !ok {
		return EquipResult{}, fmt.Errorf("%w: %q", ErrItemNotOwned, ref)
	}
	if len(it.FitSlots) == 0 {
		return EquipResult{}, fmt.Errorf("%w: %s", ErrNotEquippable, it.Name)
	}
	if slot == "" {
		slot = it.Slot
		if slot == "" {
			slot = it.FitSlots[0]
		}
	}
	if !it.Fits(slot) {
		return EquipResult{}, fmt.Errorf("%w: %s cannot go in %s", ErrSlotMismatch, it.Name, slot)
	}

	res := EquipResult{Item: it, Slot: slot}
	if prev, ok := lo.Equipped[slot]; ok && prev.ID != it.ID {
		res.Replaced = &prev
	}
	err = inv.inTx(ctx, func(q *dbgen.Queries) error {
		if err := q.DeleteEquipmentByItem(ctx, it.ID); err != nil {
			return fmt.Errorf("clear previous slot: %w", err)
		}
		return q.SetEquipment(ctx, dbgen.SetEquipmentParams{GuildID: guildID, UserID: userID, Slot: string(slot), InstID: it.ID})
	})
	if err != nil {
		return EquipResult{}, fmt.Errorf("equip: %w", err)
	}
	return res, nil
}

func findOwned(lo Loadout, ref string) (Instance, bool) {
	for _, it := range lo.Items {
		if it.ID == ref {
			return it, true
		}
	}
	inUse := make(map[string]bool, len(lo.Equipped))
	for _, it := range lo.Equipped {
		inUse[it.ID] = true
	}
	var fallback *Instance
	for i, it := range lo.Items {
		if it.DefID != ref {
			continue
		}
		if !inUse[it.ID] {
			return it, true
		}
		if fallback == nil {
			fallback = &lo.Items[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Instance{}, false
}

// Unequip empties a slot. It reports false when the slot was already empty.
func (inv *Inventory) Unequip(ctx context.Context, guildID, userID int64, slot Slot) (bool, error) {
	if _, err := ParseSlot(string(slot)); err != nil {
		return false, err
	}
	n, err := inv.q.DeleteEquipmentSlot(ctx, dbgen.DeleteEquipmentSlotParams{GuildID: guildID, UserID: userID, Slot: string(slot)})
	if err != nil {
		return false, fmt.Errorf("unequip: %w", err)
	}
	return n > 0, nil
}

// Remove deletes an owned item. Equipment rows go with it.
func (inv *Inventory) Remove(ctx context.Context, guildID, userID int64, instID string) error {
	n, err := inv.q.DeleteItem(ctx, dbgen.DeleteItemParams{InstID: instID, GuildID: guildID, UserID: userID})
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrItemNotOwned, instID)
	}
	return nil
}

// ConsumeTagged removes one item carrying tag. It reports false when the
// user has none.
func (inv *Inventory) ConsumeTagged(ctx context.Context, guildID, userID int64, tag string) (bool, error) {
	lo, err := inv.Show(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	for _, it := range lo.Items {
		if !it.HasTag(tag) {
			continue
		}
		if err := inv.Remove(ctx, guildID, userID, it.ID); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (inv *Inventory) inTx(ctx context.Context, fn func(q *dbgen.Queries) error) error {
	tx, err := inv.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if err := fn(inv.q.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func createItem(ctx context.Context, q *dbgen.Queries, guildID, userID int64, it Instance) error {
	fit, err := json.Marshal(it.FitSlots)
	if err != nil {
		return fmt.Errorf("encode fit slots: %w", err)
	}
	tags, err := json.Marshal(it.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	mods, err := json.Marshal(it.Mods)
	if err != nil {
		return fmt.Errorf("encode mods: %w", err)
	}
	var slot *string
	if it.Slot != "" {
		s := string(it.Slot)
		slot = &s
	}
	err = q.CreateItem(ctx, dbgen.CreateItemParams{
		InstID:    it.ID,
		GuildID:   guildID,
		UserID:    userID,
		DefID:     it.DefID,
		Name:      it.Name,
		Type:      string(it.Type),
		Slot:      slot,
		FitSlots:  string(fit),
		Weight:    it.Weight,
		Value:     int64(it.Value),
		Tier:      string(it.Tier),
		Tags:      string(tags),
		Mods:      string(mods),
		Seed:      it.Seed,
		CreatedAt: it.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("create item %s: %w", it.ID, err)
	}
	return nil
}

func instanceFromRow(r dbgen.Item) (Instance, error) {
	it := Instance{
		ID:        r.InstID,
		DefID:     r.DefID,
		Name:      r.Name,
		Type:      ItemType(r.Type),
		Weight:    r.Weight,
		Value:     int(r.Value),
		Tier:      Tier(r.Tier),
		Seed:      r.Seed,
		CreatedAt: r.CreatedAt,
	}
	if r.Slot != nil {
		it.Slot = Slot(*r.Slot)
	}
	if err := json.Unmarshal([]byte(r.FitSlots), &it.FitSlots); err != nil {
		return Instance{}, fmt.Errorf("decode fit slots for %s: %w", r.InstID, err)
	}
	if err := json.Unmarshal([]byte(r.Tags), &it.Tags); err != nil {
		return Instance{}, fmt.Errorf("decode tags for %s: %w", r.InstID, err)
	}
	if err := json.Unmarshal([]byte(r.Mods), &it.Mods); err != nil {
		return Instance{}, fmt.Errorf("decode mods for %s: %w", r.InstID, err)
	}
	return it, nil
}
