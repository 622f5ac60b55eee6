package game

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"lowlife.exe.dev/db"
)

func newTestInventory(t *testing.T) *Inventory {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "inv.sqlite3"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.RunMigrations(sqlDB); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	inv := NewInventory(sqlDB, mustCatalog(t))
	var seed int64
	inv.seed = func() int64 { seed++; return seed }
	clock := time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)
	inv.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	return inv
}

const (
	testGuild = int64(100)
	testUser  = int64(200)
)

func TestGiveAndShow(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()

	items, err := inv.Give(ctx, testGuild, testUser, "melee.bat", 2, TierCommon)
	if err != nil {
		t.Fatalf("Give: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Give returned %d items, want 2", len(items))
	}

	lo, err := inv.Show(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(lo.Items) != 2 {
		t.Errorf("Show items = %d, want 2", len(lo.Items))
	}
	if len(lo.Equipped) != 0 {
		t.Errorf("Equipped = %v, want empty", lo.Equipped)
	}
	if got := lo.CarryWeight(); math.Abs(got-2.2) > 1e-9 {
		t.Errorf("CarryWeight = %v, want 2.2", got)
	}
	if lo.Player.Stats != DefaultStats {
		t.Errorf("Stats = %+v, want defaults", lo.Player.Stats)
	}

	// Other guilds do not see the items.
	other, err := inv.Show(ctx, testGuild+1, testUser)
	if err != nil {
		t.Fatalf("Show other guild: %v", err)
	}
	if len(other.Items) != 0 {
		t.Errorf("other guild items = %d, want 0", len(other.Items))
	}
}

func TestGiveValidation(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()
	tests := []struct {
		name  string
		defID string
		qty   int
		want  error
	}{
		{"zero qty", "melee.bat", 0, ErrBadQuantity},
		{"too many", "melee.bat", 100, ErrBadQuantity},
		{"unknown item", "melee.katana", 1, ErrUnknownItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Give(ctx, testGuild, testUser, tt.defID, tt.qty, TierCommon)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEquipFlow(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()

	bats, err := inv.Give(ctx, testGuild, testUser, "melee.bat", 2, TierCommon)
	if err != nil {
		t.Fatalf("Give: %v", err)
	}

	res, err := inv.Equip(ctx, testGuild, testUser, "melee.bat", "")
	if err != nil {
		t.Fatalf("Equip by def: %v", err)
	}
	if res.Slot != SlotPrimary || res.Item.ID != bats[0].ID || res.Replaced != nil {
		t.Errorf("first equip = %+v", res)
	}

	// Second equip by def id picks the bat that is not in use.
	res, err = inv.Equip(ctx, testGuild, testUser, "melee.bat", SlotSecondary)
	if err != nil {
		t.Fatalf("Equip secondary: %v", err)
	}
	if res.Item.ID != bats[1].ID {
		t.Errorf("secondary got %s, want %s", res.Item.ID, bats[1].ID)
	}

	// Moving a bat to the other slot replaces what was there and never
	// leaves one item in two slots.
	res, err = inv.Equip(ctx, testGuild, testUser, bats[0].ID, SlotSecondary)
	if err != nil {
		t.Fatalf("Equip move: %v", err)
	}
	if res.Replaced == nil || res.Replaced.ID != bats[1].ID {
		t.Errorf("Replaced = %+v, want second bat", res.Replaced)
	}
	lo, err := inv.Show(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if _, ok := lo.Equipped[SlotPrimary]; ok {
		t.Errorf("primary should be empty after move, got %+v", lo.Equipped[SlotPrimary])
	}
	if lo.Equipped[SlotSecondary].ID != bats[0].ID {
		t.Errorf("secondary = %s, want %s", lo.Equipped[SlotSecondary].ID, bats[0].ID)
	}
}

func TestEquipErrors(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()
	if _, err := inv.Give(ctx, testGuild, testUser, "armor.leather", 1, TierCommon); err != nil {
		t.Fatalf("Give armor: %v", err)
	}
	if _, err := inv.Give(ctx, testGuild, testUser, "med.basic", 1, TierCommon); err != nil {
		t.Fatalf("Give medkit: %v", err)
	}

	tests := []struct {
		name string
		ref  string
		slot Slot
		want error
	}{
		{"not owned", "rifle.ar15", "", ErrItemNotOwned},
		{"wrong slot", "armor.leather", SlotPrimary, ErrSlotMismatch},
		{"consumable", "med.basic", "", ErrNotEquippable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Equip(ctx, testGuild, testUser, tt.ref, tt.slot)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnequipAndRemove(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()
	items, err := inv.Give(ctx, testGuild, testUser, "pistol.m9", 1, TierCommon)
	if err != nil {
		t.Fatalf("Give: %v", err)
	}
	if _, err := inv.Equip(ctx, testGuild, testUser, items[0].ID, ""); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	if _, err := inv.Unequip(ctx, testGuild, testUser, Slot("hat")); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Unequip(hat) err = %v, want ErrUnknownSlot", err)
	}
	ok, err := inv.Unequip(ctx, testGuild, testUser, SlotArmor)
	if err != nil || ok {
		t.Errorf("Unequip empty slot = %v, %v; want false, nil", ok, err)
	}

	if err := inv.Remove(ctx, testGuild, testUser, items[0].ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	lo, err := inv.Show(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(lo.Items) != 0 || len(lo.Equipped) != 0 {
		t.Errorf("after remove items=%d equipped=%d, want 0/0", len(lo.Items), len(lo.Equipped))
	}
	if err := inv.Remove(ctx, testGuild, testUser, items[0].ID); !errors.Is(err, ErrItemNotOwned) {
		t.Errorf("second Remove err = %v, want ErrItemNotOwned", err)
	}
}

func TestKit(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()

	kit, stats, err := inv.Kit(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Kit empty: %v", err)
	}
	if kit.Weight != DefaultKitWeight || !kit.OnlyFists() || stats != DefaultStats {
		t.Errorf("empty kit = %+v stats %+v", kit, stats)
	}

	for _, def := range []string{"rifle.ar15", "armor.plated"} {
		if _, err := inv.Give(ctx, testGuild, testUser, def, 1, TierCommon); err != nil {
			t.Fatalf("Give %s: %v", def, err)
		}
		if _, err := inv.Equip(ctx, testGuild, testUser, def, ""); err != nil {
			t.Fatalf("Equip %s: %v", def, err)
		}
	}
	if _, err := inv.Give(ctx, testGuild, testUser, "throw.frag", 2, TierCommon); err != nil {
		t.Fatalf("Give grenades: %v", err)
	}

	kit, _, err = inv.Kit(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Kit: %v", err)
	}
	if kit.Primary == nil || kit.Primary.Name != "AR-15" || kit.Primary.Accuracy != 0.65 {
		t.Errorf("Primary = %+v", kit.Primary)
	}
	if kit.Armor != 45 {
		t.Errorf("Armor = %d, want 45", kit.Armor)
	}
	if kit.Grenades != 2 {
		t.Errorf("Grenades = %d, want 2", kit.Grenades)
	}
	if math.Abs(kit.Weight-10.1) > 1e-9 {
		t.Errorf("Weight = %v, want 10.1", kit.Weight)
	}
	if w, ok := kit.PickWeapon(GateClose); !ok || w.Name != "Fists" {
		t.Errorf("PickWeapon(Close) = %+v, %v; want fists", w, ok)
	}
	if w, ok := kit.PickWeapon(GateFar); !ok || w.Name != "AR-15" {
		t.Errorf("PickWeapon(Far) = %+v, %v", w, ok)
	}
	if _, ok := kit.PickWeapon(GateOut); ok {
		t.Error("PickWeapon(Out) should find nothing")
	}

	used, err := inv.ConsumeTagged(ctx, testGuild, testUser, GrenadeTag)
	if err != nil || !used {
		t.Fatalf("ConsumeTagged = %v, %v", used, err)
	}
	kit, _, _ = inv.Kit(ctx, testGuild, testUser)
	if kit.Grenades != 1 {
		t.Errorf("Grenades after consume = %d, want 1", kit.Grenades)
	}
}

func TestAddHostage(t *testing.T) {
	inv := newTestInventory(t)
	ctx := context.Background()
	it, err := inv.AddHostage(ctx, testGuild, testUser, 300, "Mallory")
	if err != nil {
		t.Fatalf("AddHostage: %v", err)
	}
	lo, err := inv.Show(ctx, testGuild, testUser)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(lo.Items) != 1 || lo.Items[0].ID != it.ID {
		t.Fatalf("items = %+v", lo.Items)
	}
	got := lo.Items[0]
	if got.Name != "Hostage: Mallory" || got.Type != TypeHostage || !got.HasTag("target:300") {
		t.Errorf("hostage = %+v", got)
	}
}
