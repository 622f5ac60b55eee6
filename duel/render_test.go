package duel

import (
	"strings"
	"testing"

	"lowlife.exe.dev/discord"
)

func TestHUD(t *testing.T) {
	d := newTestDuel(t, 21)
	withTurn(d, 0)
	d.field.Night = false
	e := d.HUD()
	if e.Title != "⚔️ Combat ☀️" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.HasPrefix(e.Description, "**Range:** Mid **25–40m** (≈36m)") || !strings.Contains(e.Description, "**Turn:** Ash") {
		t.Errorf("description = %q", e.Description)
	}
	if len(e.Fields) != 8 {
		t.Fatalf("fields = %d, want 8", len(e.Fields))
	}
	if e.Fields[0].Name != "Ash" || !e.Fields[0].Inline || !strings.Contains(e.Fields[0].Value, "Fists") {
		t.Errorf("fighter block = %+v", e.Fields[0])
	}
	if !strings.Contains(e.Fields[3].Value, "A") || !strings.Contains(e.Fields[3].Value, "B") {
		t.Errorf("map = %q", e.Fields[3].Value)
	}
	if !strings.HasPrefix(e.Fields[4].Value, "• ◐") {
		t.Errorf("log = %q", e.Fields[4].Value)
	}
	if e.Fields[6].Name != "🩸 Blood — 5.0 L • No active bleed" {
		t.Errorf("blood = %q", e.Fields[6].Name)
	}
	if e.Footer == nil || e.Footer.Text != "Use the buttons to act." {
		t.Errorf("footer = %+v", e.Footer)
	}

	d.field.Night = true
	d.fighters[1].Pos = d.fighters[0].Pos
	e = d.HUD()
	if e.Title != "⚔️ Combat 🌙" || !strings.Contains(e.Fields[3].Value, "✖") {
		t.Errorf("night/overlap render: %q %q", e.Title, e.Fields[3].Value)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v, want int
	}{
		{100, 22},
		{50, 11},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		got := bar(tt.v, MaxHP, hpBarCells)
		if n := strings.Count(got, "█"); n != tt.want || strings.Count(got, "░") != hpBarCells-tt.want {
			t.Errorf("bar(%d) = %q", tt.v, got)
		}
	}
}

func buttons(rows []discord.Component) []discord.Component {
	var out []discord.Component
	for _, r := range rows {
		out = append(out, r.Components...)
	}
	return out
}

func TestComponentsByPhase(t *testing.T) {
	d := newTestDuel(t, 22)
	withTurn(d, 0)
	main := d.Components()
	if len(main) != 3 {
		t.Fatalf("main rows = %d", len(main))
	}
	all := buttons(main)
	if len(all) != 9 {
		t.Fatalf("main buttons = %d", len(all))
	}
	if all[2].CustomID != ActGrenade.CustomID() || !all[2].Disabled {
		t.Errorf("grenade button = %+v", all[2])
	}
	if all[8].CustomID != ActGrapple.CustomID() || !all[8].Disabled {
		t.Errorf("grapple button = %+v", all[8])
	}

	d = choking(t, 23)
	if got := buttons(d.Components()); len(got) != 2 || got[0].CustomID != ActSqueeze.CustomID() {
		t.Errorf("choker buttons = %+v", got)
	}
	d.turn = 1
	if got := buttons(d.Components()); len(got) != 3 || got[0].CustomID != ActGouge.CustomID() {
		t.Errorf("victim buttons = %+v", got)
	}
	d.turn = 0
	d.choke = nil
	if got := buttons(d.Components()); len(got) != 4 || got[3].CustomID != ActBreakFree.CustomID() {
		t.Errorf("grapple buttons = %+v", got)
	}

	d = choking(t, 24)
	if _, err := d.Act(100, ActSqueeze, t0); err != nil {
		t.Fatal(err)
	}
	fin := buttons(d.Components())
	if len(fin) != 4 || fin[3].CustomID != ActSouvenir.CustomID() || !fin[3].Disabled {
		t.Errorf("finisher buttons = %+v", fin)
	}
	if _, err := d.Act(100, ActMercy, t0); err != nil {
		t.Fatal(err)
	}
	over := d.Components()
	if over == nil || len(over) != 0 {
		t.Errorf("finished duel should have an empty button list, got %+v", over)
	}
	if v := d.View(); v.Embeds[0].Footer.Text != "Ash spared Bo." {
		t.Errorf("footer = %q", v.Embeds[0].Footer.Text)
	}
}
