package duel

import (
	"fmt"
	"strings"

	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/game"
)

const (
	hpBarCells    = 22
	bloodBarCells = 24
	bloodLiters   = 5.0
)

// View renders the HUD and the buttons for the current phase.
func (d *Duel) View() discord.ResponseData {
	return discord.ResponseData{
		Embeds:          []discord.Embed{d.HUD()},
		Components:      d.Components(),
		AllowedMentions: discord.NoMentions,
	}
}

func (d *Duel) HUD() discord.Embed {
	d.mu.Lock()
	defer d.mu.Unlock()

	sky, light := "☀️", "Day"
	if d.field.Night {
		sky, light = "🌙", "Night"
	}
	g := d.gate()
	lo, hi := Meters(g)
	current := d.fighters[d.turn]
	header := fmt.Sprintf("**Range:** %s **%d–%dm** (≈%dm)  •  **Round:** %d  •  **Turn:** %s  •  **Map:** %s",
		g, lo, hi, approxMeters(d.distance()), d.round, current.Name, light)

	color := discord.ColorBlurple
	if !d.active {
		color = discord.ColorDarkGold
	}
	e := discord.NewEmbed("⚔️ Combat "+sky, header, color)
	for _, f := range d.fighters {
		e.AddField(f.Name, fighterBlock(f), true)
	}
	e.AddField(discord.ZeroWidth, discord.ZeroWidth, false)
	e.AddField(fmt.Sprintf("Distance: **%s** (%d–%dm, ≈%dm)", g, lo, hi, approxMeters(d.distance())), d.mapRows(), false)
	e.AddField("Combat Log", "• "+strings.Join(d.logTail(), "\n• "), false)
	e.AddField("Initiative", "`"+d.initiative+"`", true)
	e.AddField(fmt.Sprintf("🩸 Blood — %.1f L • %s", bloodLiters*float64(current.HP)/MaxHP, d.bleedNote(d.turn)),
		"`"+bar(current.HP, MaxHP, bloodBarCells)+"`", false)
	e.AddField("Grenade", fmt.Sprintf("💣 %d", current.Grenades), true)

	footer := "Use the buttons to act."
	switch d.phase() {
	case PhaseFinisher:
		footer = fmt.Sprintf("%s chooses the fate of %s.", d.fighters[d.finisher.victor].Name, d.fighters[d.finisher.target].Name)
	case PhaseOver:
		footer = "Duel over."
		if d.result != nil {
			footer = d.result.Summary
		}
	}
	e.SetFooter(footer, "")
	return e
}

func fighterBlock(f *Fighter) string {
	weapons := game.Fists.Name
	if names := weaponNames(f.Kit); names != "" {
		weapons = names
	}
	return fmt.Sprintf("%s\n❤️ HP %d/%d\n`%s`\n🛡️ Armor: %d/%d\n⚡ STA %d • Cover: %s",
		weapons, f.HP, MaxHP, bar(f.HP, MaxHP, hpBarCells), f.ArmorCur, f.ArmorMax, f.Stamina, f.Cover)
}

func weaponNames(k game.Kit) string {
	var names []string
	for _, w := range k.Weapons() {
		names = append(names, w.Name)
	}
	return strings.Join(names, " / ")
}

func (d *Duel) bleedNote(idx int) string {
	if d.choke != nil && d.choke.victim == idx {
		return fmt.Sprintf("Breath %d • Bloodflow %d", d.breath[idx], d.bloodflow[idx])
	}
	return "No active bleed"
}

func bar(v, maxV, cells int) string {
	filled := iclamp(v*cells/maxV, 0, cells)
	if v > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

func (d *Duel) mapRows() string {
	lane := make([]string, LaneSegments)
	trail := make([]string, LaneSegments)
	cover := make([]string, LaneSegments)
	hasTrail, hasCover := false, false
	for i := range LaneSegments {
		lane[i], trail[i], cover[i] = "·", " ", " "
		if who, ok := d.field.Trails[i]; ok {
			trail[i] = [...]string{"▫", "▪"}[who]
			hasTrail = true
		}
		if t, ok := d.field.Cover[i]; ok {
			cover[i] = t.Glyph()
			hasCover = true
		}
	}
	a, b := d.fighters[0].Pos, d.fighters[1].Pos
	if a == b {
		lane[a] = "✖"
	} else {
		lane[a], lane[b] = "A", "B"
	}
	rows := []string{"`" + strings.Join(lane, "") + "`"}
	if hasTrail {
		rows = append(rows, "`"+strings.Join(trail, "")+"`")
	}
	if hasCover {
		rows = append(rows, strings.Join(cover, ""))
	}
	return strings.Join(rows, "\n")
}

func (d *Duel) logTail() []string {
	return d.log[max(0, len(d.log)-LogVisible):]
}

// Components returns the buttons for the current phase. A finished duel
// has none.
func (d *Duel) Components() []discord.Component {
	d.mu.Lock()
	defer d.mu.Unlock()

	btn := func(style discord.ButtonStyle, label string, a Action) discord.Component {
		return discord.Button(style, label, a.CustomID())
	}
	switch d.phase() {
	case PhaseOver:
		return []discord.Component{}
	case PhaseFinisher:
		souvenir := btn(discord.ButtonSecondary, "Souvenir", ActSouvenir)
		souvenir.Disabled = true
		return discord.Rows([]discord.Component{
			btn(discord.ButtonSuccess, "Mercy", ActMercy),
			btn(discord.ButtonDanger, "Beat", ActBeat),
			btn(discord.ButtonPrimary, "Kidnap", ActKidnap),
			souvenir,
		})
	case PhaseChoke:
		if d.turn == d.choke.choker {
			return discord.Rows([]discord.Component{
				btn(discord.ButtonDanger, "Choke", ActSqueeze),
				btn(discord.ButtonSecondary, "Push", ActPush),
			})
		}
		return discord.Rows([]discord.Component{
			btn(discord.ButtonDanger, "Gouge", ActGouge),
			btn(discord.ButtonPrimary, "Wrestle", ActWrestle),
			btn(discord.ButtonSecondary, "Punch", ActPunch),
		})
	case PhaseGrapple:
		return discord.Rows([]discord.Component{
			btn(discord.ButtonDanger, "Choke", ActChoke),
			btn(discord.ButtonPrimary, "Wrestle", ActWrestle),
			btn(discord.ButtonSecondary, "Punch", ActPunch),
			btn(discord.ButtonSuccess, "Break Free", ActBreakFree),
		})
	}

	me := d.fighters[d.turn]
	grenade := btn(discord.ButtonSecondary, "Throw Grenade", ActGrenade)
	grenade.Disabled = me.Grenades <= 0
	grapple := btn(discord.ButtonDanger, "Grapple", ActGrapple)
	grapple.Disabled = d.gate() != game.GateClose
	return []discord.Component{
		discord.ActionRow(
			btn(discord.ButtonPrimary, "Advance", ActAdvance),
			btn(discord.ButtonDanger, "Attack", ActAttack),
			grenade,
			btn(discord.ButtonSecondary, "Disengage", ActDisengage),
		),
		discord.ActionRow(
			btn(discord.ButtonSecondary, "Block", ActBlock),
			btn(discord.ButtonSecondary, "Dodge", ActDodge),
			btn(discord.ButtonSuccess, "Take Cover", ActCover),
			btn(discord.ButtonSecondary, "Leave Cover", ActLeaveCover),
		),
		discord.ActionRow(grapple),
	}
}
