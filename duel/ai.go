package duel

import (
	"fmt"

	"lowlife.exe.dev/game"
)

const (
	// AIBaseID offsets synthetic opponent ids away from real snowflakes
	// used in tests and local play.
	AIBaseID  = 10_000_000_000
	AIName    = "AI Defender"
	aiKitSeed = 1
)

// AIUserID is the synthetic id of the AI opponent facing userID.
func AIUserID(userID int64) int64 {
	return AIBaseID + userID%1_000_000_000
}

// DefenderKit is the fixed loadout of the AI opponent: an M9 in hand and a
// bat on the back.
func DefenderKit(cat *game.Catalog) (game.Kit, error) {
	lo := game.Loadout{Equipped: make(map[game.Slot]game.Instance)}
	for slot, id := range map[game.Slot]string{
		game.SlotPrimary:   "pistol.m9",
		game.SlotSecondary: "melee.bat",
	} {
		it, err := cat.Instantiate(id, game.TierCommon, aiKitSeed)
		if err != nil {
			return game.Kit{}, fmt.Errorf("defender kit %s: %w", id, err)
		}
		lo.Items = append(lo.Items, it)
		lo.Equipped[slot] = it
	}
	return cat.KitFor(lo), nil
}

// DefenderCombatant is the AI opponent for a duel started by userID.
func DefenderCombatant(cat *game.Catalog, userID int64) (Combatant, error) {
	kit, err := DefenderKit(cat)
	if err != nil {
		return Combatant{}, err
	}
	return Combatant{
		UserID: AIUserID(userID),
		Name:   AIName,
		AI:     true,
		Kit:    kit,
		Stats:  game.DefaultStats,
	}, nil
}

// runAI plays AI turns until a human is expected to act or the duel ends.
func (d *Duel) runAI() {
	for range maxAISteps {
		idx, ok := d.aiToAct()
		if !ok {
			return
		}
		if err := d.apply(idx, d.aiChoose(idx)); err != nil {
			if d.phase() != PhaseMain || d.apply(idx, ActBlock) != nil {
				return
			}
		}
	}
}

func (d *Duel) aiToAct() (int, bool) {
	switch d.phase() {
	case PhaseOver:
		return 0, false
	case PhaseFinisher:
		v := d.finisher.victor
		return v, d.fighters[v].AI
	}
	return d.turn, d.fighters[d.turn].AI
}

// aiChoose picks the AI's next action. The AI never shows mercy.
func (d *Duel) aiChoose(idx int) Action {
	switch d.phase() {
	case PhaseFinisher:
		return ActBeat
	case PhaseChoke:
		if d.choke.choker == idx {
			return ActSqueeze
		}
		return ActGouge
	case PhaseGrapple:
		return [...]Action{ActWrestle, ActPunch, ActBreakFree}[d.rng.IntN(3)]
	}
	if _, ok := d.fighters[idx].Kit.PickWeapon(d.gate()); ok {
		return ActAttack
	}
	return ActAdvance
}
