package duel

import (
	"fmt"
	"strings"
	"time"

	"lowlife.exe.dev/game"
)

type Action string

const (
	ActAdvance    Action = "advance"
	ActAttack     Action = "attack"
	ActGrenade    Action = "grenade"
	ActDisengage  Action = "disengage"
	ActBlock      Action = "block"
	ActDodge      Action = "dodge"
	ActCover      Action = "cover"
	ActLeaveCover Action = "leave_cover"
	ActGrapple    Action = "grapple"

	ActChoke     Action = "choke"
	ActWrestle   Action = "wrestle"
	ActPunch     Action = "punch"
	ActBreakFree Action = "break_free"

	ActSqueeze Action = "squeeze"
	ActPush    Action = "push"
	ActGouge   Action = "gouge"

	ActMercy    Action = "mercy"
	ActBeat     Action = "beat"
	ActKidnap   Action = "kidnap"
	ActSouvenir Action = "souvenir"
)

// CustomIDPrefix namespaces duel buttons among message components.
const CustomIDPrefix = "duel:"

func (a Action) CustomID() string { return CustomIDPrefix + string(a) }

// ParseAction maps a button custom id back to an action.
func ParseAction(customID string) (Action, bool) {
	s, ok := strings.CutPrefix(customID, CustomIDPrefix)
	if !ok || s == "" {
		return "", false
	}
	return Action(s), true
}

// Act resolves one action for actorID, then lets any AI fighter play until
// a human is needed again.
func (d *Duel) Act(actorID int64, a Action, now time.Time) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return Outcome{}, ErrDuelOver
	}
	idx, ok := d.indexOf(actorID)
	if !ok {
		return Outcome{}, ErrNotParticipant
	}
	out := &Outcome{}
	d.out = out
	defer func() { d.out = nil }()

	mark := len(d.log)
	if err := d.apply(idx, a); err != nil {
		return Outcome{}, err
	}
	d.lastActivity = now
	d.runAI()
	out.Lines = append([]string(nil), d.log[mark:]...)
	d.settle(out)
	return *out, nil
}

func (d *Duel) settle(out *Outcome) {
	out.Finished = !d.active
	if d.result != nil {
		r := *d.result
		out.Result = &r
	}
}

func (d *Duel) apply(idx int, a Action) error {
	switch d.phase() {
	case PhaseOver:
		return ErrDuelOver
	case PhaseFinisher:
		if idx != d.finisher.victor {
			return ErrOnlyVictor
		}
		return d.finisherAction(a)
	}
	if idx != d.turn {
		return ErrNotYourTurn
	}
	var (
		endTurn bool
		err     error
	)
	switch d.phase() {
	case PhaseChoke:
		if idx == d.choke.choker {
			endTurn, err = d.chokerAction(idx, a)
		} else {
			endTurn, err = d.victimAction(idx, a)
		}
	case PhaseGrapple:
		endTurn, err = d.grappleAction(idx, a)
	default:
		endTurn, err = d.mainAction(idx, a)
	}
	if err != nil {
		return err
	}
	if endTurn {
		d.endTurn()
	}
	d.checkEnd()
	return nil
}

func (d *Duel) mainAction(idx int, a Action) (bool, error) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	switch a {
	case ActAdvance:
		dist := d.distance()
		if dist == 0 {
			return false, unavailableErr("You are already face to face.")
		}
		step := min(d.roll(1, 2), dist)
		dir := 1
		if foe.Pos < me.Pos {
			dir = -1
		}
		d.move(idx, me.Pos+dir*step)
		d.push(fmt.Sprintf("🏃 %s advances **%d m**. Range: **%s**.", me.Name, step*MetersPerSegment, d.gate()))
		return true, nil

	case ActDisengage:
		dir := -1
		if foe.Pos < me.Pos {
			dir = 1
		}
		prev := me.Pos
		d.move(idx, iclamp(me.Pos+dir*d.roll(1, 3), 0, LaneSegments-1))
		if moved := abs(me.Pos - prev); moved > 0 {
			d.push(fmt.Sprintf("↩️ %s disengages **%d m**. Range: **%s**.", me.Name, moved*MetersPerSegment, d.gate()))
		} else {
			d.push(fmt.Sprintf("↩️ %s has nowhere left to retreat.", me.Name))
		}
		return true, nil

	case ActAttack:
		g := d.gate()
		if g == game.GateClose && d.chance(0.35) {
			d.punch(idx)
			return true, nil
		}
		w, ok := me.Kit.PickWeapon(g)
		if !ok {
			return false, ErrOutOfRange
		}
		d.strike(idx, w)
		return true, nil

	case ActGrenade:
		if me.Grenades <= 0 {
			return false, ErrNoGrenades
		}
		me.Grenades--
		d.out.GrenadeThrowers = append(d.out.GrenadeThrowers, me.UserID)
		if d.chance(toHit(0.60, foe.Cover, me.Stamina)) {
			p := d.pending[1-idx]
			p.from = idx
			p.damage += d.roll(30, 40)
			d.pending[1-idx] = p
			d.push(fmt.Sprintf("💣 %s lobs a grenade! It lands near %s and will detonate at the start of their turn.", me.Name, foe.Name))
		} else {
			d.push(fmt.Sprintf("💣 %s throws a grenade but it **misses** the mark.", me.Name))
		}
		return true, nil

	case ActBlock:
		me.Blocking = true
		me.Stamina = max(0, me.Stamina-4)
		d.push(fmt.Sprintf("🛡️ %s braces to **block**.", me.Name))
		return true, nil

	case ActDodge:
		me.Dodging = true
		me.Stamina = max(0, me.Stamina-6)
		d.push(fmt.Sprintf("💨 %s gets ready to **dodge**.", me.Name))
		return true, nil

	case ActCover:
		if me.Cover == CoverFull {
			return false, unavailableErr("You are already in full cover.")
		}
		me.Cover++
		d.push(fmt.Sprintf("🧱 %s takes cover (**%s**).", me.Name, me.Cover))
		return true, nil

	case ActLeaveCover:
		if me.Cover == CoverNone {
			return false, unavailableErr("You are not in cover.")
		}
		me.Cover = CoverNone
		d.push(fmt.Sprintf("🚶 %s leaves cover.", me.Name))
		return true, nil

	case ActGrapple:
		if d.gate() != game.GateClose || d.grappling {
			return false, ErrCannotGrapple
		}
		d.grappling = true
		d.positioning = [2]int{defaultPositioning, defaultPositioning}
		me.Cover, foe.Cover = CoverNone, CoverNone
		d.push(fmt.Sprintf("🤼 %s grabs %s. **Grapple!**", me.Name, foe.Name))
		return false, nil
	}
	return false, d.unknown(a)
}

func (d *Duel) grappleAction(idx int, a Action) (bool, error) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	switch a {
	case ActChoke:
		p := clamp(0.5+float64(d.positioning[idx]-d.positioning[1-idx])/200, 0.2, 0.85)
		if d.chance(p) {
			d.choke = &choke{choker: idx, victim: 1 - idx}
			d.breath[1-idx], d.bloodflow[1-idx] = defaultBreath, defaultBreath
			d.push(fmt.Sprintf("🫵 %s secures a **choke** on %s!", me.Name, foe.Name))
		} else {
			d.push(fmt.Sprintf("🫵 %s reaches for a choke but can't lock it in.", me.Name))
		}
		return true, nil
	case ActWrestle:
		d.wrestle(idx, d.roll(1, 2), 10)
		return true, nil
	case ActPunch:
		d.grapplePunch(idx, 1, 5)
		return true, nil
	case ActBreakFree:
		p := clamp(0.4+float64(d.positioning[idx]-d.positioning[1-idx])/200, 0.1, 0.9)
		if d.chance(p) {
			d.grappling, d.choke = false, nil
			d.push(fmt.Sprintf("🧷 %s **breaks free** from the grapple!", me.Name))
		} else {
			d.shiftPositioning(idx, -5)
			d.push(fmt.Sprintf("🧷 %s struggles but can't break free.", me.Name))
		}
		return true, nil
	}
	return false, d.unknown(a)
}

func (d *Duel) chokerAction(idx int, a Action) (bool, error) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	v := d.choke.victim
	switch a {
	case ActSqueeze:
		d.breath[v] = max(0, d.breath[v]-d.roll(8, 12))
		d.bloodflow[v] = max(0, d.bloodflow[v]-d.roll(4, 8))
		d.push(fmt.Sprintf("🫀 %s **tightens the choke**.", me.Name))
		if d.breath[v] == 0 || d.bloodflow[v] == 0 {
			d.unconscious[v] = true
			d.lastHit[foe.UserID] = Hit{By: me.UserID, Kind: "choke"}
			d.push(fmt.Sprintf("😵 %s passes out.", foe.Name))
		}
		return true, nil
	case ActPush:
		d.choke = nil
		d.shiftPositioning(idx, -10)
		d.push(fmt.Sprintf("🫁 %s **pushes off**, breaking the choke and creating space.", me.Name))
		return true, nil
	}
	return false, d.unknown(a)
}

func (d *Duel) victimAction(idx int, a Action) (bool, error) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	switch a {
	case ActGouge:
		if d.chance(0.65) {
			d.choke = nil
			dmg := d.roll(2, 5)
			foe.HP = max(0, foe.HP-dmg)
			d.lastHit[foe.UserID] = Hit{By: me.UserID, Kind: "gouge", Weapon: game.Fists.Name}
			d.push(fmt.Sprintf("👁️ %s **gouges** free of the choke and counters for **%d**.", me.Name, dmg))
		} else {
			d.push(fmt.Sprintf("👁️ %s claws at %s but the choke holds.", me.Name, foe.Name))
		}
		return true, nil
	case ActWrestle:
		d.wrestle(idx, 0, 8)
		return true, nil
	case ActPunch:
		d.grapplePunch(idx, 1, 4)
		return true, nil
	}
	return false, d.unknown(a)
}

func (d *Duel) finisherAction(a Action) error {
	v, t := d.finisher.victor, d.finisher.target
	victor, target := d.fighters[v], d.fighters[t]
	switch a {
	case ActMercy:
		d.lastHit[target.UserID] = Hit{By: victor.UserID, Kind: "mercy"}
		d.push(fmt.Sprintf("🕊️ %s shows **mercy** to %s.", victor.Name, target.Name))
		d.finish(ResultMercy, v, fmt.Sprintf("%s spared %s.", victor.Name, target.Name))
	case ActBeat:
		dmg := d.roll(1, 7)
		target.HP = max(0, target.HP-dmg)
		d.lastHit[target.UserID] = Hit{By: victor.UserID, Kind: "beat", Weapon: game.Fists.Name}
		d.push(fmt.Sprintf("👊 %s **beats** the unconscious %s for **%d**.", victor.Name, target.Name, dmg))
		if target.HP <= 0 {
			d.finishWin(v)
		}
	case ActKidnap:
		d.lastHit[target.UserID] = Hit{By: victor.UserID, Kind: "kidnap"}
		d.push(fmt.Sprintf("🧿 %s **kidnaps** %s.", victor.Name, target.Name))
		d.out.Kidnap = &Kidnap{VictorID: victor.UserID, TargetID: target.UserID, TargetName: target.Name}
		d.finish(ResultKidnap, v, fmt.Sprintf("%s kidnapped %s.", victor.Name, target.Name))
	case ActSouvenir:
		return unavailableErr("Souvenir options coming soon.")
	default:
		return d.unknown(a)
	}
	return nil
}

func (d *Duel) unknown(a Action) error {
	switch a {
	case ActAdvance, ActAttack, ActGrenade, ActDisengage, ActBlock, ActDodge, ActCover,
		ActLeaveCover, ActGrapple, ActChoke, ActWrestle, ActPunch, ActBreakFree,
		ActSqueeze, ActPush, ActGouge, ActMercy, ActBeat, ActKidnap, ActSouvenir:
		return ErrActionUnavailable
	}
	return ErrUnknownAction
}

func (d *Duel) move(idx, to int) {
	f := d.fighters[idx]
	d.field.markTrail(idx, f.Pos, to)
	f.Pos = to
	f.Cover = CoverNone
}

// strike resolves a weapon attack, fists included.
func (d *Duel) strike(idx int, w game.WeaponProfile) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	verb := "fires"
	if w.Class == game.ClassBlunt {
		verb = "swings"
	}
	p := toHit(clamp(w.Accuracy+statEdge(me.Stats, foe.Stats), 0, 0.98), foe.Cover, me.Stamina)
	me.Stamina = max(0, me.Stamina-7)
	if foe.Dodging {
		foe.Dodging = false
		if d.chance(dodgeChance(foe)) {
			d.push(fmt.Sprintf("💨 %s %s **%s** but %s **dodges**.", me.Name, verb, w.Name, foe.Name))
			return
		}
	}
	if !d.chance(p) {
		d.push(fmt.Sprintf("🎯 %s %s **%s** and **misses**.", me.Name, verb, w.Name))
		return
	}
	dmg := d.roll(w.DamageMin, w.DamageMax)
	d.hit(idx, dmg, w, "🎯 %s hits %s with **%s** for **%d**%s.")
}

// punch is the quick jab thrown at Close range.
func (d *Duel) punch(idx int) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	me.Stamina = max(0, me.Stamina-5)
	if foe.Dodging {
		foe.Dodging = false
		if d.chance(dodgeChance(foe)) {
			d.push(fmt.Sprintf("💨 %s throws a punch but %s **dodges**.", me.Name, foe.Name))
			return
		}
	}
	d.hit(idx, d.roll(5, 9), game.Fists, "👊 %s punches %s (**%s**) for **%d**%s.")
}

func (d *Duel) hit(idx, dmg int, w game.WeaponProfile, format string) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	var notes []string
	if foe.Blocking {
		foe.Blocking = false
		dmg /= 2
		notes = append(notes, "blocked")
	}
	dmg, soaked := absorb(foe, dmg, w.Class)
	if soaked > 0 {
		notes = append(notes, fmt.Sprintf("armor −%d", soaked))
	}
	foe.HP = max(0, foe.HP-dmg)
	kind := "melee"
	if w.Class == game.ClassBallistic {
		kind = "shot"
	}
	d.lastHit[foe.UserID] = Hit{By: me.UserID, Kind: kind, Weapon: w.Name}
	suffix := ""
	if len(notes) > 0 {
		suffix = " (" + strings.Join(notes, ", ") + ")"
	}
	d.push(fmt.Sprintf(format, me.Name, foe.Name, w.Name, dmg, suffix))
}

func (d *Duel) wrestle(idx, dmg, swing int) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	if dmg > 0 {
		foe.HP = max(0, foe.HP-dmg)
		d.lastHit[foe.UserID] = Hit{By: me.UserID, Kind: "wrestle"}
	}
	gained := dmg == 0 || d.chance(0.5)
	if gained {
		d.shiftPositioning(idx, swing)
	}
	switch {
	case dmg > 0 && gained:
		d.push(fmt.Sprintf("🤼 %s wrestles %s for **%d** and gains position.", me.Name, foe.Name, dmg))
	case dmg > 0:
		d.push(fmt.Sprintf("🤼 %s wrestles %s for **%d**.", me.Name, foe.Name, dmg))
	default:
		d.push(fmt.Sprintf("🤼 %s wrestles for better position.", me.Name))
	}
}

func (d *Duel) grapplePunch(idx, lo, hi int) {
	me, foe := d.fighters[idx], d.fighters[1-idx]
	dmg := d.roll(lo, hi)
	foe.HP = max(0, foe.HP-dmg)
	d.lastHit[foe.UserID] = Hit{By: me.UserID, Kind: "melee", Weapon: game.Fists.Name}
	d.push(fmt.Sprintf("👊 %s lands a short punch on %s for **%d**.", me.Name, foe.Name, dmg))
}

// shiftPositioning moves delta points of positioning toward fighter idx.
func (d *Duel) shiftPositioning(idx, delta int) {
	d.positioning[idx] = iclamp(d.positioning[idx]+delta, 0, 100)
	d.positioning[1-idx] = iclamp(d.positioning[1-idx]-delta, 0, 100)
}

func (d *Duel) endTurn() {
	actor, foe := d.fighters[d.turn], d.fighters[1-d.turn]
	actor.Stamina = min(100, actor.Stamina+StaminaRegen)
	foe.Blocking, foe.Dodging = false, false
	d.turn = 1 - d.turn
	if d.turn == d.first {
		d.round++
	}
	d.detonate(d.turn)
}

func (d *Duel) detonate(idx int) {
	p, ok := d.pending[idx]
	if !ok {
		return
	}
	delete(d.pending, idx)
	from, target := d.fighters[p.from], d.fighters[idx]
	target.HP = max(0, target.HP-p.damage)
	d.lastHit[target.UserID] = Hit{By: from.UserID, Kind: "grenade", Weapon: "Grenade"}
	d.push(fmt.Sprintf("💥 The grenade from **%s** detonates near **%s** for **%d**.", from.Name, target.Name, p.damage))
}

func (d *Duel) checkEnd() {
	if !d.active {
		return
	}
	downA, downB := d.fighters[0].HP <= 0, d.fighters[1].HP <= 0
	switch {
	case downA && downB:
		d.push("Both fighters fall! It's a draw.")
		d.finish(ResultDraw, -1, "It ends in a draw.")
	case downA:
		d.finishWin(1)
	case downB:
		d.finishWin(0)
	case d.finisher == nil:
		for i, out := range d.unconscious {
			if out {
				d.offerFinisher(1-i, i)
				return
			}
		}
	}
}

func (d *Duel) offerFinisher(victor, target int) {
	d.finisher = &finisher{victor: victor, target: target}
	d.grappling, d.choke = false, nil
	d.turn = victor
	d.push("☠️ Your opponent is **unconscious**. Choose their fate.")
	if d.out != nil {
		d.out.FinisherOffered = true
	}
}

func (d *Duel) finishWin(winner int) {
	w, l := d.fighters[winner], d.fighters[1-winner]
	d.push(fmt.Sprintf("🏆 %s wins!", w.Name))
	d.finish(ResultWin, winner, fmt.Sprintf("%s defeats %s.", w.Name, l.Name))
}

// finish ends the duel. winner is -1 when nobody won.
func (d *Duel) finish(kind ResultKind, winner int, summary string) {
	r := &Result{Kind: kind, Summary: summary, Rounds: d.round}
	if winner >= 0 {
		w, l := d.fighters[winner], d.fighters[1-winner]
		r.WinnerID, r.WinnerName = w.UserID, w.Name
		r.LoserID, r.LoserName = l.UserID, l.Name
		if h, ok := d.lastHit[l.UserID]; ok {
			r.Cause, r.Weapon = h.Kind, h.Weapon
		}
	}
	d.result = r
	d.active = false
	d.finisher = nil
	d.grappling, d.choke = false, nil
}

// Reset force-ends the duel.
func (d *Duel) Reset(now time.Time) (Outcome, error) {
	return d.abort(now, "⛔ Duel reset.", ResultAborted, "Aborted.")
}

// Timeout ends an idle duel.
func (d *Duel) Timeout(now time.Time) (Outcome, error) {
	return d.TimeoutIdle(now, 0)
}

// TimeoutIdle times the duel out only if it has seen no action for idle
// before now. The check and the timeout share the duel's lock, so a move
// that lands first wins and ErrNotIdle is returned.
func (d *Duel) TimeoutIdle(now time.Time, idle time.Duration) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active && now.Sub(d.lastActivity) < idle {
		return Outcome{}, ErrNotIdle
	}
	return d.abortLocked(now, "⏱️ Duel timed out due to inactivity.", ResultTimeout, "Timed out due to inactivity.")
}

func (d *Duel) abort(now time.Time, line string, kind ResultKind, summary string) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.abortLocked(now, line, kind, summary)
}

func (d *Duel) abortLocked(now time.Time, line string, kind ResultKind, summary string) (Outcome, error) {
	if !d.active {
		return Outcome{}, ErrDuelOver
	}
	d.push(line)
	d.finish(kind, -1, summary)
	d.lastActivity = now
	out := Outcome{Lines: []string{line}}
	d.settle(&out)
	return out, nil
}
