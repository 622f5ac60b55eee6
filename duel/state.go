// Package duel is the turn-based combat engine. A Duel is pure state: it
// never talks to Discord or the database. Side effects such as kidnapped
// hostages or thrown grenades are reported back in an Outcome.
package duel

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"lowlife.exe.dev/game"
)

const (
	LaneSegments     = 20
	MetersPerSegment = 4
	StartA           = 5
	StartB           = 14

	MaxHP        = 100
	BaseStamina  = 85
	StaminaRegen = 5

	LogVisible         = 6
	DefaultIdleTimeout = 15 * time.Minute

	defaultPositioning = 50
	defaultBreath      = 50
	maxAISteps         = 256
)

type Cover int

const (
	CoverNone Cover = iota
	CoverPartial
	CoverFull
)

var coverToHitMod = [...]float64{0, -0.20, -0.40}

func (c Cover) String() string {
	switch c {
	case CoverPartial:
		return "Partial"
	case CoverFull:
		return "Full"
	}
	return "—"
}

// Combatant is what a duel needs to know about a player when it starts.
type Combatant struct {
	UserID int64
	Name   string
	AI     bool
	Kit    game.Kit
	Stats  game.Stats
}

type Fighter struct {
	UserID   int64
	Name     string
	AI       bool
	HP       int
	Stamina  int
	ArmorCur int
	ArmorMax int
	Weight   float64
	Cover    Cover
	Blocking bool
	Dodging  bool
	Grenades int
	Pos      int
	Kit      game.Kit
	Stats    game.Stats
}

type Phase int

const (
	PhaseMain Phase = iota
	PhaseGrapple
	PhaseChoke
	PhaseFinisher
	PhaseOver
)

func (p Phase) String() string {
	return [...]string{"main", "grapple", "choke", "finisher", "over"}[p]
}

type choke struct {
	choker, victim int
}

type finisher struct {
	victor, target int
}

type pendingGrenade struct {
	from   int
	damage int
}

// Hit records the last blow a fighter took.
type Hit struct {
	By     int64
	Kind   string
	Weapon string
}

type ResultKind string

const (
	ResultWin     ResultKind = "win"
	ResultDraw    ResultKind = "draw"
	ResultMercy   ResultKind = "mercy"
	ResultKidnap  ResultKind = "kidnap"
	ResultAborted ResultKind = "aborted"
	ResultTimeout ResultKind = "timeout"
)

// Result describes how a duel ended.
type Result struct {
	Kind       ResultKind
	WinnerID   int64
	LoserID    int64
	WinnerName string
	LoserName  string
	Summary    string
	Cause      string
	Weapon     string
	Rounds     int
}

// Note is the public channel line for the result.
func (r Result) Note() string {
	return "**Result:** " + r.Summary
}

// Kidnap asks the caller to hand the victor a hostage item.
type Kidnap struct {
	VictorID   int64
	TargetID   int64
	TargetName string
}

// Outcome is what one call to Act produced, including any AI turns that
// followed.
type Outcome struct {
	Lines           []string
	Finished        bool
	Result          *Result
	FinisherOffered bool
	Kidnap          *Kidnap
	GrenadeThrowers []int64
}

type Config struct {
	GuildID   int64
	ChannelID int64
	A, B      Combatant
	Rand      *rand.Rand
	Now       time.Time
}

type Duel struct {
	mu sync.Mutex

	guildID   int64
	channelID int64

	fighters [2]*Fighter
	field    Battlefield

	grappling   bool
	choke       *choke
	positioning [2]int
	breath      [2]int
	bloodflow   [2]int
	unconscious [2]bool
	pending     map[int]pendingGrenade
	finisher    *finisher
	lastHit     map[int64]Hit

	log        []string
	initiative string
	round      int
	turn       int
	first      int
	active     bool
	result     *Result

	lastActivity time.Time
	rng          *rand.Rand

	// scratch for the Outcome being built by Act
	out *Outcome
}

// New sets up a duel: seeds the log, rolls initiative and lays out the
// battlefield.
func New(cfg Config) (*Duel, error) {
	if cfg.A.UserID == cfg.B.UserID {
		return nil, ErrSelfDuel
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	d := &Duel{
		guildID:      cfg.GuildID,
		channelID:    cfg.ChannelID,
		fighters:     [2]*Fighter{newFighter(cfg.A, StartA), newFighter(cfg.B, StartB)},
		positioning:  [2]int{defaultPositioning, defaultPositioning},
		breath:       [2]int{defaultBreath, defaultBreath},
		bloodflow:    [2]int{defaultBreath, defaultBreath},
		pending:      make(map[int]pendingGrenade),
		lastHit:      make(map[int64]Hit),
		round:        1,
		active:       true,
		lastActivity: now,
		rng:          rng,
	}
	for range LogVisible - 1 {
		d.log = append(d.log, "◐")
	}
	d.rollInitiative()
	d.field = newBattlefield(rng, StartA, StartB)
	return d, nil
}

func newFighter(c Combatant, pos int) *Fighter {
	return &Fighter{
		UserID:   c.UserID,
		Name:     c.Name,
		AI:       c.AI,
		HP:       MaxHP,
		Stamina:  BaseStamina,
		ArmorCur: c.Kit.Armor,
		ArmorMax: c.Kit.Armor,
		Weight:   c.Kit.Weight,
		Grenades: c.Kit.Grenades,
		Pos:      pos,
		Kit:      c.Kit,
		Stats:    c.Stats,
	}
}

func (d *Duel) rollInitiative() {
	a, b := d.fighters[0], d.fighters[1]
	pA := clamp(0.5+0.02*float64(a.Stats.Combat-b.Stats.Combat)+0.01*float64(a.Stats.Fitness-b.Stats.Fitness), 0.10, 0.90)
	first := 1
	if d.rng.Float64() <= pA {
		first = 0
	}
	d.first, d.turn = first, first
	pa := int(math.Round(pA * 100))
	pb := 100 - pa
	d.initiative = fmt.Sprintf("a%d_[b%d]", pa, pb)
	d.push(fmt.Sprintf("Initiative: %s %d%% vs %s %d%% → **%s** starts.", a.Name, pa, b.Name, pb, d.fighters[first].Name))
}

func (d *Duel) push(line string) {
	d.log = append(d.log, line)
}

func (d *Duel) phase() Phase {
	switch {
	case !d.active:
		return PhaseOver
	case d.finisher != nil:
		return PhaseFinisher
	case d.choke != nil:
		return PhaseChoke
	case d.grappling:
		return PhaseGrapple
	}
	return PhaseMain
}

func (d *Duel) distance() int {
	return abs(d.fighters[0].Pos - d.fighters[1].Pos)
}

func (d *Duel) gate() game.Gate {
	return GateFor(d.distance())
}

// GateFor maps a lane distance in segments to a range gate.
func GateFor(segments int) game.Gate {
	switch {
	case segments <= 2:
		return game.GateClose
	case segments <= 5:
		return game.GateNear
	case segments <= 9:
		return game.GateMid
	case segments <= 14:
		return game.GateFar
	}
	return game.GateOut
}

func (d *Duel) indexOf(userID int64) (int, bool) {
	for i, f := range d.fighters {
		if f.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

func (d *Duel) roll(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + d.rng.IntN(hi-lo+1)
}

func (d *Duel) chance(p float64) bool {
	return d.rng.Float64() < p
}

// Accessors below lock the duel; the engine itself works on unlocked state.

func (d *Duel) Key() Key {
	return Key{GuildID: d.guildID, ChannelID: d.channelID}
}

func (d *Duel) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Duel) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase()
}

// Fighters returns copies of both fighters, A first.
func (d *Duel) Fighters() [2]Fighter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return [2]Fighter{*d.fighters[0], *d.fighters[1]}
}

// Current is the user whose input the duel is waiting for.
func (d *Duel) Current() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fighters[d.turn].UserID
}

func (d *Duel) Round() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.round
}

func (d *Duel) Result() (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil {
		return Result{}, false
	}
	return *d.result, true
}

// Log returns the full combat log including the filler rows.
func (d *Duel) Log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.log...)
}

func (d *Duel) LastHit(userID int64) (Hit, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.lastHit[userID]
	return h, ok
}

func (d *Duel) LastActivity() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActivity
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func iclamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
