package duel

import (
	"math"
	"math/rand/v2"

	"lowlife.exe.dev/game"
)

type TileKind int

const (
	TileDoor TileKind = iota
	TileBarricade
	TileBarrel
)

func (t TileKind) Glyph() string {
	switch t {
	case TileBarricade:
		return "🚧"
	case TileBarrel:
		return "🛢️"
	}
	return "🚪"
}

// Battlefield is the lane scenery: lighting, cover tiles and the trails
// fighters leave behind them.
type Battlefield struct {
	Night  bool
	Cover  map[int]TileKind
	Trails map[int]int
}

func newBattlefield(rng *rand.Rand, occupied ...int) Battlefield {
	bf := Battlefield{
		Night:  rng.IntN(2) == 1,
		Cover:  make(map[int]TileKind),
		Trails: make(map[int]int),
	}
	taken := make(map[int]bool, len(occupied))
	for _, o := range occupied {
		taken[o] = true
	}
	want := 2 + rng.IntN(3)
	for tries := 0; len(bf.Cover) < want && tries < 64; tries++ {
		cell := 1 + rng.IntN(LaneSegments-2)
		if taken[cell] {
			continue
		}
		if _, ok := bf.Cover[cell]; ok {
			continue
		}
		bf.Cover[cell] = TileKind(rng.IntN(3))
	}
	return bf
}

// markTrail records every cell crossed moving from one cell to another.
func (bf *Battlefield) markTrail(fighter, from, to int) {
	step := 1
	if to < from {
		step = -1
	}
	for c := from; c != to; c += step {
		bf.Trails[c] = fighter
	}
}

// Meters is the header band for a gate.
func Meters(g game.Gate) (lo, hi int) {
	switch g {
	case game.GateClose:
		return 4, 10
	case game.GateNear:
		return 10, 25
	case game.GateMid:
		return 25, 40
	case game.GateFar:
		return 40, 70
	}
	return 70, 120
}

func approxMeters(segments int) int {
	lo, hi := Meters(GateFor(segments))
	return iclamp(segments*MetersPerSegment, lo, hi)
}

func toHit(base float64, cover Cover, stamina int) float64 {
	return clamp(base+coverToHitMod[cover]+float64(stamina-50)/100*0.08, 0.05, 0.95)
}

func dodgeChance(f *Fighter) float64 {
	return clamp(0.12+f.Weight/30*(-0.15)+float64(f.Stamina-50)/50*0.25, 0.02, 0.5)
}

func statEdge(atk, def game.Stats) float64 {
	return 0.015*float64(atk.Combat-def.Combat) + 0.010*float64(atk.Fitness-def.Fitness)
}

// absorb lets armor soak part of a hit and wears it down by the same amount.
func absorb(f *Fighter, dmg int, class game.WeaponClass) (taken, absorbed int) {
	pct := 0.15
	if class == game.ClassBallistic {
		pct = 0.30
	}
	absorbed = min(f.ArmorCur, int(math.Floor(float64(dmg)*pct+1e-9)))
	f.ArmorCur -= absorbed
	return dmg - absorbed, absorbed
}
