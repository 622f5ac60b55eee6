package game

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const minItemWeight = 0.05

// Instance is a concrete item owned by a player.
type Instance struct {
	ID        string    `json:"inst_id"`
	DefID     string    `json:"def_id"`
	Name      string    `json:"name"`
	Type      ItemType  `json:"type"`
	Slot      Slot      `json:"slot,omitempty"`
	FitSlots  []Slot    `json:"fit_slots"`
	Weight    float64   `json:"weight"`
	Value     int       `json:"value"`
	Tier      Tier      `json:"tier"`
	Tags      []string  `json:"tags"`
	Mods      Mods      `json:"mods"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

func (i Instance) Fits(s Slot) bool {
	return slices.Contains(i.FitSlots, s)
}

func (i Instance) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// NewInstanceID returns 10 hex characters taken from a random UUID.
func NewInstanceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// NewSeed returns a seed in the non-negative int32 range.
func NewSeed() int64 {
	return rand.Int64N(math.MaxInt32)
}

// Instantiate rolls an instance of defID at the given tier. The same seed
// always produces the same name, weight, value and mods.
func (c *Catalog) Instantiate(defID string, tier Tier, seed int64) (Instance, error) {
	tmpl, ok := c.templates[defID]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownItem, defID)
	}
	ti := tier.index()
	if ti < 0 {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	weight := tmpl.BaseWeight
	value := tmpl.BaseValue
	mods := tmpl.Mods.clone()
	var applied []string
	for range tier.affixCount() {
		a, ok := c.pickAffix(rng, ti)
		if !ok {
			break
		}
		weight = max(minItemWeight, weight+a.WeightDelta)
		value = int(math.Round(float64(value) * a.ValueMult))
		for k, v := range a.Mods {
			mods[k] += v
		}
		applied = append(applied, a.Name)
	}

	name := tmpl.Name
	if len(applied) > 0 {
		name = fmt.Sprintf("%s (%s)", name, strings.Join(applied, ", "))
	}
	return Instance{
		ID:        NewInstanceID(),
		DefID:     defID,
		Name:      name,
		Type:      tmpl.Type,
		Slot:      tmpl.Slot,
		FitSlots:  slices.Clone(tmpl.FitSlots),
		Weight:    math.Round(weight*100) / 100,
		Value:     value,
		Tier:      tier,
		Tags:      slices.Clone(tmpl.Tags),
		Mods:      mods,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (c *Catalog) pickAffix(rng *rand.Rand, tierIndex int) (Affix, bool) {
	total := 0
	for _, a := range c.affixes {
		total += a.Weights[tierIndex]
	}
	if total <= 0 {
		return Affix{}, false
	}
	roll := rng.IntN(total)
	upto := 0
	for _, a := range c.affixes {
		if upto+a.Weights[tierIndex] > roll {
			return a, true
		}
		upto += a.Weights[tierIndex]
	}
	return c.affixes[len(c.affixes)-1], true
}

// Hostage builds the item a victor receives after a kidnap finisher.
func Hostage(targetID int64, targetName string) Instance {
	return Instance{
		ID:        NewInstanceID(),
		DefID:     "hostage",
		Name:      "Hostage: " + targetName,
		Type:      TypeHostage,
		FitSlots:  []Slot{},
		Weight:    0,
		Tier:      TierCommon,
		Tags:      []string{"hostage", fmt.Sprintf("target:%d", targetID)},
		Mods:      Mods{},
		CreatedAt: time.Now().UTC(),
	}
}
