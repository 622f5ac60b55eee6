package duel

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Key identifies the channel a duel is played in.
type Key struct {
	GuildID   int64
	ChannelID int64
}

// Expired is a duel the sweeper timed out.
type Expired struct {
	Duel    *Duel
	Outcome Outcome
}

// Registry holds the active duel of every channel. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.Mutex
	duels map[Key]*Duel

	IdleTimeout time.Duration
	now         func() time.Time
	rand        func() *rand.Rand
}

func NewRegistry() *Registry {
	return &Registry{
		duels:       make(map[Key]*Duel),
		IdleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		rand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// StartParams starts a duel between A (the challenger) and B.
type StartParams struct {
	Key  Key
	A, B Combatant
	// Rand seeds the duel. Nil picks a random seed.
	Rand *rand.Rand
}

// Start creates the channel's duel. If B is an AI that won initiative it
// plays its opening turn immediately.
func (r *Registry) Start(p StartParams) (*Duel, Outcome, error) {
	if p.A.UserID == p.B.UserID {
		return nil, Outcome{}, ErrSelfDuel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.duels[p.Key]; ok && cur.Active() {
		return nil, Outcome{}, ErrDuelActive
	}
	rng := p.Rand
	if rng == nil {
		rng = r.rand()
	}
	d, err := New(Config{
		GuildID:   p.Key.GuildID,
		ChannelID: p.Key.ChannelID,
		A:         p.A,
		B:         p.B,
		Rand:      rng,
		Now:       r.now(),
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	out := d.opening()
	if !d.Active() {
		return d, out, nil
	}
	r.duels[p.Key] = d
	slog.Info("duel: started", "guild", p.Key.GuildID, "channel", p.Key.ChannelID,
		"a", p.A.UserID, "b", p.B.UserID, "ai", p.B.AI)
	return d, out, nil
}

// opening lets an AI that moves first take its turn.
func (d *Duel) opening() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := &Outcome{}
	d.out = out
	defer func() { d.out = nil }()
	mark := len(d.log)
	d.runAI()
	out.Lines = append([]string(nil), d.log[mark:]...)
	d.settle(out)
	return *out
}

func (r *Registry) Get(k Key) (*Duel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.duels[k]
	return d, ok
}

// Act forwards an action to the channel's duel and drops the duel once it
// has finished.
func (r *Registry) Act(k Key, actorID int64, a Action) (*Duel, Outcome, error) {
	d, ok := r.Get(k)
	if !ok {
		return nil, Outcome{}, ErrNoDuel
	}
	out, err := d.Act(actorID, a, r.now())
	if err != nil {
		return d, Outcome{}, err
	}
	if out.Finished {
		r.remove(k, d)
	}
	return d, out, nil
}

// Reset force-ends the channel's duel.
func (r *Registry) Reset(k Key) (*Duel, Outcome, error) {
	d, ok := r.Get(k)
	if !ok {
		return nil, Outcome{}, ErrNoDuel
	}
	out, err := d.Reset(r.now())
	r.remove(k, d)
	return d, out, err
}

func (r *Registry) remove(k Key, d *Duel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duels[k] == d {
		delete(r.duels, k)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.duels)
}

// Sweep times out every duel idle for longer than IdleTimeout.
func (r *Registry) Sweep(now time.Time) []Expired {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []Expired
	for k, d := range r.duels {
		out, err := d.TimeoutIdle(now, r.IdleTimeout)
		if errors.Is(err, ErrNotIdle) {
			continue
		}
		delete(r.duels, k)
		if err != nil {
			continue
		}
		expired = append(expired, Expired{Duel: d, Outcome: out})
	}
	return expired
}

// RunSweeper calls Sweep every interval until ctx is done and hands each
// expired duel to fn.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration, fn func(Expired)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, e := range r.Sweep(r.now()) {
				k := e.Duel.Key()
				slog.Info("duel: timed out", "guild", k.GuildID, "channel", k.ChannelID)
				if fn != nil {
					fn(e)
				}
			}
		}
	}
}
