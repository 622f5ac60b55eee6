// Package release batches commit subjects into versioned release notes.
// Each run queues the commits made since the last run. Once enough have
// piled up it bumps the minor version and writes the notes the update
// poster picks up.
package release

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultThreshold = 10

type Options struct {
	DataDir   string
	Threshold int
	Now       func() time.Time
	Out       io.Writer
}

// EnvOptions reads the threshold from LOWLIFE_CHANGE_THRESHOLD.
func EnvOptions() (Options, error) {
	var e struct {
		Threshold int `env:"LOWLIFE_CHANGE_THRESHOLD" envDefault:"10"`
	}
	if err := env.Parse(&e); err != nil {
		return Options{}, fmt.Errorf("parse release env: %w", err)
	}
	return Options{DataDir: "data", Threshold: e.Threshold}, nil
}

// Result reports what a run did.
type Result struct {
	Initialized bool
	Queued      int
	Total       int
	Released    bool
	OldVersion  string
	NewVersion  string
}

// Run performs one release step against the history h.
func Run(h History, opts Options) (Result, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	path := func(name string) string { return filepath.Join(opts.DataDir, name) }

	state := LoadState(path(StateFile))
	head, err := h.Head()
	if err != nil {
		return Result{}, err
	}

	if state.LastSeen == "" {
		state = State{LastSeen: head}
		if err := SaveState(path(StateFile), state); err != nil {
			return Result{}, err
		}
		fmt.Fprintln(opts.Out, "initialized (no prior state)")
		return Result{Initialized: true}, nil
	}

	subjects, err := h.Subjects(state.LastSeen, head)
	if err != nil {
		return Result{}, err
	}
	if len(subjects) == 0 {
		fmt.Fprintln(opts.Out, "no new commits")
		return Result{}, nil
	}

	queue, err := LoadQueue(path(QueueFile))
	if err != nil {
		return Result{}, err
	}
	queue = append(queue, subjects...)
	if err := SaveQueue(path(QueueFile), queue); err != nil {
		return Result{}, err
	}
	state.QueueCount += len(subjects)
	state.LastSeen = head
	if err := SaveState(path(StateFile), state); err != nil {
		return Result{}, err
	}
	res := Result{Queued: len(subjects), Total: state.QueueCount}
	fmt.Fprintf(opts.Out, "queued %d change(s); total %d/%d\n", len(subjects), state.QueueCount, opts.Threshold)
	if state.QueueCount < opts.Threshold {
		return res, nil
	}

	res.OldVersion = ReadVersion(path(VersionFile))
	res.NewVersion = BumpMinor(res.OldVersion)
	if err := writeFile(path(VersionFile), []byte(res.NewVersion)); err != nil {
		return res, err
	}
	stamp := opts.Now().UTC().Format("*UTC 2006-01-02 15:04*")
	notes := fmt.Sprintf("%s\n\n_%s_", Compose(queue), stamp)
	if err := writeFile(path(NotesFile), []byte(notes)); err != nil {
		return res, err
	}
	if err := SaveQueue(path(QueueFile), nil); err != nil {
		return res, err
	}
	state.QueueCount = 0
	if err := SaveState(path(StateFile), state); err != nil {
		return res, err
	}
	res.Released = true
	fmt.Fprintf(opts.Out, "released %s ➜ %s (%d new, %d total in batch)\n", res.OldVersion, res.NewVersion, len(subjects), len(queue))
	return res, nil
}
