package release

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// History is the view of a repository the release run needs.
type History interface {
	Head() (string, error)
	// Subjects returns the subject lines of commits reachable from to but
	// not from from, newest first.
	Subjects(from, to string) ([]string, error)
}

// Repo reads commit history with go-git.
type Repo struct {
	repo *git.Repository
}

// OpenRepo opens the repository containing path, walking up to find the
// .git directory. An empty path means the working directory.
func OpenRepo(path string) (*Repo, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	return ref.Hash().String(), nil
}

func (r *Repo) Subjects(from, to string) ([]string, error) {
	if from == to {
		return nil, nil
	}
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}
	seen := make(map[plumbing.Hash]bool)
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		if err := r.walk(fromHash, func(c *object.Commit) error {
			seen[c.Hash] = true
			return nil
		}); err != nil {
			return nil, err
		}
	}
	var subjects []string
	err = r.walk(toHash, func(c *object.Commit) error {
		if seen[c.Hash] {
			return nil
		}
		if s := subject(c.Message); s != "" {
			subjects = append(subjects, s)
		}
		return nil
	})
	return subjects, err
}

func (r *Repo) resolve(rev string) (plumbing.Hash, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving %s: %w", rev, err)
	}
	return *h, nil
}

func (r *Repo) walk(from plumbing.Hash, fn func(*object.Commit) error) error {
	iter, err := r.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("reading log from %s: %w", from, err)
	}
	defer iter.Close()
	err = iter.ForEach(fn)
	if errors.Is(err, storer.ErrStop) {
		return nil
	}
	return err
}

func subject(msg string) string {
	first, _, _ := strings.Cut(msg, "\n")
	return strings.TrimSpace(first)
}
