package release

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"
)

type fakeHistory struct {
	head     string
	subjects map[string][]string
}

func (f *fakeHistory) Head() (string, error) { return f.head, nil }

func (f *fakeHistory) Subjects(from, to string) ([]string, error) {
	return f.subjects[from+".."+to], nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(raw)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	opts := Options{
		DataDir:   dir,
		Threshold: 3,
		Now:       func() time.Time { return time.Date(2025, 9, 12, 10, 4, 0, 0, time.UTC) },
		Out:       &out,
	}
	h := &fakeHistory{head: "a", subjects: map[string][]string{
		"a..b": {"feat: grenades", "fix: stamina"},
		"b..c": {"tweak: damage"},
	}}

	res, err := Run(h, opts)
	if err != nil || !res.Initialized {
		t.Fatalf("first Run = %+v, %v", res, err)
	}
	if s := LoadState(filepath.Join(dir, StateFile)); s.LastSeen != "a" || s.QueueCount != 0 {
		t.Errorf("state after init = %+v", s)
	}

	res, err = Run(h, opts)
	if err != nil || res != (Result{}) {
		t.Fatalf("no-op Run = %+v, %v", res, err)
	}

	h.head = "b"
	res, err = Run(h, opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Result{Queued: 2, Total: 2}, res); diff != "" {
		t.Errorf("queue Run (-want +got):\n%s", diff)
	}
	if q, _ := LoadQueue(filepath.Join(dir, QueueFile)); len(q) != 2 {
		t.Errorf("queue = %q", q)
	}

	h.head = "c"
	res, err = Run(h, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := Result{Queued: 1, Total: 3, Released: true, OldVersion: "0.1", NewVersion: "0.2"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("release Run (-want +got):\n%s", diff)
	}
	if v := readFile(t, filepath.Join(dir, VersionFile)); v != "0.2" {
		t.Errorf("version = %q", v)
	}
	notes := readFile(t, filepath.Join(dir, NotesFile))
	wantNotes := "**✨ Features**\n• grenades\n**🐞 Fixes**\n• stamina\n**⚖️ Balance**\n• damage\n\n_*UTC 2025-09-12 10:04*_"
	if notes != wantNotes {
		t.Errorf("notes =\n%s", notes)
	}
	if q := readFile(t, filepath.Join(dir, QueueFile)); q != "" {
		t.Errorf("queue not reset: %q", q)
	}
	if s := LoadState(filepath.Join(dir, StateFile)); s.QueueCount != 0 || s.LastSeen != "c" {
		t.Errorf("state after release = %+v", s)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	wantOut := []string{
		"initialized (no prior state)",
		"no new commits",
		"queued 2 change(s); total 2/3",
		"queued 1 change(s); total 3/3",
		"released 0.1 ➜ 0.2 (1 new, 3 total in batch)",
	}
	if diff := cmp.Diff(wantOut, lines); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestBumpMinor(t *testing.T) {
	tests := map[string]string{
		"0.1":       "0.2",
		"1.9":       "1.10",
		"2.3.7":     "2.4",
		" 4.0-beta": "4.1",
		"v1.2":      "0.1",
		"":          "0.1",
	}
	for in, want := range tests {
		if got := BumpMinor(in); got != want {
			t.Errorf("BumpMinor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadVersionAndState(t *testing.T) {
	dir := t.TempDir()
	if v := ReadVersion(filepath.Join(dir, VersionFile)); v != "0.1" {
		t.Errorf("missing version = %q", v)
	}
	if err := os.WriteFile(filepath.Join(dir, VersionFile), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if v := ReadVersion(filepath.Join(dir, VersionFile)); v != "0.1" {
		t.Errorf("empty version = %q", v)
	}
	statePath := filepath.Join(dir, StateFile)
	if err := os.WriteFile(statePath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s := LoadState(statePath); s != (State{}) {
		t.Errorf("corrupt state = %+v", s)
	}
	if err := SaveState(statePath, State{LastSeen: "abc", QueueCount: 4}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, statePath); got != "{\n  \"last_seen\": \"abc\",\n  \"queue_count\": 4\n}" {
		t.Errorf("state file = %q", got)
	}
}

func commit(t *testing.T, repo *git.Repository, dir, msg string, when time.Time) string {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "log.txt"), []byte(msg), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("log.txt"); err != nil {
		t.Fatal(err)
	}
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: when},
	})
	if err != nil {
		t.Fatal(err)
	}
	return h.String()
}

func TestRepoSubjects(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	first := commit(t, repo, dir, "chore: init", base)
	commit(t, repo, dir, "feat: grenades\n\nlonger body", base.Add(time.Hour))
	last := commit(t, repo, dir, "fix: stamina", base.Add(2*time.Hour))

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := OpenRepo(sub)
	if err != nil {
		t.Fatalf("OpenRepo: %v", err)
	}
	head, err := r.Head()
	if err != nil || head != last {
		t.Fatalf("Head = %q, %v; want %q", head, err, last)
	}
	got, err := r.Subjects(first, head)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fix: stamina", "feat: grenades"}, got); diff != "" {
		t.Errorf("Subjects (-want +got):\n%s", diff)
	}
	if got, _ := r.Subjects(head, head); len(got) != 0 {
		t.Errorf("same range = %q", got)
	}
	if _, err := r.Subjects("deadbeef", head); err == nil {
		t.Error("unknown revision should fail")
	}
}
