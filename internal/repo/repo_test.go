package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestList_Entries verifies that exactly the non-excluded files appear, each
// once, as root-relative paths.
func TestList_Entries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "greeting.txt", "hi")
	writeFile(t, root, "sub/address.md", "somewhere")
	writeFile(t, root, ".gitignore", "*")
	writeFile(t, root, ".git/config", "[core]")
	writeFile(t, root, ".DS_Store", "")

	entries, err := List(root, Options{IncludeAll: true, Alpha: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"greeting.txt", filepath.Join("sub", "address.md")}
	if len(entries) != len(want) {
		t.Fatalf("got %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entries[i], want[i])
		}
	}
}

// TestList_TextOnly verifies the extension allow-list filter.
func TestList_TextOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "note.txt", "x")
	writeFile(t, root, "binary.png", "x")

	entries, err := List(root, Options{IncludeAll: false})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0] != "note.txt" {
		t.Errorf("got %v, want [note.txt]", entries)
	}
}

// TestList_EmptyDistinction verifies that "no files at all" and "files all
// filtered out" are the same error kind with different messages.
func TestList_EmptyDistinction(t *testing.T) {
	empty := t.TempDir()
	_, err := List(empty, Options{IncludeAll: true})
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("empty dir: got %v, want ErrNoEntries", err)
	}
	if !strings.Contains(err.Error(), "no files") {
		t.Errorf("empty dir message: %v", err)
	}

	filtered := t.TempDir()
	writeFile(t, filtered, "binary.png", "x")
	_, err = List(filtered, Options{IncludeAll: false})
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("filtered dir: got %v, want ErrNoEntries", err)
	}
	if !strings.Contains(err.Error(), "filter") {
		t.Errorf("filtered dir message: %v", err)
	}
}

// TestList_BadRoot verifies missing and non-directory roots fail the same way.
func TestList_BadRoot(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "absent"), Options{}); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("missing root: got %v, want ErrNotDirectory", err)
	}
	file := writeFile(t, t.TempDir(), "f.txt", "x")
	if _, err := List(file, Options{}); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file root: got %v, want ErrNotDirectory", err)
	}
}

// TestList_Ordering verifies newest-first default order and forced
// lexicographic order.
func TestList_Ordering(t *testing.T) {
	root := t.TempDir()
	older := writeFile(t, root, "aaa-old.txt", "x")
	newer := writeFile(t, root, "zzz-new.txt", "x")

	base := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, base, base); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	entries, err := List(root, Options{IncludeAll: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0] != "zzz-new.txt" || entries[1] != "aaa-old.txt" {
		t.Errorf("default order: got %v, want newest first", entries)
	}

	entries, err = List(root, Options{IncludeAll: true, Alpha: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0] != "aaa-old.txt" || entries[1] != "zzz-new.txt" {
		t.Errorf("alpha order: got %v, want lexicographic", entries)
	}
}

// TestList_OrderingTies verifies lexicographic tie-break for equal mtimes.
func TestList_OrderingTies(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "b.txt", "x")
	b := writeFile(t, root, "a.txt", "x")
	ts := time.Now().Add(-time.Hour)
	for _, p := range []string{a, b} {
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := List(root, Options{IncludeAll: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0] != "a.txt" || entries[1] != "b.txt" {
		t.Errorf("tie-break: got %v, want [a.txt b.txt]", entries)
	}
}

// TestResolve_TraversalGuard verifies that, with symlink following disabled,
// an entry escaping the root is rejected before any content is read.
func TestResolve_TraversalGuard(t *testing.T) {
	outside := t.TempDir()
	secret := writeFile(t, outside, "secret.txt", "s")

	root := t.TempDir()
	writeFile(t, root, "ok.txt", "x")
	link := filepath.Join(root, "escape.txt")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := Resolve(root, "escape.txt", false); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("no-follow escape: got %v, want ErrOutsideRoot", err)
	}
	if _, err := Resolve(root, "ok.txt", false); err != nil {
		t.Errorf("no-follow inside root: %v", err)
	}
	if _, err := Resolve(root, "escape.txt", true); err != nil {
		t.Errorf("follow escape: %v", err)
	}
}

// TestList_SymlinkEntries verifies symlinked files are listed; the escape
// check happens at selection time, not listing time.
func TestList_SymlinkEntries(t *testing.T) {
	outside := t.TempDir()
	target := writeFile(t, outside, "target.txt", "x")

	root := t.TempDir()
	writeFile(t, root, "plain.txt", "x")
	if err := os.Symlink(target, filepath.Join(root, "linked.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	entries, err := List(root, Options{IncludeAll: true, Alpha: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %v, want both plain.txt and linked.txt", entries)
	}
}

// TestList_SymlinkedDirDescent verifies following is a listing concern too:
// files behind a symlinked subdirectory appear, named under the link, only
// when following is enabled.
func TestList_SymlinkedDirDescent(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "inside.txt", "x")

	root := t.TempDir()
	writeFile(t, root, "plain.txt", "x")
	if err := os.Symlink(outside, filepath.Join(root, "sub")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	entries, err := List(root, Options{FollowSymlinks: true, IncludeAll: true, Alpha: true})
	if err != nil {
		t.Fatalf("List(follow): %v", err)
	}
	want := []string{"plain.txt", filepath.Join("sub", "inside.txt")}
	if len(entries) != len(want) || entries[0] != want[0] || entries[1] != want[1] {
		t.Errorf("follow: got %v, want %v", entries, want)
	}

	entries, err = List(root, Options{IncludeAll: true, Alpha: true})
	if err != nil {
		t.Fatalf("List(no-follow): %v", err)
	}
	if len(entries) != 1 || entries[0] != "plain.txt" {
		t.Errorf("no-follow: got %v, want [plain.txt]", entries)
	}
}

// TestList_SymlinkCycle verifies a directory link pointing back into an
// already-walked tree terminates and lists each file once.
func TestList_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	entries, err := List(root, Options{FollowSymlinks: true, IncludeAll: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0] != "a.txt" {
		t.Errorf("got %v, want [a.txt]", entries)
	}
}
