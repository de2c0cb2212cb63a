package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

// rewriteUntil keeps writing to p until cond holds or the deadline passes.
// The watcher is added asynchronously, so a single write could be missed.
func rewriteUntil(t *testing.T, p string, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeFile(t, p, "changed\n")
		time.Sleep(2*Settle + 50*time.Millisecond)
		if cond() {
			return true
		}
	}
	return false
}

func TestFile_ReloadsOnWrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "case.yaml")
	writeFile(t, p, "initial\n")

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- File(ctx, p, func() error {
			calls.Add(1)
			return nil
		})
	}()

	if !rewriteUntil(t, p, func() bool { return calls.Load() > 0 }) {
		t.Fatal("reload was never called")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("File returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("File did not return after cancel")
	}
}

func TestFile_KeepsWatchingAfterReloadError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "case.yaml")
	writeFile(t, p, "initial\n")

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go File(ctx, p, func() error { //nolint:errcheck
		calls.Add(1)
		return errors.New("bad yaml")
	})

	if !rewriteUntil(t, p, func() bool { return calls.Load() >= 2 }) {
		t.Fatalf("reload called %d times, want the watch to survive errors", calls.Load())
	}
}

func TestFile_MissingPath(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"), func() error { return nil })
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestFile_WaitsForWritesToSettle(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "initial\n")

	var (
		mu    sync.Mutex
		reads []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go File(ctx, p, func() error { //nolint:errcheck
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		mu.Lock()
		reads = append(reads, string(data))
		mu.Unlock()
		return nil
	})

	seen := func(want string) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(reads) > 0 && reads[len(reads)-1] == want
		}
	}
	if !rewriteUntil(t, p, seen("changed\n")) {
		t.Fatal("reload was never called")
	}

	// A burst of truncating writes must reload once the file is whole.
	for i := 0; i < 20; i++ {
		writeFile(t, p, strings.Repeat("x", i+1)+"\n")
	}
	writeFile(t, p, "final\n")

	deadline := time.Now().Add(5 * time.Second)
	for !seen("final\n")() {
		if time.Now().After(deadline) {
			t.Fatal("reload never observed the final content")
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, r := range reads {
		if r == "" {
			t.Errorf("reload %d read an empty file", i)
		}
	}
}
