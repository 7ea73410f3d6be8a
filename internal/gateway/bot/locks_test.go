package bot

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Holders of the same key never overlap, and no increment is lost.
func TestLockTableSerializesSameKey(t *testing.T) {
	table := newLockTable()

	const workers = 32
	var holders atomic.Int32
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.lock("chat-1")
			defer unlock()

			if n := holders.Add(1); n != 1 {
				t.Errorf("%d holders inside the critical section", n)
			}
			counter++
			holders.Add(-1)
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestLockTableIndependentKeys(t *testing.T) {
	table := newLockTable()
	unlock := table.lock("chat-1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		other := table.lock("chat-2")
		other()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent session blocked behind a held lock")
	}
}

func TestLockTableEvictsIdleEntries(t *testing.T) {
	table := newLockTable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.lock("chat-1")
			unlock()
		}()
	}
	wg.Wait()
	table.lock("chat-2")()

	table.mu.Lock()
	left := len(table.locks)
	table.mu.Unlock()
	if left != 0 {
		t.Errorf("%d entries left after all unlocks", left)
	}
}
