package sheet

import (
	"sync"
	"testing"
	"time"
)

func TestFairMutexMutualExclusion(t *testing.T) {
	m := newFairMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 8000 {
		t.Fatalf("expected 8000 increments, got %d", counter)
	}
}

func TestFairMutexReaderNotStarvedByWriterBurst(t *testing.T) {
	m := newFairMutex()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Writers loop, never releasing the lock for long.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m.Lock()
				m.Unlock()
			}
		}()
	}

	// The reader must still get through in bounded time.
	acquired := make(chan struct{})
	go func() {
		m.Lock()
		m.Unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("reader starved: failed to acquire lock under writer burst")
	}
	close(stop)
	wg.Wait()
}

func TestFairMutexUnlockWithoutLockPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unlock of unlocked mutex")
		}
	}()
	newFairMutex().Unlock()
}
