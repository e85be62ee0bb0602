package pantry

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

func TestKeyLocksSerializeSameKey(t *testing.T) {
	locks := newKeyLocks()
	key := shopping.NewKey(uuid.New(), enums.UnitGram)

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(key)
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Zero(t, locks.size(), "released keys are dropped")
}

func TestKeyLocksIndependentKeys(t *testing.T) {
	locks := newKeyLocks()
	id := uuid.New()

	unlockGrams := locks.Lock(shopping.NewKey(id, enums.UnitGram))
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock(shopping.NewKey(id, enums.UnitKilogram))
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different unit blocked")
	}
	unlockGrams()
	assert.Zero(t, locks.size())
}
