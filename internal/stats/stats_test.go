package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, _, ok := s.Get(1)
	assert.False(t, ok)

	assert.Equal(t, 1, s.Increment(1, "alice"))
	assert.Equal(t, 2, s.Increment(1, "alice"))

	username, count, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
	assert.Equal(t, 2, count)
}

func TestMemoryStoreKeepsLastUsername(t *testing.T) {
	s := NewMemoryStore()
	s.Increment(1, "old")
	s.Increment(1, "")
	s.Increment(1, "new")

	username, count, _ := s.Get(1)
	assert.Equal(t, "new", username, "empty usernames never overwrite")
	assert.Equal(t, 3, count)
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Increment(7, "bob")
		}()
	}
	wg.Wait()

	_, count, _ := s.Get(7)
	assert.Equal(t, 50, count)
}
