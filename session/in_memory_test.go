package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func result(id string) *agent.Result {
	return &agent.Result{
		SessionID: id,
		Status:    agent.StatusDone,
		Answer:    "Answer: " + id,
		Messages:  []core.Message{{Role: core.RoleSystem, Content: "sys"}},
	}
}

func TestInMemoryStore_SaveGet(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.Save(result("a")))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Answer: a", got.Answer)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	s := NewInMemoryStore()
	orig := result("a")
	require.NoError(t, s.Save(orig))

	orig.Messages[0].Content = "mutated"
	got, _ := s.Get("a")
	assert.Equal(t, "sys", got.Messages[0].Content)

	got.Messages[0].Content = "mutated again"
	again, _ := s.Get("a")
	assert.Equal(t, "sys", again.Messages[0].Content)
}

func TestInMemoryStore_RejectsMissingID(t *testing.T) {
	s := NewInMemoryStore()
	assert.Error(t, s.Save(nil))
	assert.Error(t, s.Save(&agent.Result{}))
}

func TestInMemoryStore_ListOrderAndLimit(t *testing.T) {
	s := NewInMemoryStore(func(o *InMemoryOptions) { o.Limit = 2 })
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(result(id)))
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].SessionID)
	assert.Equal(t, "c", list[1].SessionID)

	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save(result(fmt.Sprintf("s-%d", i))))
			_, _ = s.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
