package state

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestToggleSlot(t *testing.T) {
	m := NewManager()
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{a}, m.ToggleSlot(1, a))
	assert.Equal(t, []uuid.UUID{a, b}, m.ToggleSlot(1, b))
	assert.Equal(t, []uuid.UUID{b}, m.ToggleSlot(1, a))
	assert.Empty(t, m.ToggleSlot(1, b))

	// пустой диалог удаляется
	assert.Equal(t, Dialog{}, m.Get(1))
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager()
	m.ToggleSlot(1, uuid.New())

	d := m.Get(1)
	d.Selected[0] = uuid.Nil

	assert.NotEqual(t, uuid.Nil, m.Get(1).Selected[0])
}

func TestStateSurvivesSelectionClear(t *testing.T) {
	m := NewManager()
	m.SetState(1, StateChooseReschedule)
	m.ToggleSlot(1, uuid.New())

	m.ClearSelection(1)
	assert.Equal(t, StateChooseReschedule, m.GetState(1))

	m.ClearState(1)
	assert.Equal(t, StateNone, m.GetState(1))
}

func TestConcurrentToggle(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ToggleSlot(7, uuid.New())
		}()
	}
	wg.Wait()

	assert.Len(t, m.Get(7).Selected, 50)
}
