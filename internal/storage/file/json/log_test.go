package json

import (
	"testing"

	"github.com/drakos74/free-learn/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Event struct {
	Name  string  `json:"name"`
	ID    string  `json:"id"`
	Index int     `json:"index"`
	Error float64 `json:"error"`
}

func newEvent(i int) Event {
	return Event{
		Name:  "test",
		ID:    uuid.New().String(),
		Index: i,
		Error: 1 / float64(i+1),
	}
}

func TestLogger_Add(t *testing.T) {

	logger := NewLogger("test").WithPath(t.TempDir())

	k := storage.K{
		Dataset: "xor",
		Learner: "backprop",
	}

	events := make([]Event, 0)
	for i := 0; i < 10; i++ {
		ev := newEvent(i)
		events = append(events, ev)
		err := logger.Add(k, ev)
		assert.NoError(t, err)
	}

	var loadedEvents []Event
	err := logger.GetAll(k, &loadedEvents)
	require.NoError(t, err)
	assert.Equal(t, events, loadedEvents)

	var other []Event
	err = logger.GetAll(storage.K{Dataset: "xor", Learner: "kohonen"}, &other)
	assert.ErrorIs(t, err, storage.NotFoundErr)

	err = logger.GetAll(k, loadedEvents)
	assert.Error(t, err)
}
