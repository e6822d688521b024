package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-learn/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type model struct {
	Weights []float64 `json:"weights"`
	Passes  int       `json:"passes"`
}

func TestPersistence(t *testing.T) {

	type test struct {
		shard storage.Shard
	}

	root := t.TempDir()

	tests := map[string]test{
		"blob": {
			shard: BlobShardAt(root, storage.ModelsDir),
		},
		"local": {
			shard: LocalShard(),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store, err := tt.shard("xor")
			require.NoError(t, err)

			k := storage.Key{Dataset: "xor", Learner: "backprop", Label: name}
			m := model{Weights: []float64{0.1, -0.2, 0.3}, Passes: 2500}
			require.NoError(t, store.Store(k, m))

			var loaded model
			require.NoError(t, store.Load(k, &loaded))
			assert.Equal(t, m, loaded)

			err = store.Load(storage.Key{Dataset: "xor", Learner: "kohonen"}, &loaded)
			assert.ErrorIs(t, err, storage.NotFoundErr)
		})
	}

	_, err := os.Stat(filepath.Join(root, storage.ModelsDir, "xor", "xor_backprop_blob.json"))
	assert.NoError(t, err)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	var m model
	err := Load(dir, "broken", &m)
	assert.ErrorIs(t, err, storage.CouldNotLoadErr)
}

func TestLocalStorage_Paths(t *testing.T) {
	store, err := LocalShard()("xor")
	require.NoError(t, err)

	require.NoError(t, store.Store(storage.Key{Dataset: "xor", Learner: "kohonen"}, model{}))
	require.NoError(t, store.Store(storage.Key{Dataset: "xor", Learner: "backprop", Label: "model"}, model{}))

	local, ok := store.(*LocalStorage)
	require.True(t, ok)
	assert.Equal(t, []string{"xor_backprop_model", "xor_kohonen"}, local.Paths())
}
