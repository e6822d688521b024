package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "valid.json"), []byte(`{"passes":10}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"passes":`), 0644))

	original := Dir
	Dir = dir
	defer func() {
		Dir = original
	}()

	type settings struct {
		Passes int `json:"passes"`
	}

	type test struct {
		key    string
		passes int
		err    bool
	}

	tests := map[string]test{
		"valid":   {key: "valid", passes: 10},
		"broken":  {key: "broken", err: true},
		"missing": {key: "missing", err: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s settings
			_, err := Load(tt.key, &s)
			if tt.err {
				assert.Error(t, err)
				assert.Panics(t, func() {
					MustLoad(tt.key, &s)
				})
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.passes, s.Passes)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	original := Dir
	Dir = "."
	defer func() {
		Dir = original
	}()

	var s map[string]interface{}
	MustLoad("learn", &s)
	assert.Contains(t, s, "backprop")
	assert.Contains(t, s, "kohonen")
	assert.Contains(t, s, "passes")
}
