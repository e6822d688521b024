package learn

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drakos74/free-learn/infra/config"
	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counting is a learner that only tracks the calls made to it.
type counting struct {
	records  int
	steps    int
	passes   int
	displays int
	mode     ml.Mode
	failAt   int
	onPass   func(passes int)
}

func (c *counting) Step() error {
	c.steps++
	if c.failAt > 0 && c.steps == c.failAt {
		return ml.NoDataErr
	}
	if c.steps%c.records == 0 && c.mode == ml.Train {
		c.passes++
		if c.onPass != nil {
			c.onPass(c.passes)
		}
	}
	return nil
}

func (c *counting) Records() int {
	return c.records
}

func (c *counting) Passes() int {
	return c.passes
}

func (c *counting) Error() float64 {
	return 1 / float64(c.passes+1)
}

func (c *counting) SetMode(mode ml.Mode) {
	c.mode = mode
}

func (c *counting) Display() {
	c.displays++
}

func load(t *testing.T, name string) *data.Dataset {
	ds, err := data.Load(name, "../data/testdata/"+name, nil)
	require.NoError(t, err)
	return ds
}

func TestRun(t *testing.T) {

	type test struct {
		learner   *counting
		cfg       Config
		cancelAt  int
		passes    int
		halted    bool
		converged bool
		progress  int
		err       error
	}

	tests := map[string]test{
		"all-passes": {
			learner:  &counting{records: 3},
			cfg:      Config{Passes: 10, Progress: 5},
			passes:   10,
			progress: 2,
		},
		"cancelled": {
			learner:  &counting{records: 3},
			cfg:      Config{Passes: 10},
			cancelAt: 4,
			passes:   4,
			halted:   true,
		},
		"target": {
			learner:   &counting{records: 2},
			cfg:       Config{Passes: 100, Target: 0.1},
			passes:    9,
			converged: true,
		},
		"target-reached": {
			learner:   &counting{records: 2},
			cfg:       Config{Passes: 100, Target: 0.25},
			passes:    3,
			converged: true,
		},
		"target-not-reached": {
			learner: &counting{records: 2},
			cfg:     Config{Passes: 5, Target: 0.01},
			passes:  5,
		},
		"plateau": {
			learner:   &counting{records: 2},
			cfg:       Config{Passes: 1000, Window: 5, Plateau: 0.001},
			converged: true,
		},
		"failure": {
			learner: &counting{records: 3, failAt: 7},
			cfg:     Config{Passes: 10},
			passes:  2,
			err:     ml.NoDataErr,
		},
		"no-records": {
			learner: &counting{},
			cfg:     Config{Passes: 10},
			err:     ml.NoDataErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelAt > 0 {
				tt.learner.onPass = func(passes int) {
					if passes == tt.cancelAt {
						cancel()
					}
				}
			}
			buffer := api.NewBuffer()
			report, err := Run(ctx, name, tt.learner, tt.cfg, buffer)
			assert.Equal(t, ml.Locked, tt.learner.mode)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.passes, report.Passes)
				return
			}
			require.NoError(t, err)
			if tt.passes > 0 {
				assert.Equal(t, tt.passes, report.Passes)
				assert.Equal(t, tt.passes*tt.learner.records, tt.learner.steps)
			}
			assert.Equal(t, tt.halted, report.Halted)
			assert.Equal(t, tt.converged, report.Converged)
			assert.Equal(t, tt.progress, len(buffer.Lines()))
			assert.Equal(t, name, report.Dataset)
			assert.NotEmpty(t, report.ID)
			assert.Equal(t, report.Passes, report.Total)
			assert.Equal(t, tt.learner.Error(), report.Error)
			assert.True(t, report.MinError <= report.AvgError)
			if report.Passes > 0 {
				assert.True(t, report.TrendError >= report.MinError)
				assert.True(t, report.TrendError <= 1/float64(2))
			}
		})
	}
}

func TestRun_Yield(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	learner := &counting{records: 1}
	report, err := Run(ctx, "slow", learner, Config{Passes: 1000, Yield: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	assert.True(t, report.Halted)
	assert.True(t, report.Passes < 1000)
}

func TestRun_XOR(t *testing.T) {
	ds := load(t, "xor")
	cfg := ml.DefaultBackPropConfig()
	cfg.Seed = 1
	bp, err := NewBackProp(ds, 4, cfg, nil)
	require.NoError(t, err)

	in, hidden, out := bp.Topology()
	assert.Equal(t, 2, in)
	assert.Equal(t, 4, hidden)
	assert.Equal(t, 1, out)

	report, err := Run(context.Background(), ds.Name(), bp, Config{Passes: 2500, Window: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, BackProp, report.Learner)
	assert.Equal(t, 2500, report.Passes)
	assert.True(t, bp.IsLocked())
	assert.True(t, report.MinError <= report.Error)
}

func TestEvaluate(t *testing.T) {
	learner := &counting{records: 4}
	buffer := api.NewBuffer()
	require.NoError(t, Evaluate(learner, buffer))
	assert.Equal(t, 4, learner.displays)
	assert.Equal(t, 0, learner.passes)
	assert.Equal(t, []string{"Record 0:", "Record 1:", "Record 2:", "Record 3:"}, buffer.Lines())
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, Config{Passes: 2500, Progress: 100, Window: 10}, s.Config(BackProp))
	assert.Equal(t, 20, s.Config(Kohonen).Passes)
	assert.Equal(t, Grid{Rows: 4, Cols: 4}, s.Grid)
}

func TestLoadSettings(t *testing.T) {
	dir := config.Dir
	config.Dir = t.TempDir()
	defer func() {
		config.Dir = dir
	}()

	require.NoError(t, os.WriteFile(filepath.Join(config.Dir, "early.json"),
		[]byte(`{"passes": {"kohonen": 40}, "target": 0.05, "plateau": 0.001, "yield": 1000000}`), 0644))

	s, err := LoadSettings("early")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Passes:   40,
		Progress: 100,
		Window:   10,
		Yield:    time.Millisecond,
		Target:   0.05,
		Plateau:  0.001,
	}, s.Config(Kohonen))
	assert.Equal(t, 2500, s.Config(BackProp).Passes)
	assert.Equal(t, 0.05, s.Config(BackProp).Target)

	_, err = LoadSettings("unknown")
	assert.Error(t, err)
}
