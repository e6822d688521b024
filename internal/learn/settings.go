package learn

import (
	"time"

	"github.com/drakos74/free-learn/infra/config"
	"github.com/drakos74/free-learn/internal/math/ml"
)

// Grid is the size of a kohonen map.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Passes is the default number of training passes per learner.
type Passes struct {
	BackProp int `json:"backprop"`
	Kohonen  int `json:"kohonen"`
}

// Settings holds the defaults of all learners.
type Settings struct {
	BackProp ml.BackPropConfig `json:"backprop"`
	Kohonen  ml.KohonenConfig  `json:"kohonen"`
	Grid     Grid              `json:"grid"`
	Passes   Passes            `json:"passes"`
	Progress int               `json:"progress"`
	Window   int               `json:"window"`
	Yield    time.Duration     `json:"yield"`
	Target   float64           `json:"target"`
	Plateau  float64           `json:"plateau"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		BackProp: ml.DefaultBackPropConfig(),
		Kohonen:  ml.DefaultKohonenConfig(),
		Grid: Grid{
			Rows: 4,
			Cols: 4,
		},
		Passes: Passes{
			BackProp: 2500,
			Kohonen:  20,
		},
		Progress: 100,
		Window:   10,
	}
}

// LoadSettings reads the settings for the given config key on top of the defaults.
func LoadSettings(key string) (Settings, error) {
	settings := DefaultSettings()
	if _, err := config.Load(key, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// Config returns the run config for the given learner.
func (s Settings) Config(learner string) Config {
	cfg := Config{
		Progress: s.Progress,
		Window:   s.Window,
		Yield:    s.Yield,
		Target:   s.Target,
		Plateau:  s.Plateau,
	}
	switch learner {
	case Kohonen:
		cfg.Passes = s.Passes.Kohonen
	default:
		cfg.Passes = s.Passes.BackProp
	}
	return cfg
}
