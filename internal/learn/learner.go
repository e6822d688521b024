package learn

import (
	"fmt"
	"time"

	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/google/uuid"
)

const (
	BackProp = "backprop"
	Kohonen  = "kohonen"
	Tree     = "tree"
)

// Learner is a network that can be trained one record at a time.
type Learner interface {
	Step() error
	Records() int
	Passes() int
	Error() float64
	SetMode(mode ml.Mode)
	Display()
}

// Config controls a training run.
// Progress is the number of passes between progress marks, 0 disables them.
// Window is the number of recent pass errors kept for plateau detection.
// Target stops the run early once the pass error is at or below it, 0 disables it.
// Plateau stops the run early once the recent errors vary less than it, 0 disables it.
type Config struct {
	Passes   int           `json:"passes"`
	Progress int           `json:"progress"`
	Yield    time.Duration `json:"yield"`
	Window   int           `json:"window"`
	Target   float64       `json:"target"`
	Plateau  float64       `json:"plateau"`
}

// Report summarises a training run.
// TrendError is the exponential moving average of the pass errors.
type Report struct {
	ID         string        `json:"id"`
	Dataset    string        `json:"dataset"`
	Learner    string        `json:"learner"`
	Start      time.Time     `json:"start"`
	Duration   time.Duration `json:"duration"`
	Passes     int           `json:"passes"`
	Total      int           `json:"total"`
	Halted     bool          `json:"halted"`
	Converged  bool          `json:"converged"`
	Error      float64       `json:"error"`
	MinError   float64       `json:"min_error"`
	AvgError   float64       `json:"avg_error"`
	TrendError float64       `json:"trend_error"`
	Accuracy   float64       `json:"accuracy,omitempty"`
}

// NewReport creates an empty report with a new run id.
func NewReport(dataset, learner string) Report {
	return Report{
		ID:      uuid.New().String(),
		Dataset: dataset,
		Learner: learner,
		Start:   time.Now(),
	}
}

func (r Report) String() string {
	txt := fmt.Sprintf("%s on %s: %d passes (%d total) error %.4f [min %.4f avg %.4f trend %.4f] in %v halted=%v converged=%v",
		r.Learner, r.Dataset, r.Passes, r.Total, r.Error, r.MinError, r.AvgError, r.TrendError, r.Duration, r.Halted, r.Converged)
	if r.Accuracy > 0 {
		txt += fmt.Sprintf(" accuracy=%.4f", r.Accuracy)
	}
	return txt
}

// Kind returns the name of the learner implementation.
func Kind(learner Learner) string {
	switch learner.(type) {
	case *ml.BackProp:
		return BackProp
	case *ml.Kohonen:
		return Kohonen
	default:
		return fmt.Sprintf("%T", learner)
	}
}
