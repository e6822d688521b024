package learn

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/rs/zerolog/log"
)

// ModelLabel is the storage label of the latest trained model.
const ModelLabel = "model"

// ModelKey returns the storage key for the model of the learner on the dataset.
func ModelKey(dataset, learner string) storage.Key {
	return storage.Key{
		Dataset: dataset,
		Learner: learner,
		Label:   ModelLabel,
	}
}

// Save stores a snapshot of the learner.
func Save(store storage.Persistence, dataset string, learner Learner) error {
	kind := Kind(learner)
	var snapshot interface{}
	switch l := learner.(type) {
	case *ml.BackProp:
		snapshot = l.Snapshot()
	case *ml.Kohonen:
		snapshot = l.Snapshot()
	default:
		return fmt.Errorf("cannot save learner of type %s", kind)
	}
	if err := store.Store(ModelKey(dataset, kind), snapshot); err != nil {
		return fmt.Errorf("could not save %s model for '%s': %w", kind, dataset, err)
	}
	log.Info().Str("dataset", dataset).Str("learner", kind).Msg("saved model")
	return nil
}

// Restore loads the stored snapshot into the learner.
// The learner keeps its data, the snapshot topology must match it.
func Restore(store storage.Persistence, dataset string, learner Learner) error {
	kind := Kind(learner)
	key := ModelKey(dataset, kind)
	switch l := learner.(type) {
	case *ml.BackProp:
		var snapshot ml.BackPropSnapshot
		if err := store.Load(key, &snapshot); err != nil {
			return fmt.Errorf("could not load %s model for '%s': %w", kind, dataset, err)
		}
		if err := l.Restore(snapshot); err != nil {
			return fmt.Errorf("could not restore %s model for '%s': %w", kind, dataset, err)
		}
	case *ml.Kohonen:
		var snapshot ml.KohonenSnapshot
		if err := store.Load(key, &snapshot); err != nil {
			return fmt.Errorf("could not load %s model for '%s': %w", kind, dataset, err)
		}
		if err := l.Restore(snapshot); err != nil {
			return fmt.Errorf("could not restore %s model for '%s': %w", kind, dataset, err)
		}
	default:
		return fmt.Errorf("cannot restore learner of type %s", kind)
	}
	log.Info().Str("dataset", dataset).Str("learner", kind).Int("records", learner.Records()).Msg("restored model")
	return nil
}

// Journal appends the report to the run journal of its dataset and learner.
func Journal(journal storage.Journal, report Report) error {
	return journal.Add(storage.K{
		Dataset: report.Dataset,
		Learner: report.Learner,
	}, report)
}
