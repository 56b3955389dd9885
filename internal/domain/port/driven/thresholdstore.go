package driven

import (
	"context"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// ThresholdStore defines the driven port for alert threshold persistence.
type ThresholdStore interface {
	// Load returns the persisted thresholds. When no record exists it persists
	// model.DefaultThresholds() and returns them, so repeated calls are idempotent.
	Load(ctx context.Context) (model.Thresholds, error)

	// Save overwrites the persisted thresholds. Callers validate before saving.
	Save(ctx context.Context, thresholds model.Thresholds) error
}
