package dashboard

import (
	"context"
	"time"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
)

// Dataset is the read side of the indicator table needed by the dashboard.
// *indicator.Table satisfies it.
type Dataset interface {
	indicator.Lookup
	States() []string
	Years() []string
	DefaultSelection() (indicator.Selection, bool)
}

// EventPublisher ships a notification once a view has been computed.
// Implementations must not block the caller on broker I/O.
type EventPublisher interface {
	PublishViewComputed(ctx context.Context, evt *ViewComputedEvent) error
}

// MetricsRecorder receives per-view measurements.
type MetricsRecorder interface {
	RecordView(outcome string, duration time.Duration)
	RecordUndefinedAngle(angle string)
}

// View outcomes reported to MetricsRecorder.
const (
	OutcomeOK      = "ok"
	OutcomeNoData  = "no_data"
	OutcomeInvalid = "invalid"
)

// ViewComputedEvent is published after every successful ComputeView.
type ViewComputedEvent struct {
	EventID         string    `json:"event_id"`
	State           string    `json:"state"`
	Year            string    `json:"year"`
	Equity          float64   `json:"equity"`
	Security        float64   `json:"security"`
	Environmental   float64   `json:"environmental"`
	GenericIdealDeg *float64  `json:"generic_ideal_deg,omitempty"`
	UndefinedAngles []string  `json:"undefined_angles,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

//Personal.AI order the ending
