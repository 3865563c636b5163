// Package dashboard computes the trilemma view for a (state, year) selection:
// the generic vector, the ideal vector and the ten formatted angle readouts.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/vector"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Options are the selector choices offered to the user.
type Options struct {
	States  []string            `json:"states"`
	Years   []string            `json:"years"`
	Default indicator.Selection `json:"default"`
}

// Service is the application contract of the dashboard.
type Service interface {
	// Options returns the sorted, de-duplicated state and year choices.
	Options(ctx context.Context) (*Options, error)

	// ComputeView recomputes the view for sel.  The result depends only on
	// sel and the dataset; nothing is cached between calls.
	ComputeView(ctx context.Context, sel indicator.Selection) (*ViewModel, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type serviceImpl struct {
	dataset   Dataset
	publisher EventPublisher
	metrics   MetricsRecorder
	logger    logging.Logger
	now       func() time.Time
}

// NewService constructs a Service.  publisher and metrics may be nil.
func NewService(dataset Dataset, publisher EventPublisher, metrics MetricsRecorder, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		dataset:   dataset,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("dashboard"),
		now:       time.Now,
	}
}

// Options returns the selector choices.
func (s *serviceImpl) Options(_ context.Context) (*Options, error) {
	def, ok := s.dataset.DefaultSelection()
	if !ok {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "dataset holds no state or year")
	}
	return &Options{
		States:  s.dataset.States(),
		Years:   s.dataset.Years(),
		Default: def,
	}, nil
}

// ComputeView builds the ViewModel for sel.
func (s *serviceImpl) ComputeView(ctx context.Context, sel indicator.Selection) (*ViewModel, error) {
	start := s.now()
	log := logging.WithContext(ctx, s.logger).With(
		logging.String(logging.FieldState, sel.State),
		logging.String(logging.FieldYear, sel.Year),
	)

	if err := sel.Validate(); err != nil {
		s.recordView(OutcomeInvalid, start)
		return nil, err
	}
	if !s.dataset.Has(sel.State, sel.Year) {
		s.recordView(OutcomeNoData, start)
		log.Info("no data for selection")
		return nil, errors.New(errors.ErrCodeNoDataForSelection, "no indicator record for selection").
			WithDetail(sel.String())
	}

	generic := vector.New(
		s.dataset.Sum(indicator.DimensionEquity, sel.State, sel.Year),
		s.dataset.Sum(indicator.DimensionSecurity, sel.State, sel.Year),
		s.dataset.Sum(indicator.DimensionEnvironmental, sel.State, sel.Year),
	)

	vm := &ViewModel{
		Selection: sel,
		Title:     ChartTitle(sel.State),
		Generic:   pointOf(generic),
		Ideal:     pointOf(vector.Ideal()),
		Groups:    buildGroups(vector.Angles(generic)),
	}

	undefined := vm.UndefinedKeys()
	for _, key := range undefined {
		if s.metrics != nil {
			s.metrics.RecordUndefinedAngle(key)
		}
	}
	if len(undefined) > 0 {
		log.Debug("view has undefined angles", logging.Any("angles", undefined))
	}

	s.recordView(OutcomeOK, start)
	s.publish(ctx, log, vm, undefined)
	return vm, nil
}

func (s *serviceImpl) recordView(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordView(outcome, s.now().Sub(start))
	}
}

// publish never alters the computed view; failures are only logged.
func (s *serviceImpl) publish(ctx context.Context, log logging.Logger, vm *ViewModel, undefined []string) {
	if s.publisher == nil {
		return
	}
	evt := &ViewComputedEvent{
		EventID:         uuid.New().String(),
		State:           vm.Selection.State,
		Year:            vm.Selection.Year,
		Equity:          vm.Generic.X,
		Security:        vm.Generic.Y,
		Environmental:   vm.Generic.Z,
		UndefinedAngles: undefined,
		ComputedAt:      s.now().UTC(),
	}
	if r, ok := vm.Readout(KeyGenericIdeal); ok && r.Defined() {
		deg := *r.Degrees
		evt.GenericIdealDeg = &deg
	}
	if err := s.publisher.PublishViewComputed(ctx, evt); err != nil {
		log.Warn("failed to publish view event", logging.Err(err))
	}
}

//Personal.AI order the ending
