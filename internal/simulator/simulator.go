// Package simulator computes the CHF payment range of a personal loan and keeps
// the last result in session storage for the application wizard.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/loans"
	"github.com/iwvelando/credit-wizard/pkg/mathutil"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

// ErrOutOfRange is returned when amount or duration fall outside the simulator bounds.
var ErrOutOfRange = errors.New("simulation input out of range")

// Input holds the four values the visitor controls.
type Input struct {
	Amount         float64 `json:"amount"`
	DurationMonths int     `json:"durationMonths"`
	HasGuarantee   bool    `json:"hasGuarantee"`
	HasProperty    bool    `json:"hasProperty"`
}

// Result holds the derived payment range.
type Result struct {
	MinRate           float64   `json:"minRate"`
	MaxRate           float64   `json:"maxRate"`
	MinMonthlyPayment float64   `json:"minMonthlyPayment"`
	MaxMonthlyPayment float64   `json:"maxMonthlyPayment"`
	GuaranteeFee      float64   `json:"guaranteeFee"`
	TotalMinRepayment float64   `json:"totalMinRepayment"`
	TotalMaxRepayment float64   `json:"totalMaxRepayment"`
	ComputedAt        time.Time `json:"computedAt"`
}

// Snapshot is what gets persisted for the wizard: the input and its result.
type Snapshot struct {
	Input
	Result
}

// DefaultInput seeds a simulation when nothing was chosen yet.
func DefaultInput() Input {
	return Input{
		Amount:         constants.DefaultLoanAmount,
		DurationMonths: constants.DefaultDurationMonths,
	}
}

// Validate rejects amounts and durations outside the bounds.
func (in Input) Validate() error {
	if !mathutil.InRange(in.Amount, constants.MinLoanAmount, constants.MaxLoanAmount) {
		return fmt.Errorf("%w: amount %.2f not in [%.0f, %.0f]", ErrOutOfRange,
			in.Amount, constants.MinLoanAmount, constants.MaxLoanAmount)
	}
	if in.DurationMonths < constants.MinDurationMonths || in.DurationMonths > constants.MaxDurationMonths {
		return fmt.Errorf("%w: duration %d not in [%d, %d]", ErrOutOfRange,
			in.DurationMonths, constants.MinDurationMonths, constants.MaxDurationMonths)
	}
	return nil
}

// Calculate computes the payment range for in. The guarantee fee is a flat
// monthly surcharge on top of the amortized payment.
func Calculate(tariff Tariff, in Input, now time.Time) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	band := tariff.Band(in.HasProperty)
	fee := 0.0
	if in.HasGuarantee {
		fee = mathutil.Round(in.Amount * tariff.GuaranteeFactor(in.HasProperty))
	}

	minPayment := mathutil.Round(loans.CalculateMonthlyPayment(in.Amount, band.Min, in.DurationMonths) + fee)
	maxPayment := mathutil.Round(loans.CalculateMonthlyPayment(in.Amount, band.Max, in.DurationMonths) + fee)

	return Result{
		MinRate:           band.Min,
		MaxRate:           band.Max,
		MinMonthlyPayment: minPayment,
		MaxMonthlyPayment: maxPayment,
		GuaranteeFee:      fee,
		TotalMinRepayment: mathutil.Round(loans.TotalRepayment(minPayment, in.DurationMonths)),
		TotalMaxRepayment: mathutil.Round(loans.TotalRepayment(maxPayment, in.DurationMonths)),
		ComputedAt:        now,
	}, nil
}

// Recorder observes completed simulations.
type Recorder interface {
	SimulationComputed(hasProperty, hasGuarantee bool)
}

// Simulator runs simulations for one session and persists the snapshot.
type Simulator struct {
	store    session.Store
	tariff   Tariff
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// New creates a Simulator over a session-scoped store.
func New(store session.Store, tariff Tariff, logger *zap.Logger, opts ...Option) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simulator{store: store, tariff: tariff, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tariff returns the tariff in use.
func (s *Simulator) Tariff() Tariff {
	return s.tariff
}

// Simulate computes the result and overwrites the session snapshot. Invalid
// input leaves the previous snapshot untouched.
func (s *Simulator) Simulate(ctx context.Context, in Input) (Result, error) {
	result, err := Calculate(s.tariff, in, s.now())
	if err != nil {
		return Result{}, err
	}

	data, err := json.Marshal(Snapshot{Input: in, Result: result})
	if err != nil {
		return Result{}, fmt.Errorf("encode simulation snapshot: %w", err)
	}
	if err := s.store.Set(ctx, constants.SimulationKey, string(data)); err != nil {
		return Result{}, fmt.Errorf("persist simulation snapshot: %w", err)
	}

	s.logger.Debug("simulation computed",
		zap.String("op", "simulator.Simulate"),
		zap.Float64("amount", in.Amount),
		zap.Int("durationMonths", in.DurationMonths),
		zap.Bool("hasProperty", in.HasProperty),
		zap.Bool("hasGuarantee", in.HasGuarantee),
	)
	if s.recorder != nil {
		s.recorder.SimulationComputed(in.HasProperty, in.HasGuarantee)
	}
	return result, nil
}

// Last loads the session snapshot. A missing or unreadable snapshot yields nil.
func (s *Simulator) Last(ctx context.Context) (*Snapshot, error) {
	raw, ok, err := s.store.Get(ctx, constants.SimulationKey)
	if err != nil {
		return nil, fmt.Errorf("load simulation snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn("discarding unreadable simulation snapshot",
			zap.String("op", "simulator.Last"),
			zap.Error(err),
		)
		return nil, nil
	}
	return &snap, nil
}

// Triggered reports whether this session already ran a simulation.
func (s *Simulator) Triggered(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx, constants.SimulationKey)
	if err != nil {
		return false, fmt.Errorf("check simulation snapshot: %w", err)
	}
	return ok, nil
}

// ParseAmount parses a typed amount and rejects values outside the bounds.
func ParseAmount(raw string) (float64, error) {
	amount, err := validation.ParseNumber(raw)
	if err != nil {
		return 0, err
	}
	if !mathutil.InRange(amount, constants.MinLoanAmount, constants.MaxLoanAmount) {
		return 0, fmt.Errorf("%w: amount %s", ErrOutOfRange, raw)
	}
	return amount, nil
}

// ParseDuration parses a typed duration in months and rejects values outside the bounds.
func ParseDuration(raw string) (int, error) {
	months, err := validation.ParseWholeNumber(raw)
	if err != nil {
		return 0, err
	}
	if months < constants.MinDurationMonths || months > constants.MaxDurationMonths {
		return 0, fmt.Errorf("%w: duration %s", ErrOutOfRange, raw)
	}
	return months, nil
}
