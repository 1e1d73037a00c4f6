// Package wizard implements the six-step loan application: a draft that is
// validated step by step, persisted with a debounce and finally handed to a
// submission collaborator.
package wizard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/internal/submission"
	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// Submitter receives finished applications.
type Submitter interface {
	SubmitRequest(ctx context.Context, payload submission.Payload) (submission.Result, error)
}

// Recorder observes wizard activity.
type Recorder interface {
	StepChanged(from, to int)
	ValidationFailed(step, fields int)
	SubmissionFinished(success bool)
	DraftSaved()
}

// Config holds the tunables of a wizard.
type Config struct {
	Debounce        time.Duration
	MaxDocumentSize int64
}

// DefaultConfig returns the site defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:        constants.DefaultDebounceInterval,
		MaxDocumentSize: constants.DefaultMaxDocumentSizeBytes,
	}
}

// Option customises a Wizard.
type Option func(*Wizard)

// WithLocalizer sets the message language.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(w *Wizard) { w.localizer = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(w *Wizard) { w.recorder = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// DocumentStatus reports one upload slot.
type DocumentStatus struct {
	DocumentRequirement
	Attached bool   `json:"attached"`
	FileName string `json:"fileName,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// State is a read-only copy of the wizard.
type State struct {
	Step       int                 `json:"step"`
	Draft      *Draft              `json:"draft"`
	Errors     map[FieldKey]string `json:"errors"`
	Documents  []DocumentStatus    `json:"documents"`
	Submitting bool                `json:"submitting"`
	Finished   bool                `json:"finished"`
}

// Wizard is the application of one session. All methods are safe for
// concurrent use.
type Wizard struct {
	mu         sync.Mutex
	store      session.Store
	simulator  *simulator.Simulator
	submitter  Submitter
	cfg        Config
	logger     *zap.Logger
	localizer  *i18n.Localizer
	recorder   Recorder
	now        func() time.Time
	step       int
	draft      *Draft
	errors     map[FieldKey]string
	submitting bool
	finished   bool
	dirty      bool
	timer      *time.Timer
	lastActive time.Time
}

// New creates a wizard over a session-scoped store. Call Open before use.
func New(store session.Store, sim *simulator.Simulator, submitter Submitter, cfg Config, logger *zap.Logger, opts ...Option) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wizard{
		store:     store,
		simulator: sim,
		submitter: submitter,
		cfg:       cfg,
		logger:    logger,
		localizer: i18n.New(i18n.Default),
		now:       time.Now,
		step:      constants.FirstStep,
		draft:     NewDraft(),
		errors:    make(map[FieldKey]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lastActive = w.now()
	return w
}

// Open restores the persisted draft and step. Without a usable draft the loan
// fields are seeded from the last simulation. Restore problems are logged and
// the wizard starts empty.
func (w *Wizard) Open(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	if w.restoreLocked(ctx) {
		return
	}
	w.seedFromSimulationLocked(ctx)
}

// SetLocalizer switches the language of future messages.
func (w *Wizard) SetLocalizer(l *i18n.Localizer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.localizer = l
}

// SetField updates a scalar field and clears its error.
func (w *Wizard) SetField(key FieldKey, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	get, ok := scalarFields[key]
	if !ok {
		return ErrUnknownField
	}
	*get(w.draft) = value
	delete(w.errors, key)
	w.markDirtyLocked()
	return nil
}

// AddPhone appends an empty additional phone and returns its index.
func (w *Wizard) AddPhone() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return 0, err
	}
	w.draft.AdditionalPhones = append(w.draft.AdditionalPhones, AdditionalPhone{Type: PhoneMobile})
	w.markDirtyLocked()
	return len(w.draft.AdditionalPhones) - 1, nil
}

// RemovePhone deletes an additional phone. Errors of the phone list are
// dropped since the remaining indexes shift.
func (w *Wizard) RemovePhone(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(w.draft.AdditionalPhones) {
		return ErrUnknownPhone
	}
	w.draft.AdditionalPhones = append(w.draft.AdditionalPhones[:index], w.draft.AdditionalPhones[index+1:]...)
	for key := range w.errors {
		if _, ok := phoneIndex(key); ok {
			delete(w.errors, key)
		}
	}
	w.markDirtyLocked()
	return nil
}

// SetPhoneField updates areaCode, number or type of an additional phone.
func (w *Wizard) SetPhoneField(index int, sub, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(w.draft.AdditionalPhones) {
		return ErrUnknownPhone
	}
	if !isPhoneSub(sub) {
		return ErrUnknownField
	}
	*w.draft.AdditionalPhones[index].field(sub) = value
	delete(w.errors, PhoneFieldKey(index, sub))
	w.markDirtyLocked()
	return nil
}

// AttachDocument validates and stores a file in an upload slot. A rejected
// file leaves the slot empty and is reported as a *ValidationError.
func (w *Wizard) AttachDocument(key FieldKey, doc *Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if _, ok := documentRequirement(key); !ok {
		return ErrUnknownDocument
	}

	if err := ValidateFile(doc, w.cfg.MaxDocumentSize); err != nil {
		fields := []zap.Field{zap.String("op", "wizard.AttachDocument")}
		if doc != nil {
			fields = append(fields, zap.Int64("size", doc.Size), zap.String("contentType", doc.ContentType))
		}
		return w.rejectLocked(key, err, fields...)
	}

	w.draft.Documents[key] = doc
	delete(w.errors, key)
	return nil
}

// RejectDocument empties an upload slot for a file that never reached the
// wizard, such as one cut off by the upload limit. reason is ErrFileTooLarge
// or ErrFileNotPDF.
func (w *Wizard) RejectDocument(key FieldKey, reason error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if _, ok := documentRequirement(key); !ok {
		return ErrUnknownDocument
	}
	return w.rejectLocked(key, reason, zap.String("op", "wizard.RejectDocument"))
}

func (w *Wizard) rejectLocked(key FieldKey, reason error, fields ...zap.Field) *ValidationError {
	delete(w.draft.Documents, key)
	msg := fileMessage(w.localizer, reason, w.cfg.MaxDocumentSize)
	w.errors[key] = msg
	w.logger.Info("document rejected", append(fields,
		zap.String("document", string(key)),
		zap.Error(reason),
	)...)
	return &ValidationError{Step: constants.LastStep, Errors: []FieldError{{Field: key, Message: msg}}}
}

// RemoveDocument empties an upload slot.
func (w *Wizard) RemoveDocument(key FieldKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if _, ok := documentRequirement(key); !ok {
		return ErrUnknownDocument
	}
	delete(w.draft.Documents, key)
	delete(w.errors, key)
	return nil
}

// Next validates the current step and advances when it is clean. Leaving the
// employment step runs a simulation first if the session has none yet.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}

	if verr := w.validateLocked(w.step); verr != nil {
		return verr
	}

	if w.step == 2 {
		w.ensureSimulationLocked(ctx)
	}

	from := w.step
	if w.step < constants.LastStep {
		w.step++
	}
	w.changedStepLocked(from)
	return nil
}

// Previous goes back one step without validation.
func (w *Wizard) Previous() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if w.step <= constants.FirstStep {
		return nil
	}
	from := w.step
	w.step--
	w.changedStepLocked(from)
	return nil
}

// JumpTo moves back to an earlier step without validation.
func (w *Wizard) JumpTo(step int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if step < constants.FirstStep || step >= w.step {
		return ErrForwardJump
	}
	from := w.step
	w.step = step
	w.changedStepLocked(from)
	return nil
}

// Submit validates the last step and hands the application over. Only one
// submission may be pending at a time; on success the persisted draft is
// removed and the wizard is finished.
func (w *Wizard) Submit(ctx context.Context) (submission.Result, error) {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return submission.Result{}, err
	}
	if w.step != constants.LastStep {
		w.mu.Unlock()
		return submission.Result{}, ErrNotFinalStep
	}
	if verr := w.validateLocked(w.step); verr != nil {
		w.mu.Unlock()
		return submission.Result{}, verr
	}

	snap, err := w.simulator.Last(ctx)
	if err != nil {
		w.logger.Warn("submitting without simulation",
			zap.String("op", "wizard.Submit"),
			zap.Error(err),
		)
	}
	payload := BuildPayload(w.draft, snap, w.localizer)
	localizer := w.localizer
	w.submitting = true
	w.mu.Unlock()

	result, err := w.callSubmitter(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = localizer.Text(i18n.SubmissionFailed)
		}
		w.logger.Error("submission failed",
			zap.String("op", "wizard.Submit"),
			zap.String("message", result.Error),
			zap.Error(err),
		)
		if w.recorder != nil {
			w.recorder.SubmissionFinished(false)
		}
		return result, &SubmissionError{Message: msg, Err: err}
	}

	w.clearPersistedLocked(ctx)
	w.draft = NewDraft()
	w.errors = make(map[FieldKey]string)
	w.step = constants.FirstStep
	w.finished = true
	w.logger.Info("application submitted",
		zap.String("op", "wizard.Submit"),
		zap.String("requestId", result.RequestID),
	)
	if w.recorder != nil {
		w.recorder.SubmissionFinished(true)
	}
	return result, nil
}

// callSubmitter invokes the collaborator with the submitting flag set; the
// deferred reset also runs when the collaborator panics.
func (w *Wizard) callSubmitter(ctx context.Context, payload submission.Payload) (submission.Result, error) {
	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()
	return w.submitter.SubmitRequest(ctx, payload)
}

// Dismiss writes any pending change so the draft can be resumed later.
func (w *Wizard) Dismiss(ctx context.Context) error {
	return w.Flush(ctx)
}

// State returns a copy of the wizard state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := make(map[FieldKey]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	docs := make([]DocumentStatus, 0, len(documentCatalog))
	for _, req := range documentCatalog {
		status := DocumentStatus{DocumentRequirement: req}
		if doc := w.draft.Documents[req.Key]; doc != nil {
			status.Attached = true
			status.FileName = doc.FileName
			status.Size = doc.Size
		}
		docs = append(docs, status)
	}
	return State{
		Step:       w.step,
		Draft:      w.draft.Clone(),
		Errors:     errs,
		Documents:  docs,
		Submitting: w.submitting,
		Finished:   w.finished,
	}
}

// Finished reports whether the application was submitted.
func (w *Wizard) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

// LastActive returns when the wizard was last used.
func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

func (w *Wizard) editableLocked() error {
	w.touchLocked()
	if w.finished {
		return ErrFinished
	}
	if w.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

func (w *Wizard) touchLocked() {
	w.lastActive = w.now()
}

// validateLocked replaces the error map with the step's findings.
func (w *Wizard) validateLocked(step int) *ValidationError {
	errs := ValidateStep(step, &Context{
		Draft:           w.draft,
		Now:             w.now(),
		MaxDocumentSize: w.cfg.MaxDocumentSize,
	}, w.localizer)

	w.errors = make(map[FieldKey]string, len(errs))
	if len(errs) == 0 {
		return nil
	}
	for _, fe := range errs {
		w.errors[fe.Field] = fe.Message
	}
	w.logger.Debug("step validation failed",
		zap.String("op", "wizard.validate"),
		zap.Int("step", step),
		zap.Int("fields", len(errs)),
	)
	if w.recorder != nil {
		w.recorder.ValidationFailed(step, len(errs))
	}
	return &ValidationError{Step: step, Errors: errs}
}

func (w *Wizard) changedStepLocked(from int) {
	w.errors = make(map[FieldKey]string)
	if from == w.step {
		return
	}
	if w.recorder != nil {
		w.recorder.StepChanged(from, w.step)
	}
	w.markDirtyLocked()
}

func (w *Wizard) ensureSimulationLocked(ctx context.Context) {
	triggered, err := w.simulator.Triggered(ctx)
	if err != nil {
		w.logger.Warn("cannot check simulation",
			zap.String("op", "wizard.Next"),
			zap.Error(err),
		)
		return
	}
	if triggered {
		return
	}
	if _, err := w.simulator.Simulate(ctx, loanTerms(w.draft, nil)); err != nil {
		w.logger.Warn("implicit simulation failed",
			zap.String("op", "wizard.Next"),
			zap.Error(err),
		)
	}
}
