package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/pkg/constants"
)

const saveTimeout = 5 * time.Second

// Flush writes the pending draft immediately.
func (w *Wizard) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

func (w *Wizard) flushLocked(ctx context.Context) error {
	if w.timer != nil {
		w.timer.Stop()
	}
	if !w.dirty || w.finished {
		return nil
	}
	if err := w.saveLocked(ctx); err != nil {
		return err
	}
	w.dirty = false
	return nil
}

// markDirtyLocked schedules a trailing save; every new change pushes it back.
func (w *Wizard) markDirtyLocked() {
	w.dirty = true
	if w.cfg.Debounce <= 0 {
		if err := w.flushLocked(context.Background()); err != nil {
			w.logSaveError(err)
		}
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.cfg.Debounce, w.autoSave)
		return
	}
	w.timer.Reset(w.cfg.Debounce)
}

func (w *Wizard) autoSave() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		w.logSaveError(err)
	}
}

func (w *Wizard) logSaveError(err error) {
	w.logger.Warn("draft save failed",
		zap.String("op", "wizard.save"),
		zap.Error(err),
	)
}

func (w *Wizard) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(w.draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := w.store.Set(ctx, constants.DraftKey, string(data)); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	if err := w.store.Set(ctx, constants.StepKey, strconv.Itoa(w.step)); err != nil {
		return fmt.Errorf("persist step: %w", err)
	}
	if w.recorder != nil {
		w.recorder.DraftSaved()
	}
	return nil
}

// restoreLocked loads draft and step and reports whether a draft was found.
func (w *Wizard) restoreLocked(ctx context.Context) bool {
	raw, ok, err := w.store.Get(ctx, constants.DraftKey)
	if err != nil {
		w.logger.Warn("cannot load draft",
			zap.String("op", "wizard.Open"),
			zap.Error(err),
		)
		return false
	}
	if !ok {
		return false
	}

	draft := NewDraft()
	if err := json.Unmarshal([]byte(raw), draft); err != nil {
		w.logger.Warn("discarding unreadable draft",
			zap.String("op", "wizard.Open"),
			zap.Error(err),
		)
		return false
	}
	draft.Documents = make(map[FieldKey]*Document)
	w.draft = draft
	w.step = w.restoreStepLocked(ctx)
	return true
}

func (w *Wizard) restoreStepLocked(ctx context.Context) int {
	raw, ok, err := w.store.Get(ctx, constants.StepKey)
	if err != nil || !ok {
		return constants.FirstStep
	}
	step, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || step < constants.FirstStep || step > constants.LastStep {
		w.logger.Warn("discarding unreadable step",
			zap.String("op", "wizard.Open"),
			zap.String("value", raw),
		)
		return constants.FirstStep
	}
	return step
}

func (w *Wizard) seedFromSimulationLocked(ctx context.Context) {
	snap, err := w.simulator.Last(ctx)
	if err != nil {
		w.logger.Warn("cannot load simulation",
			zap.String("op", "wizard.Open"),
			zap.Error(err),
		)
		return
	}
	if snap == nil {
		return
	}
	w.draft.LoanAmount = strconv.FormatFloat(snap.Amount, 'f', -1, 64)
	w.draft.LoanDuration = strconv.Itoa(snap.DurationMonths)
	w.draft.PropertyPledged = No
	if snap.HasProperty {
		w.draft.PropertyPledged = Yes
	}
}

// clearPersistedLocked drops the saved draft after a successful submit.
func (w *Wizard) clearPersistedLocked(ctx context.Context) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.dirty = false
	for _, key := range []string{constants.DraftKey, constants.StepKey} {
		if err := w.store.Remove(ctx, key); err != nil {
			w.logger.Warn("cannot remove persisted draft",
				zap.String("op", "wizard.Submit"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
