// Package server exposes the credit simulator and the loan application wizard
// over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/metrics"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/internal/wizard"
	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// Options wires the collaborators of the HTTP handler.
type Options struct {
	Logger        *zap.Logger
	Store         session.Store
	Tokens        *session.Tokens
	Tariff        simulator.Tariff
	Submitter     wizard.Submitter
	Wizard        wizard.Config
	WizardIdleTTL time.Duration
	Metrics       *metrics.Metrics
	RateLimit     RateLimitConfig
	MaxUploadSize int64
	CookieSecure  bool
	SessionTTL    time.Duration
	Version       string
}

// Handler serves the API. Close releases its background goroutines.
type Handler struct {
	router        *mux.Router
	logger        *zap.Logger
	store         session.Store
	tokens        *session.Tokens
	tariff        simulator.Tariff
	submitter     wizard.Submitter
	wizardConfig  wizard.Config
	metrics       *metrics.Metrics
	limiter       *RateLimiter
	registry      *wizard.Registry
	maxUploadSize int64
	cookieSecure  bool
	sessionTTL    time.Duration
	version       string
}

type contextKey int

const (
	sessionIDKey contextKey = iota
	localizerKey
)

// NewHandler constructs the HTTP handler for the simulator and wizard API.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("session tokens are required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if err := opts.Tariff.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tariff: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = constants.DefaultSessionTTL
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	wizardConfig := opts.Wizard
	if wizardConfig.MaxDocumentSize <= 0 {
		wizardConfig.MaxDocumentSize = constants.DefaultMaxDocumentSizeBytes
	}

	h := &Handler{
		logger:        logger,
		store:         opts.Store,
		tokens:        opts.Tokens,
		tariff:        opts.Tariff,
		submitter:     opts.Submitter,
		wizardConfig:  wizardConfig,
		metrics:       opts.Metrics,
		maxUploadSize: maxUploadSize,
		cookieSecure:  opts.CookieSecure,
		sessionTTL:    sessionTTL,
		version:       version,
	}
	if opts.RateLimit.Requests > 0 && opts.RateLimit.Window > 0 {
		h.limiter = NewRateLimiter(opts.RateLimit.Requests, opts.RateLimit.Window)
	}
	h.registry = wizard.NewRegistry(h.newWizard, opts.WizardIdleTTL, logger)
	h.router = h.routes()
	return h, nil
}

func (h *Handler) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.instrumentMiddleware)

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.rateLimitMiddleware)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)
	api.HandleFunc("/documents", h.handleDocumentCatalog).Methods(http.MethodGet)
	api.HandleFunc("/session", h.handleSession).Methods(http.MethodPost)

	secured := api.NewRoute().Subrouter()
	secured.Use(h.sessionMiddleware)
	secured.HandleFunc("/simulator", h.handleSimulate).Methods(http.MethodPost)
	secured.HandleFunc("/simulator", h.handleLastSimulation).Methods(http.MethodGet)
	secured.HandleFunc("/wizard", h.handleWizardState).Methods(http.MethodGet)
	secured.HandleFunc("/wizard/fields", h.handleSetField).Methods(http.MethodPatch)
	secured.HandleFunc("/wizard/phones", h.handleAddPhone).Methods(http.MethodPost)
	secured.HandleFunc("/wizard/phones/{index:[0-9]+}", h.handleSetPhoneField).Methods(http.MethodPatch)
	secured.HandleFunc("/wizard/phones/{index:[0-9]+}", h.handleRemovePhone).Methods(http.MethodDelete)
	secured.HandleFunc("/wizard/documents/{field}", h.handleAttachDocument).Methods(http.MethodPut)
	secured.HandleFunc("/wizard/documents/{field}", h.handleRemoveDocument).Methods(http.MethodDelete)
	secured.HandleFunc("/wizard/next", h.handleNext).Methods(http.MethodPost)
	secured.HandleFunc("/wizard/previous", h.handlePrevious).Methods(http.MethodPost)
	secured.HandleFunc("/wizard/jump/{step:[0-9]+}", h.handleJump).Methods(http.MethodPost)
	secured.HandleFunc("/wizard/submit", h.handleSubmit).Methods(http.MethodPost)
	secured.HandleFunc("/wizard/dismiss", h.handleDismiss).Methods(http.MethodPost)

	return r
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close stops the rate limiter and flushes every open wizard.
func (h *Handler) Close(ctx context.Context) {
	if h.limiter != nil {
		h.limiter.Stop()
	}
	h.registry.Close(ctx)
}

func (h *Handler) simulatorFor(sessionID string) *simulator.Simulator {
	var opts []simulator.Option
	if h.metrics != nil {
		opts = append(opts, simulator.WithRecorder(h.metrics))
	}
	return simulator.New(session.Scope(h.store, sessionID), h.tariff, h.logger, opts...)
}

func (h *Handler) newWizard(sessionID string, l *i18n.Localizer) *wizard.Wizard {
	var opts []wizard.Option
	if l != nil {
		opts = append(opts, wizard.WithLocalizer(l))
	}
	if h.metrics != nil {
		opts = append(opts, wizard.WithRecorder(h.metrics))
	}
	logger := h.logger.With(zap.String("session", sessionID))
	return wizard.New(session.Scope(h.store, sessionID), h.simulatorFor(sessionID), h.submitter, h.wizardConfig, logger, opts...)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func localizerFrom(r *http.Request) *i18n.Localizer {
	if l, ok := r.Context().Value(localizerKey).(*i18n.Localizer); ok {
		return l
	}
	return i18n.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func (h *Handler) wizardFor(r *http.Request) *wizard.Wizard {
	return h.registry.Get(r.Context(), sessionIDFrom(r.Context()), localizerFrom(r))
}

type sessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	Language  string    `json:"language"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	l := localizerFrom(r)
	token, id, err := h.tokens.Issue(l.Language())
	if err != nil {
		h.logger.Error("failed to issue session token",
			zap.String("op", "server.handleSession"),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusInternalServerError, "failed to create session", "server.handleSession")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.writeJSON(w, http.StatusCreated, sessionResponse{
		Token:     token,
		SessionID: id,
		Language:  l.Language(),
		ExpiresAt: time.Now().Add(h.sessionTTL).UTC(),
	})
}

func (h *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *Handler) handleDocumentCatalog(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents":       wizard.DocumentCatalog(),
		"maxDocumentSize": h.wizardConfig.MaxDocumentSize,
	})
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	in := simulator.DefaultInput()
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&in); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid simulation request: %v", err), "server.handleSimulate")
		return
	}

	sim := h.simulatorFor(sessionIDFrom(r.Context()))
	result, err := sim.Simulate(r.Context(), in)
	if err != nil {
		h.respondWizardError(w, r, err, "server.handleSimulate")
		return
	}

	h.writeJSON(w, http.StatusOK, simulator.Snapshot{Input: in, Result: result})
}

func (h *Handler) handleLastSimulation(w http.ResponseWriter, r *http.Request) {
	sim := h.simulatorFor(sessionIDFrom(r.Context()))
	snap, err := sim.Last(r.Context())
	if err != nil {
		h.respondWizardError(w, r, err, "server.handleLastSimulation")
		return
	}
	if snap == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "no simulation for this session", "server.handleLastSimulation")
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleWizardState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.wizardFor(r).State())
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) decodeField(w http.ResponseWriter, r *http.Request, op string) (fieldRequest, bool) {
	var req fieldRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid field update: %v", err), op)
		return req, false
	}
	return req, true
}

func (h *Handler) handleSetField(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetField"
	req, ok := h.decodeField(w, r, op)
	if !ok {
		return
	}

	key, err := wizard.ParseFieldKey(req.Field)
	if err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}

	wz := h.wizardFor(r)
	if err := wz.SetField(key, req.Value); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleAddPhone(w http.ResponseWriter, r *http.Request) {
	wz := h.wizardFor(r)
	index, err := wz.AddPhone()
	if err != nil {
		h.respondWizardError(w, r, err, "server.handleAddPhone")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"index": index,
		"state": wz.State(),
	})
}

func (h *Handler) handleSetPhoneField(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetPhoneField"
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid phone index", op)
		return
	}
	req, ok := h.decodeField(w, r, op)
	if !ok {
		return
	}

	wz := h.wizardFor(r)
	if err := wz.SetPhoneField(index, req.Field, req.Value); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleRemovePhone(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemovePhone"
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid phone index", op)
		return
	}

	wz := h.wizardFor(r)
	if err := wz.RemovePhone(index); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAttachDocument"
	key, err := wizard.ParseDocumentKey(mux.Vars(r)["field"])
	if err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondOversizeUpload(w, r, key, op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing document file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read document: %v", err), op)
		return
	}

	doc := &wizard.Document{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}

	wz := h.wizardFor(r)
	if err := wz.AttachDocument(key, doc); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

// respondOversizeUpload clears the slot of an upload cut off by the body
// limit and reports it under the document key like any other rejected file.
func (h *Handler) respondOversizeUpload(w http.ResponseWriter, r *http.Request, key wizard.FieldKey, op string) {
	h.logger.Info("upload exceeds limit",
		zap.String("op", op),
		zap.String("document", string(key)),
		zap.Int64("limit", h.maxUploadSize),
	)
	err := h.wizardFor(r).RejectDocument(key, wizard.ErrFileTooLarge)
	var verr *wizard.ValidationError
	if !errors.As(err, &verr) {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusRequestEntityTooLarge, validationResponse{
		Step:    verr.Step,
		Errors:  verr.Map(),
		Summary: verr.Errors,
	})
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveDocument"
	key, err := wizard.ParseDocumentKey(mux.Vars(r)["field"])
	if err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}

	wz := h.wizardFor(r)
	if err := wz.RemoveDocument(key); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	wz := h.wizardFor(r)
	if err := wz.Next(r.Context()); err != nil {
		h.respondWizardError(w, r, err, "server.handleNext")
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	wz := h.wizardFor(r)
	if err := wz.Previous(); err != nil {
		h.respondWizardError(w, r, err, "server.handlePrevious")
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleJump(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleJump"
	step, err := strconv.Atoi(mux.Vars(r)["step"])
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid step", op)
		return
	}

	wz := h.wizardFor(r)
	if err := wz.JumpTo(step); err != nil {
		h.respondWizardError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, wz.State())
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizardFor(r).Submit(r.Context())
	if err != nil {
		h.respondWizardError(w, r, err, "server.handleSubmit")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	h.registry.Forget(r.Context(), sessionIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

type validationResponse struct {
	Step    int                        `json:"step"`
	Errors  map[wizard.FieldKey]string `json:"errors"`
	Summary []wizard.FieldError        `json:"summary"`
}

// respondWizardError maps wizard and simulator errors to HTTP statuses.
func (h *Handler) respondWizardError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		h.logger.Debug("validation failed",
			zap.String("op", op),
			zap.Int("step", verr.Step),
			zap.Int("fields", len(verr.Errors)),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Step:    verr.Step,
			Errors:  verr.Map(),
			Summary: verr.Errors,
		})
		return
	}

	var serr *wizard.SubmissionError
	if errors.As(err, &serr) {
		h.logger.Warn("submission failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": serr.Message})
		return
	}

	switch {
	case errors.Is(err, simulator.ErrOutOfRange):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": localizerFrom(r).Text(i18n.SimulationOutOfRange),
		})
	case errors.Is(err, wizard.ErrForwardJump),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrNotFinalStep),
		errors.Is(err, wizard.ErrFinished):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, wizard.ErrUnknownField):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, wizard.ErrUnknownDocument), errors.Is(err, wizard.ErrUnknownPhone):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	default:
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
