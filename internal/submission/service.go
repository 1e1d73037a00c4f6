package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

const notifyTimeout = 5 * time.Second

// Service stores submitted requests and announces them.
type Service struct {
	repo     Repository
	notifier Notifier
	policy   *bluemonday.Policy
	logger   *zap.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewService creates the submission service. A nil notifier publishes nothing.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// SubmitRequest stores the payload as a new request. Malformed payloads are
// rejected through Result; storage failures are returned as errors.
func (s *Service) SubmitRequest(ctx context.Context, p Payload) (Result, error) {
	if problem := s.check(p); problem != "" {
		s.logger.Warn("rejecting malformed request",
			zap.String("op", "submission.SubmitRequest"),
			zap.String("problem", problem),
		)
		return Result{Error: i18n.Match(p.Language).Text(i18n.SubmissionFailed)}, nil
	}

	req, err := s.buildRequest(p)
	if err != nil {
		return Result{}, err
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return Result{}, fmt.Errorf("store request: %w", err)
	}

	s.logger.Info("request stored",
		zap.String("op", "submission.SubmitRequest"),
		zap.String("requestId", req.ID.String()),
		zap.String("service", req.Service),
		zap.Int("documents", len(req.Documents)),
	)
	s.notify(ctx, req)

	return Result{Success: true, RequestID: req.ID.String()}, nil
}

func (s *Service) check(p Payload) string {
	switch {
	case validation.IsBlank(p.Name):
		return "missing name"
	case !validation.IsEmail(p.Email):
		return "invalid email"
	case validation.IsBlank(p.Service):
		return "missing service"
	}
	return ""
}

func (s *Service) buildRequest(p Payload) (*Request, error) {
	data := s.sanitizeData(p.AdditionalData)
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode additional data: %w", err)
	}

	now := s.now()
	req := &Request{
		ID:                 s.newID(),
		CreatedAt:          now,
		UpdatedAt:          now,
		Status:             StatusNew,
		Service:            s.clean(p.Service),
		Language:           s.clean(p.Language),
		Name:               s.clean(p.Name),
		Email:              strings.TrimSpace(p.Email),
		Phone:              s.clean(p.Phone),
		Description:        s.clean(p.Description),
		LoanAmount:         decimal.NewFromFloat(data.Loan.Amount).Round(2),
		LoanDurationMonths: data.Loan.DurationMonths,
		AdditionalData:     string(encoded),
	}
	if p.Simulation != nil {
		req.MinMonthlyPayment = decimal.NewFromFloat(p.Simulation.MinMonthlyPayment).Round(2)
		req.MaxMonthlyPayment = decimal.NewFromFloat(p.Simulation.MaxMonthlyPayment).Round(2)
	}
	for _, f := range p.Files {
		req.Documents = append(req.Documents, RequestDocument{
			ID:           s.newID(),
			RequestID:    req.ID,
			CreatedAt:    now,
			DocumentType: f.DocumentType,
			FileName:     s.clean(f.FileName),
			ContentType:  f.ContentType,
			Size:         f.Size,
			Content:      f.Data,
		})
	}
	return req, nil
}

// maxCleanPasses bounds how many layers of entity encoding clean unwraps.
const maxCleanPasses = 3

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// clean strips markup from visitor text and keeps plain characters such as
// apostrophes readable. Entity-encoded markup is decoded and sanitised again;
// brackets left over are dropped so stored text never carries a tag.
func (s *Service) clean(value string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(value))
		if next == value {
			break
		}
		value = next
	}
	return strings.TrimSpace(angleBrackets.Replace(value))
}

func (s *Service) sanitizeData(d AdditionalData) AdditionalData {
	d.Personal.Street = s.clean(d.Personal.Street)
	d.Personal.City = s.clean(d.Personal.City)
	d.Personal.Nationality = s.clean(d.Personal.Nationality)
	d.Personal.Country = s.clean(d.Personal.Country)
	d.Employment.EmployerName = s.clean(d.Employment.EmployerName)
	d.Employment.EmployerAddress = s.clean(d.Employment.EmployerAddress)
	d.Loan.Purpose = s.clean(d.Loan.Purpose)
	d.Loan.Comments = s.clean(d.Loan.Comments)
	return d
}

func (s *Service) notify(ctx context.Context, req *Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	event := Event{
		Type:               EventSubmitted,
		RequestID:          req.ID.String(),
		Service:            req.Service,
		Language:           req.Language,
		Email:              req.Email,
		LoanAmount:         req.LoanAmount.StringFixed(2),
		LoanDurationMonths: req.LoanDurationMonths,
		Documents:          len(req.Documents),
		SubmittedAt:        req.CreatedAt,
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("request notification failed",
			zap.String("op", "submission.notify"),
			zap.String("requestId", event.RequestID),
			zap.Error(err),
		)
	}
}
