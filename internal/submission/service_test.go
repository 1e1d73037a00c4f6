package submission

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/credit-wizard/internal/simulator"
)

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingNotifier) Close() error { return nil }

type failingRepository struct{}

func (failingRepository) Create(context.Context, *Request) error {
	return errors.New("database unavailable")
}

func (failingRepository) Get(context.Context, uuid.UUID) (*Request, error) {
	return nil, ErrNotFound
}

func samplePayload() Payload {
	return Payload{
		Name:        "Anna D'Angelo",
		Email:       "anna@example.ch",
		Phone:       "+41 79 123 45 67",
		Service:     ServicePersonalLoan,
		Language:    "it",
		Description: "Richiesta <b>urgente</b>",
		AdditionalData: AdditionalData{
			Employment: Employment{EmployerName: "Rossi & Figli <script>alert(1)</script>"},
			Loan:       Loan{Amount: 12500.5, DurationMonths: 48, Comments: "<i>grazie</i>"},
		},
		Simulation: &simulator.Snapshot{
			Input:  simulator.Input{Amount: 12500.5, DurationMonths: 48},
			Result: simulator.Result{MinMonthlyPayment: 301.25, MaxMonthlyPayment: 318.4},
		},
		Files: []File{
			{DocumentType: "documentoIdentita", FileName: "id.pdf", ContentType: "application/pdf", Size: 4, Data: []byte("%PDF")},
			{DocumentType: "bustaPaga1", FileName: "pay.pdf", ContentType: "application/pdf", Size: 4, Data: []byte("%PDF")},
		},
	}
}

func TestSubmitRequestStoresAndNotifies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }

	result, err := svc.SubmitRequest(ctx, samplePayload())

	require.NoError(t, err)
	require.True(t, result.Success)
	id, err := uuid.Parse(result.RequestID)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)
	assert.Equal(t, "Anna D'Angelo", stored.Name)
	assert.Equal(t, "Richiesta urgente", stored.Description)
	assert.Equal(t, "12500.50", stored.LoanAmount.StringFixed(2))
	assert.Equal(t, "301.25", stored.MinMonthlyPayment.StringFixed(2))
	assert.Equal(t, "318.40", stored.MaxMonthlyPayment.StringFixed(2))
	require.Len(t, stored.Documents, 2)
	assert.Equal(t, id, stored.Documents[1].RequestID)
	assert.Equal(t, "bustaPaga1", stored.Documents[1].DocumentType)

	var data AdditionalData
	require.NoError(t, json.Unmarshal([]byte(stored.AdditionalData), &data))
	assert.Equal(t, "Rossi & Figli", data.Employment.EmployerName)
	assert.Equal(t, "grazie", data.Loan.Comments)

	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	assert.Equal(t, EventSubmitted, event.Type)
	assert.Equal(t, result.RequestID, event.RequestID)
	assert.Equal(t, "12500.50", event.LoanAmount)
	assert.Equal(t, 2, event.Documents)
}

func TestSubmitRequestRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"Missing name", func(p *Payload) { p.Name = " " }},
		{"Invalid email", func(p *Payload) { p.Email = "anna" }},
		{"Missing service", func(p *Payload) { p.Service = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepository()
			p := samplePayload()
			tt.mutate(&p)

			result, err := NewService(repo, nil, nil).SubmitRequest(context.Background(), p)

			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "Riprovare")
			assert.Empty(t, repo.All())
		})
	}
}

func TestSubmitRequestStripsEncodedMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"Encoded tag", "&lt;b&gt;ciao&lt;/b&gt;"},
		{"Double encoded", "&amp;lt;img src=x onerror=alert(1)&amp;gt;"},
		{"Numeric entities", "&#60;i&#62;ciao&#60;/i&#62;"},
		{"Bare brackets", "a < b > c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewMemoryRepository()
			p := samplePayload()
			p.Description = tt.input
			p.AdditionalData.Employment.EmployerName = "Rossi " + tt.input
			p.AdditionalData.Loan.Purpose = tt.input
			p.AdditionalData.Loan.Comments = tt.input

			result, err := NewService(repo, nil, nil).SubmitRequest(ctx, p)
			require.NoError(t, err)
			require.True(t, result.Success)

			stored := repo.All()
			require.Len(t, stored, 1)
			var data AdditionalData
			require.NoError(t, json.Unmarshal([]byte(stored[0].AdditionalData), &data))

			for _, text := range []string{
				stored[0].Description,
				data.Employment.EmployerName,
				data.Loan.Purpose,
				data.Loan.Comments,
			} {
				assert.NotContains(t, text, "<")
				assert.NotContains(t, text, ">")
			}
		})
	}
}

func TestSubmitRequestStorageFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	_, err := NewService(failingRepository{}, notifier, nil).SubmitRequest(context.Background(), samplePayload())

	assert.ErrorContains(t, err, "database unavailable")
	assert.Empty(t, notifier.events)
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	repo := NewMemoryRepository()
	notifier := &recordingNotifier{err: errors.New("broker down")}

	result, err := NewService(repo, notifier, nil).SubmitRequest(context.Background(), samplePayload())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, repo.All(), 1)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	req := &Request{ID: uuid.New(), Name: "Anna"}

	require.NoError(t, repo.Create(ctx, req))
	assert.Error(t, repo.Create(ctx, req))

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	got.Name = "changed"
	again, _ := repo.Get(ctx, req.ID)
	assert.Equal(t, "Anna", again.Name)
}

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	writer := &fakeWriter{}
	n := &KafkaNotifier{writer: writer}

	require.NoError(t, n.Notify(context.Background(), Event{Type: EventSubmitted, RequestID: "abc"}))
	require.NoError(t, n.Close())

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, []byte("abc"), msg.Key)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, []byte(EventSubmitted), msg.Headers[0].Value)
	assert.JSONEq(t, `{"type":"request.submitted","requestId":"abc","service":"","language":"","email":"",
		"loanAmount":"","loanDurationMonths":0,"documents":0,"submittedAt":"0001-01-01T00:00:00Z"}`, string(msg.Value))
	assert.True(t, writer.closed)
}
