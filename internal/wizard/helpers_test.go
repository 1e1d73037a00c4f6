package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/internal/submission"
	"github.com/iwvelando/credit-wizard/pkg/datetime"
)

var testNow = datetime.MustParseTime(datetime.DateLayout, "2026-10-17")

func fixedClock() time.Time { return testNow }

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads []submission.Payload
	result   submission.Result
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeSubmitter) SubmitRequest(ctx context.Context, payload submission.Payload) (submission.Result, error) {
	f.mu.Lock()
	f.calls++
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	store     *session.MemoryStore
	scoped    session.Store
	simulator *simulator.Simulator
	submitter *fakeSubmitter
}

func newFixture() *fixture {
	store := session.NewMemoryStore(0)
	scoped := session.Scope(store, "test-session")
	return &fixture{
		store:     store,
		scoped:    scoped,
		simulator: simulator.New(scoped, simulator.DefaultTariff(), nil, simulator.WithClock(fixedClock)),
		submitter: &fakeSubmitter{result: submission.Result{Success: true, RequestID: "req-1"}},
	}
}

func (f *fixture) wizard(cfg Config) *Wizard {
	w := New(f.scoped, f.simulator, f.submitter, cfg, nil,
		WithClock(fixedClock),
		WithLocalizer(i18n.New(language.English)),
	)
	w.Open(context.Background())
	return w
}

// syncConfig saves on every change.
func syncConfig() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 0
	return cfg
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, ok, err := f.scoped.Get(context.Background(), key)
	require.NoError(t, err)
	return value, ok
}

var validAnswers = map[int]map[FieldKey]string{
	1: {
		Salutation:    "Ms",
		FirstName:     "Anna",
		LastName:      "Rossi-Bernasconi",
		DateOfBirth:   "1985-04-12",
		Nationality:   "Svizzera",
		MaritalStatus: "Married",
		Email:         "anna.rossi@example.ch",
		PhoneAreaCode: "+41",
		PhoneNumber:   "79 123 45 67",
		PhoneType:     PhoneMobile,
		Street:        "Via Nassa",
		HouseNumber:   "5",
		PostalCode:    "6900",
		City:          "Lugano",
		Country:       "Svizzera",
	},
	2: {
		ProfessionalSituation:  SituationEmployed,
		EmployerName:           "Banca dello Stato",
		EmployerAddress:        "Viale H. Guisan 5, Bellinzona",
		EmploymentRelationship: "Permanent",
		TenureYears:            "5",
		TenureMonths:           "3",
		CommutingMethod:        "Public transport",
		NetMonthlyIncome:       "6'500",
		ThirteenthSalary:       Yes,
		ReceivesBonus:          No,
		HasSideIncome:          No,
		BeneficialOwner:        "Self",
	},
	3: {
		HousingSituation: "Rent",
		HousingCost:      "1'600",
		HasChildren:      No,
		PaysAlimony:      No,
	},
	4: {
		HeavyLabor:       No,
		HasObligations:   No,
		DebtEnforcements: "0",
	},
	5: {
		CreditProtectionInsurance: Yes,
		Comments:                  "Acquisto auto",
	},
}

func fillStep(t *testing.T, w *Wizard, step int) {
	t.Helper()
	for key, value := range validAnswers[step] {
		require.NoError(t, w.SetField(key, value))
	}
}

func validDraft(steps ...int) *Draft {
	d := NewDraft()
	for _, step := range steps {
		for key, value := range validAnswers[step] {
			*scalarFields[key](d) = value
		}
	}
	return d
}

func pdf(name string) *Document {
	data := []byte("%PDF-1.7\n")
	return &Document{FileName: name, ContentType: "application/pdf", Size: int64(len(data)), Data: data}
}

func attachRequired(t *testing.T, w *Wizard) {
	t.Helper()
	for _, req := range DocumentCatalog() {
		if req.Optional {
			continue
		}
		require.NoError(t, w.AttachDocument(req.Key, pdf(string(req.Key)+".pdf")))
	}
}

// toLastStep fills every step and advances to the documents step.
func toLastStep(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	for step := 1; step <= 5; step++ {
		fillStep(t, w, step)
		require.NoError(t, w.Next(ctx))
	}
	require.Equal(t, 6, w.State().Step)
}
