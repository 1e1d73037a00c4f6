package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/credit-wizard/internal/simulator"
)

func testSnapshot(t *testing.T, in simulator.Input) simulator.Snapshot {
	t.Helper()
	result, err := simulator.Calculate(simulator.DefaultTariff(), in, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return simulator.Snapshot{Input: in, Result: result}
}

func TestPrettyFormat(t *testing.T) {
	snap := testSnapshot(t, simulator.Input{Amount: 10000, DurationMonths: 36})

	var buf bytes.Buffer
	PrettyFormat(&buf, NewReport(snap, false))
	out := buf.String()

	for _, want := range []string{
		"--- Credit simulation ---",
		"Amount          | CHF 10'000.00",
		"Duration        | 36 months",
		"Guarantee       | no",
		"Annual rate     | 6.20% - 9.80%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Guarantee fee") {
		t.Error("guarantee fee must only be shown when a guarantee is requested")
	}
	if strings.Contains(out, "Schedule") {
		t.Error("schedule must only be shown on request")
	}
}

func TestPrettyFormatWithGuaranteeAndSchedule(t *testing.T) {
	snap := testSnapshot(t, simulator.Input{Amount: 20000, DurationMonths: 12, HasGuarantee: true, HasProperty: true})

	var buf bytes.Buffer
	PrettyFormat(&buf, NewReport(snap, true))
	out := buf.String()

	for _, want := range []string{
		"Guarantee fee   | CHF 32.50 per month",
		"--- Schedule at the lowest rate (4.90%) ---",
		"--- Schedule at the highest rate (8.00%) ---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n   12 | "); got != 2 {
		t.Errorf("expected month 12 in both schedules, found %d", got)
	}
}

func TestNewReportAddsGuaranteeFee(t *testing.T) {
	snap := testSnapshot(t, simulator.Input{Amount: 10000, DurationMonths: 24, HasGuarantee: true})
	report := NewReport(snap, true)

	if len(report.MinSchedule) != 24 || len(report.MaxSchedule) != 24 {
		t.Fatalf("expected 24 payments per schedule, got %d and %d", len(report.MinSchedule), len(report.MaxSchedule))
	}
	first := report.MinSchedule[0]
	if diff := first.Payment - (first.Principal + first.Interest); diff < snap.GuaranteeFee-0.001 || diff > snap.GuaranteeFee+0.001 {
		t.Errorf("expected fee %.2f on top of the instalment, got %.4f", snap.GuaranteeFee, diff)
	}
	if diff := first.Payment - snap.MinMonthlyPayment; diff > 0.01 || diff < -0.01 {
		t.Errorf("first instalment %.2f differs from simulated payment %.2f", first.Payment, snap.MinMonthlyPayment)
	}
}

func TestCsvFormatSummary(t *testing.T) {
	snap := testSnapshot(t, simulator.Input{Amount: 10000, DurationMonths: 36})

	var buf bytes.Buffer
	if err := CsvFormat(&buf, NewReport(snap, false)); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	if records[0][0] != "amount" || records[1][0] != "10000.00" {
		t.Errorf("unexpected amount column %q = %q", records[0][0], records[1][0])
	}
	if records[1][4] != "0.0620" || records[1][5] != "0.0980" {
		t.Errorf("unexpected rates %q - %q", records[1][4], records[1][5])
	}
	if records[1][11] != "CHF" {
		t.Errorf("expected CHF currency, got %q", records[1][11])
	}
}

func TestCsvFormatSchedule(t *testing.T) {
	snap := testSnapshot(t, simulator.Input{Amount: 5000, DurationMonths: 6})

	var buf bytes.Buffer
	if err := CsvFormat(&buf, NewReport(snap, true)); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header and 6 months, got %d records", len(records))
	}
	if records[0][1] != "payment (0.0620)" || records[0][5] != "payment (0.0980)" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[6][0] != "6" || records[6][4] != "0.00" || records[6][8] != "0.00" {
		t.Errorf("expected final month to settle the balance, got %v", records[6])
	}
}
