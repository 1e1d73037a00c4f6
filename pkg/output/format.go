// Package output formats simulation results for the command line.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/format"
	"github.com/iwvelando/credit-wizard/pkg/loans"
)

// Report is a simulation with the optional amortization schedules of the
// lowest and highest rate.
type Report struct {
	Snapshot    simulator.Snapshot
	MinSchedule []loans.Payment
	MaxSchedule []loans.Payment
}

// NewReport builds a report. Schedules are computed on the amortized part
// only; the guarantee fee is added to every instalment.
func NewReport(snap simulator.Snapshot, withSchedule bool) Report {
	r := Report{Snapshot: snap}
	if withSchedule {
		r.MinSchedule = withFee(loans.Schedule(snap.Amount, snap.MinRate, snap.DurationMonths), snap.GuaranteeFee)
		r.MaxSchedule = withFee(loans.Schedule(snap.Amount, snap.MaxRate, snap.DurationMonths), snap.GuaranteeFee)
	}
	return r
}

func withFee(schedule []loans.Payment, fee float64) []loans.Payment {
	for i := range schedule {
		schedule[i].Payment += fee
	}
	return schedule
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// PrettyFormat writes a human-readable summary.
func PrettyFormat(w io.Writer, r Report) {
	p := message.NewPrinter(language.English)
	s := r.Snapshot

	fmt.Fprintf(w, "--- Credit simulation ---\n")
	fmt.Fprintf(w, "Amount          | %s\n", format.Currency(s.Amount))
	fmt.Fprintf(w, "Duration        | %d months\n", s.DurationMonths)
	fmt.Fprintf(w, "Property        | %s\n", yesNo(s.HasProperty))
	fmt.Fprintf(w, "Guarantee       | %s\n", yesNo(s.HasGuarantee))
	_, _ = p.Fprintf(w, "Annual rate     | %.2f%% - %.2f%%\n", s.MinRate*100, s.MaxRate*100)
	fmt.Fprintf(w, "Monthly payment | %s - %s\n", format.Currency(s.MinMonthlyPayment), format.Currency(s.MaxMonthlyPayment))
	if s.HasGuarantee {
		fmt.Fprintf(w, "Guarantee fee   | %s per month\n", format.Currency(s.GuaranteeFee))
	}
	fmt.Fprintf(w, "Total repayment | %s - %s\n", format.Currency(s.TotalMinRepayment), format.Currency(s.TotalMaxRepayment))

	for _, sched := range []struct {
		title    string
		rate     float64
		payments []loans.Payment
	}{
		{"lowest", s.MinRate, r.MinSchedule},
		{"highest", s.MaxRate, r.MaxSchedule},
	} {
		if len(sched.payments) == 0 {
			continue
		}
		_, _ = p.Fprintf(w, "\n--- Schedule at the %s rate (%.2f%%) ---\n", sched.title, sched.rate*100)
		fmt.Fprintf(w, "Month | Payment         | Principal       | Interest        | Balance\n")
		fmt.Fprintf(w, "_____ | _______________ | _______________ | _______________ | _______________\n")
		for _, pay := range sched.payments {
			fmt.Fprintf(w, "%5d | %15s | %15s | %15s | %s\n", pay.Month,
				format.Currency(pay.Payment), format.Currency(pay.Principal),
				format.Currency(pay.Interest), format.Currency(pay.RemainingPrincipal))
		}
	}
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// CsvFormat writes the simulation as CSV. Without schedules a single summary
// row is written; otherwise one row per month with both rates side by side.
func CsvFormat(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	s := r.Snapshot

	if len(r.MinSchedule) == 0 {
		records := [][]string{
			{"amount", "duration_months", "has_property", "has_guarantee", "min_rate", "max_rate",
				"min_monthly_payment", "max_monthly_payment", "guarantee_fee",
				"total_min_repayment", "total_max_repayment", "currency"},
			{amount(s.Amount), strconv.Itoa(s.DurationMonths), strconv.FormatBool(s.HasProperty),
				strconv.FormatBool(s.HasGuarantee), rate(s.MinRate), rate(s.MaxRate),
				amount(s.MinMonthlyPayment), amount(s.MaxMonthlyPayment), amount(s.GuaranteeFee),
				amount(s.TotalMinRepayment), amount(s.TotalMaxRepayment), constants.CurrencyCode},
		}
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	header := []string{"month",
		fmt.Sprintf("payment (%s)", rate(s.MinRate)), fmt.Sprintf("principal (%s)", rate(s.MinRate)),
		fmt.Sprintf("interest (%s)", rate(s.MinRate)), fmt.Sprintf("balance (%s)", rate(s.MinRate)),
		fmt.Sprintf("payment (%s)", rate(s.MaxRate)), fmt.Sprintf("principal (%s)", rate(s.MaxRate)),
		fmt.Sprintf("interest (%s)", rate(s.MaxRate)), fmt.Sprintf("balance (%s)", rate(s.MaxRate)),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for i, low := range r.MinSchedule {
		high := r.MaxSchedule[i]
		record := []string{strconv.Itoa(low.Month),
			amount(low.Payment), amount(low.Principal), amount(low.Interest), amount(low.RemainingPrincipal),
			amount(high.Payment), amount(high.Principal), amount(high.Interest), amount(high.RemainingPrincipal),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
