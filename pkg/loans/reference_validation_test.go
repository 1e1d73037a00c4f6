package loans

import (
	"fmt"
	"math"
	"testing"
)

// ReferencePayment represents a single payment from the reference schedule
type ReferencePayment struct {
	Month            int
	Payment          float64
	PrincipalPayment float64
	Interest         float64
	LoanBalance      float64
}

// getReferenceSchedule returns a published amortization schedule for a
// 175'000 loan at 4.5% over 360 months.
func getReferenceSchedule() []ReferencePayment {
	return []ReferencePayment{
		{1, 886.70, 230.45, 656.25, 174769.55},
		{2, 886.70, 231.31, 655.39, 174538.24},
		{3, 886.70, 232.18, 654.52, 174306.06},
		{4, 886.70, 233.05, 653.65, 174073.00},
		{5, 886.70, 233.93, 652.77, 173839.08},
		{6, 886.70, 234.80, 651.90, 173604.28},
		{7, 886.70, 235.68, 651.02, 173368.59},
		{8, 886.70, 236.57, 650.13, 173132.03},
		{9, 886.70, 237.45, 649.25, 172894.57},
		{10, 886.70, 238.34, 648.35, 172656.23},
		{11, 886.70, 239.24, 647.46, 172416.99},
		{12, 886.70, 240.14, 646.56, 172176.85},
		// Adding key milestone months for validation
		{24, 886.70, 251.17, 635.53, 169224.01},
		{36, 886.70, 262.71, 623.99, 166135.52},
		{60, 886.70, 287.40, 599.30, 159526.36},
		{120, 886.70, 359.76, 526.94, 140156.51},
		{180, 886.70, 450.35, 436.35, 115909.42},
		{240, 886.70, 563.75, 322.95, 85557.02},
		{300, 886.70, 705.70, 181.00, 47562.00},
		{359, 886.70, 880.09, 6.61, 883.39},
		{360, 886.70, 883.39, 3.31, 0.00},
	}
}

func TestScheduleAgainstReference(t *testing.T) {
	schedule := Schedule(175000, 0.045, 360)
	if len(schedule) != 360 {
		t.Fatalf("Schedule() returned %d payments, expected 360", len(schedule))
	}

	tolerance := 0.50

	for _, ref := range getReferenceSchedule() {
		payment := schedule[ref.Month-1]

		t.Run(fmt.Sprintf("Month_%d", ref.Month), func(t *testing.T) {
			if payment.Month != ref.Month {
				t.Errorf("Month mismatch: got %d, expected %d", payment.Month, ref.Month)
			}
			if math.Abs(payment.Payment-ref.Payment) > tolerance {
				t.Errorf("Payment amount mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Payment, ref.Payment, math.Abs(payment.Payment-ref.Payment))
			}
			if math.Abs(payment.Principal-ref.PrincipalPayment) > tolerance {
				t.Errorf("Principal payment mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Principal, ref.PrincipalPayment, math.Abs(payment.Principal-ref.PrincipalPayment))
			}
			if math.Abs(payment.Interest-ref.Interest) > tolerance {
				t.Errorf("Interest payment mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.Interest, ref.Interest, math.Abs(payment.Interest-ref.Interest))
			}
			if math.Abs(payment.RemainingPrincipal-ref.LoanBalance) > tolerance {
				t.Errorf("Remaining balance mismatch: got %.2f, expected %.2f (diff: %.2f)",
					payment.RemainingPrincipal, ref.LoanBalance, math.Abs(payment.RemainingPrincipal-ref.LoanBalance))
			}

			calculatedPayment := payment.Principal + payment.Interest
			if math.Abs(calculatedPayment-payment.Payment) > 0.01 {
				t.Errorf("Payment components don't add up: Principal(%.2f) + Interest(%.2f) = %.2f, but Payment = %.2f",
					payment.Principal, payment.Interest, calculatedPayment, payment.Payment)
			}
		})
	}
}

func TestMonthlyPaymentCalculationAgainstReference(t *testing.T) {
	monthlyPayment := CalculateMonthlyPayment(175000, 0.045, 360)
	expectedPayment := 886.70
	tolerance := 0.01

	if math.Abs(monthlyPayment-expectedPayment) > tolerance {
		t.Errorf("CalculateMonthlyPayment() = %.2f, expected %.2f (diff: %.2f)",
			monthlyPayment, expectedPayment, math.Abs(monthlyPayment-expectedPayment))
	}
}

func TestScheduleConsistency(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		term      int
	}{
		{"small personal loan", 5000, 0.098, 6},
		{"default simulation", 10000, 0.062, 36},
		{"largest loan", 250000, 0.049, 84},
		{"zero rate", 12000, 0, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schedule := Schedule(tc.principal, tc.rate, tc.term)
			if len(schedule) != tc.term {
				t.Fatalf("Schedule() returned %d payments, expected %d", len(schedule), tc.term)
			}

			previousBalance := tc.principal
			principalSum := 0.0
			for _, payment := range schedule {
				if payment.RemainingPrincipal >= previousBalance {
					t.Fatalf("month %d: balance %.2f did not decrease from %.2f",
						payment.Month, payment.RemainingPrincipal, previousBalance)
				}
				previousBalance = payment.RemainingPrincipal
				principalSum += payment.Principal
			}

			if math.Abs(schedule[tc.term-1].RemainingPrincipal) > 1e-6 {
				t.Errorf("final balance should be zero, got %.6f", schedule[tc.term-1].RemainingPrincipal)
			}
			if math.Abs(principalSum-tc.principal) > 0.01 {
				t.Errorf("principal parts sum to %.2f, expected %.2f", principalSum, tc.principal)
			}
		})
	}
}

func TestScheduleRejectsEmptyLoans(t *testing.T) {
	if Schedule(0, 0.05, 12) != nil {
		t.Error("expected nil schedule for zero principal")
	}
	if Schedule(1000, 0.05, 0) != nil {
		t.Error("expected nil schedule for zero term")
	}
	if Schedule(0.01, 0.05, 12) != nil {
		t.Error("expected nil schedule for a loan of one cent")
	}
}

func TestScheduleSettlesResidualCent(t *testing.T) {
	schedule := Schedule(10000, 0.062, 36)
	if len(schedule) != 36 {
		t.Fatalf("expected 36 payments, got %d", len(schedule))
	}
	for _, p := range schedule[:35] {
		if p.RemainingPrincipal <= 0 {
			t.Fatalf("month %d: balance settled early (%.4f)", p.Month, p.RemainingPrincipal)
		}
	}
	last := schedule[35]
	if last.RemainingPrincipal != 0 {
		t.Errorf("expected final balance 0, got %.10f", last.RemainingPrincipal)
	}
	if diff := math.Abs(last.Payment - schedule[0].Payment); diff > 0.01 {
		t.Errorf("final payment %.4f differs from regular payment %.4f", last.Payment, schedule[0].Payment)
	}
}

func TestReferenceScheduleDataIntegrity(t *testing.T) {
	referenceData := getReferenceSchedule()

	for i, payment := range referenceData {
		t.Run(fmt.Sprintf("RefData_Month_%d", payment.Month), func(t *testing.T) {
			calculatedPayment := payment.PrincipalPayment + payment.Interest
			if math.Abs(calculatedPayment-payment.Payment) > 0.01 {
				t.Errorf("Reference data inconsistent: Principal(%.2f) + Interest(%.2f) = %.2f, but Payment = %.2f",
					payment.PrincipalPayment, payment.Interest, calculatedPayment, payment.Payment)
			}

			if i > 0 && payment.LoanBalance >= referenceData[i-1].LoanBalance {
				t.Errorf("Reference loan balance should decrease: Month %d balance %.2f >= Month %d balance %.2f",
					payment.Month, payment.LoanBalance, referenceData[i-1].Month, referenceData[i-1].LoanBalance)
			}
		})
	}
}
