package loans

import (
	"math"
	"testing"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		annualRate    float64
		termMonths    int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Personal loan without property at min rate",
			principal:     10000,
			annualRate:    0.062,
			termMonths:    36,
			expectedRange: []float64{305, 306}, // Around 305.13
		},
		{
			name:          "Personal loan without property at max rate",
			principal:     10000,
			annualRate:    0.098,
			termMonths:    36,
			expectedRange: []float64{321, 322}, // Around 321.73
		},
		{
			name:          "Zero interest loan",
			principal:     12000,
			annualRate:    0.0,
			termMonths:    60,
			expectedRange: []float64{200, 200},
		},
		{
			name:          "Zero term",
			principal:     12000,
			annualRate:    0.05,
			termMonths:    0,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "Largest loan longest term",
			principal:     250000,
			annualRate:    0.049,
			termMonths:    84,
			expectedRange: []float64{3515, 3525},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualRate, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateMonthlyPaymentRepaysPrincipal(t *testing.T) {
	principal := 20000.0
	rate := 0.08
	term := 48

	payment := CalculateMonthlyPayment(principal, rate, term)
	remaining := principal
	for month := 0; month < term; month++ {
		interest := CalculateInterestPayment(remaining, rate)
		remaining -= payment - interest
	}

	if math.Abs(remaining) > 0.01 {
		t.Errorf("expected the schedule to end at zero, got %.4f", remaining)
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		rate      float64
		expected  float64
	}{
		{"Standard", 12000, 0.06, 60},
		{"Zero rate", 12000, 0, 0},
		{"Zero balance", 0, 0.06, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remaining, tt.rate)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("CalculateInterestPayment() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestTotalRepayment(t *testing.T) {
	if got := TotalRepayment(323.3, 36); math.Abs(got-11638.8) > 0.0001 {
		t.Errorf("TotalRepayment() = %v, expected 11638.8", got)
	}
	if got := TotalRepayment(323.3, 0); got != 0 {
		t.Errorf("TotalRepayment() with zero term = %v, expected 0", got)
	}
}
