// Package loans provides common loan processing utilities.
package loans

import (
	"math"

	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/mathutil"
)

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. annualRate is a decimal fraction (0.062 for 6.2%).
func CalculateMonthlyPayment(principal, annualRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicRate := annualRate / constants.MonthsPerYear
	return principal * periodicRate / (1 - math.Pow(1+periodicRate, -float64(termMonths)))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRate float64) float64 {
	return remainingPrincipal * annualRate / constants.MonthsPerYear
}

// TotalRepayment is the sum of all monthly payments over the term.
func TotalRepayment(monthlyPayment float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	return monthlyPayment * float64(termMonths)
}

// Payment holds the values of one instalment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Schedule returns the amortization schedule of a fixed-rate loan. The last
// instalment settles whatever balance is left so the schedule ends at zero.
// Loans of a cent or less have no schedule.
func Schedule(principal, annualRate float64, termMonths int) []Payment {
	if termMonths <= 0 || !mathutil.IsPositive(principal) {
		return nil
	}

	monthlyPayment := CalculateMonthlyPayment(principal, annualRate, termMonths)
	schedule := make([]Payment, 0, termMonths)
	remaining := principal

	for month := 1; month <= termMonths; month++ {
		interest := CalculateInterestPayment(remaining, annualRate)
		principalPart := monthlyPayment - interest
		if month == termMonths || principalPart > remaining ||
			mathutil.WithinTolerance(principalPart, remaining, constants.CurrencyTolerance) {
			principalPart = remaining
		}
		remaining -= principalPart

		schedule = append(schedule, Payment{
			Month:              month,
			Payment:            principalPart + interest,
			Principal:          principalPart,
			Interest:           interest,
			RemainingPrincipal: remaining,
		})
	}
	return schedule
}
