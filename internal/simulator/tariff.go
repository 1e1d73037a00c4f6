package simulator

import (
	"fmt"

	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// RateBand is an annual rate range expressed as decimal fractions.
type RateBand struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

// Tariff holds the rate bands and guarantee fee factors, selected by the
// property flag.
type Tariff struct {
	WithProperty             RateBand `mapstructure:"withProperty" json:"withProperty"`
	WithoutProperty          RateBand `mapstructure:"withoutProperty" json:"withoutProperty"`
	GuaranteeWithProperty    float64  `mapstructure:"guaranteeWithProperty" json:"guaranteeWithProperty"`
	GuaranteeWithoutProperty float64  `mapstructure:"guaranteeWithoutProperty" json:"guaranteeWithoutProperty"`
}

// DefaultTariff returns the published rates.
func DefaultTariff() Tariff {
	return Tariff{
		WithProperty:             RateBand{Min: constants.MinRateWithProperty, Max: constants.MaxRateWithProperty},
		WithoutProperty:          RateBand{Min: constants.MinRateWithoutProperty, Max: constants.MaxRateWithoutProperty},
		GuaranteeWithProperty:    constants.GuaranteeFactorWithProperty,
		GuaranteeWithoutProperty: constants.GuaranteeFactorWithoutProperty,
	}
}

// Band selects the rate band for the property flag.
func (t Tariff) Band(hasProperty bool) RateBand {
	if hasProperty {
		return t.WithProperty
	}
	return t.WithoutProperty
}

// GuaranteeFactor selects the fee factor for the property flag.
func (t Tariff) GuaranteeFactor(hasProperty bool) float64 {
	if hasProperty {
		return t.GuaranteeWithProperty
	}
	return t.GuaranteeWithoutProperty
}

// Validate checks the rate bands are ordered and positive.
func (t Tariff) Validate() error {
	for name, band := range map[string]RateBand{"withProperty": t.WithProperty, "withoutProperty": t.WithoutProperty} {
		if band.Min <= 0 || band.Max <= 0 {
			return fmt.Errorf("tariff %s: rates must be positive", name)
		}
		if band.Min > band.Max {
			return fmt.Errorf("tariff %s: min rate %.4f exceeds max rate %.4f", name, band.Min, band.Max)
		}
	}
	if t.GuaranteeWithProperty < 0 || t.GuaranteeWithoutProperty < 0 {
		return fmt.Errorf("tariff: guarantee factors cannot be negative")
	}
	return nil
}
