package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKey names one draft field. Only keys known to the registry are accepted.
type FieldKey string

// Identity and contact.
const (
	Salutation      FieldKey = "salutation"
	FirstName       FieldKey = "firstName"
	LastName        FieldKey = "lastName"
	DateOfBirth     FieldKey = "dateOfBirth"
	Nationality     FieldKey = "nationality"
	MaritalStatus   FieldKey = "maritalStatus"
	ResidencePermit FieldKey = "residencePermit"
	Email           FieldKey = "email"
	PhoneAreaCode   FieldKey = "phoneAreaCode"
	PhoneNumber     FieldKey = "phoneNumber"
	PhoneType       FieldKey = "phoneType"
	Street          FieldKey = "street"
	HouseNumber     FieldKey = "houseNumber"
	PostalCode      FieldKey = "postalCode"
	City            FieldKey = "city"
	Country         FieldKey = "country"
	ResidentSince   FieldKey = "residentSince"
)

// Employment.
const (
	ProfessionalSituation  FieldKey = "professionalSituation"
	EmployerName           FieldKey = "employerName"
	EmployerAddress        FieldKey = "employerAddress"
	EmploymentRelationship FieldKey = "employmentRelationship"
	TenureYears            FieldKey = "tenureYears"
	TenureMonths           FieldKey = "tenureMonths"
	CommutingMethod        FieldKey = "commutingMethod"
	CarNecessary           FieldKey = "carNecessary"
	NetMonthlyIncome       FieldKey = "netMonthlyIncome"
	ThirteenthSalary       FieldKey = "thirteenthSalary"
	ReceivesBonus          FieldKey = "receivesBonus"
	HasSideIncome          FieldKey = "hasSideIncome"
	BeneficialOwner        FieldKey = "beneficialOwner"
)

// Housing, obligations, insurance and loan.
const (
	HousingSituation          FieldKey = "housingSituation"
	HousingCost               FieldKey = "housingCost"
	HasChildren               FieldKey = "hasChildren"
	PaysAlimony               FieldKey = "paysAlimony"
	HeavyLabor                FieldKey = "heavyLabor"
	HasObligations            FieldKey = "hasObligations"
	MonthlyInstalments        FieldKey = "monthlyInstalments"
	DebtEnforcements          FieldKey = "debtEnforcements"
	CreditProtectionInsurance FieldKey = "creditProtectionInsurance"
	Comments                  FieldKey = "comments"
	LoanAmount                FieldKey = "loanAmount"
	LoanDuration              FieldKey = "loanDuration"
	LoanPurpose               FieldKey = "loanPurpose"
	PropertyPledged           FieldKey = "propertyPledged"
)

// AdditionalPhones is the list field holding extra contact numbers.
const AdditionalPhones FieldKey = "additionalPhones"

// Sub-fields of an additional phone.
const (
	PhoneSubAreaCode = "areaCode"
	PhoneSubNumber   = "number"
	PhoneSubType     = "type"
)

var scalarFields = map[FieldKey]func(*Draft) *string{
	Salutation:      func(d *Draft) *string { return &d.Salutation },
	FirstName:       func(d *Draft) *string { return &d.FirstName },
	LastName:        func(d *Draft) *string { return &d.LastName },
	DateOfBirth:     func(d *Draft) *string { return &d.DateOfBirth },
	Nationality:     func(d *Draft) *string { return &d.Nationality },
	MaritalStatus:   func(d *Draft) *string { return &d.MaritalStatus },
	ResidencePermit: func(d *Draft) *string { return &d.ResidencePermit },
	Email:           func(d *Draft) *string { return &d.Email },
	PhoneAreaCode:   func(d *Draft) *string { return &d.PhoneAreaCode },
	PhoneNumber:     func(d *Draft) *string { return &d.PhoneNumber },
	PhoneType:       func(d *Draft) *string { return &d.PhoneType },
	Street:          func(d *Draft) *string { return &d.Street },
	HouseNumber:     func(d *Draft) *string { return &d.HouseNumber },
	PostalCode:      func(d *Draft) *string { return &d.PostalCode },
	City:            func(d *Draft) *string { return &d.City },
	Country:         func(d *Draft) *string { return &d.Country },
	ResidentSince:   func(d *Draft) *string { return &d.ResidentSince },

	ProfessionalSituation:  func(d *Draft) *string { return &d.ProfessionalSituation },
	EmployerName:           func(d *Draft) *string { return &d.EmployerName },
	EmployerAddress:        func(d *Draft) *string { return &d.EmployerAddress },
	EmploymentRelationship: func(d *Draft) *string { return &d.EmploymentRelationship },
	TenureYears:            func(d *Draft) *string { return &d.TenureYears },
	TenureMonths:           func(d *Draft) *string { return &d.TenureMonths },
	CommutingMethod:        func(d *Draft) *string { return &d.CommutingMethod },
	CarNecessary:           func(d *Draft) *string { return &d.CarNecessary },
	NetMonthlyIncome:       func(d *Draft) *string { return &d.NetMonthlyIncome },
	ThirteenthSalary:       func(d *Draft) *string { return &d.ThirteenthSalary },
	ReceivesBonus:          func(d *Draft) *string { return &d.ReceivesBonus },
	HasSideIncome:          func(d *Draft) *string { return &d.HasSideIncome },
	BeneficialOwner:        func(d *Draft) *string { return &d.BeneficialOwner },

	HousingSituation:          func(d *Draft) *string { return &d.HousingSituation },
	HousingCost:               func(d *Draft) *string { return &d.HousingCost },
	HasChildren:               func(d *Draft) *string { return &d.HasChildren },
	PaysAlimony:               func(d *Draft) *string { return &d.PaysAlimony },
	HeavyLabor:                func(d *Draft) *string { return &d.HeavyLabor },
	HasObligations:            func(d *Draft) *string { return &d.HasObligations },
	MonthlyInstalments:        func(d *Draft) *string { return &d.MonthlyInstalments },
	DebtEnforcements:          func(d *Draft) *string { return &d.DebtEnforcements },
	CreditProtectionInsurance: func(d *Draft) *string { return &d.CreditProtectionInsurance },
	Comments:                  func(d *Draft) *string { return &d.Comments },
	LoanAmount:                func(d *Draft) *string { return &d.LoanAmount },
	LoanDuration:              func(d *Draft) *string { return &d.LoanDuration },
	LoanPurpose:               func(d *Draft) *string { return &d.LoanPurpose },
	PropertyPledged:           func(d *Draft) *string { return &d.PropertyPledged },
}

// ParseFieldKey accepts the name of a scalar draft field.
func ParseFieldKey(name string) (FieldKey, error) {
	key := FieldKey(strings.TrimSpace(name))
	if _, ok := scalarFields[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return key, nil
}

// FieldKeys lists every scalar field key in a stable order.
func FieldKeys() []FieldKey {
	keys := make([]FieldKey, 0, len(fieldOrder))
	keys = append(keys, fieldOrder...)
	return keys
}

var fieldOrder = []FieldKey{
	Salutation, FirstName, LastName, DateOfBirth, Nationality, MaritalStatus, ResidencePermit,
	Email, PhoneAreaCode, PhoneNumber, PhoneType,
	Street, HouseNumber, PostalCode, City, Country, ResidentSince,
	ProfessionalSituation, EmployerName, EmployerAddress, EmploymentRelationship,
	TenureYears, TenureMonths, CommutingMethod, CarNecessary, NetMonthlyIncome,
	ThirteenthSalary, ReceivesBonus, HasSideIncome, BeneficialOwner,
	HousingSituation, HousingCost, HasChildren, PaysAlimony,
	HeavyLabor, HasObligations, MonthlyInstalments, DebtEnforcements,
	CreditProtectionInsurance, Comments,
	LoanAmount, LoanDuration, LoanPurpose, PropertyPledged,
}

// PhoneFieldKey builds the composite key of an additional phone sub-field,
// e.g. "additionalPhones.0.areaCode".
func PhoneFieldKey(index int, sub string) FieldKey {
	return FieldKey(string(AdditionalPhones) + "." + strconv.Itoa(index) + "." + sub)
}

func isPhoneSub(sub string) bool {
	switch sub {
	case PhoneSubAreaCode, PhoneSubNumber, PhoneSubType:
		return true
	}
	return false
}

// phoneIndex extracts the list index from a composite phone key.
func phoneIndex(key FieldKey) (int, bool) {
	parts := strings.Split(string(key), ".")
	if len(parts) != 3 || parts[0] != string(AdditionalPhones) {
		return 0, false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
