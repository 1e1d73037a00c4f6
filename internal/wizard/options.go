package wizard

import "strings"

// Answer values shared by yes/no questions.
const (
	Yes = "Yes"
	No  = "No"
)

// Phone types.
const (
	PhoneMobile   = "mobile"
	PhoneLandline = "landline"
	PhoneWork     = "work"
)

// Professional situations.
const (
	SituationEmployed     = "Employed"
	SituationSelfEmployed = "Self-employed"
	SituationPensioner    = "Pensioner (AHV/IV)"
	SituationUnemployed   = "Unemployed"
	SituationStudent      = "Student"
	SituationOther        = "Other"
)

// CommuteCar is the commuting method that makes carNecessary mandatory.
const CommuteCar = "Car"

var (
	yesNo            = []string{Yes, No}
	salutations      = []string{"Mr", "Ms"}
	phoneTypes       = []string{PhoneMobile, PhoneLandline, PhoneWork}
	maritalStatuses  = []string{"Single", "Married", "Registered partnership", "Divorced", "Separated", "Widowed"}
	residencePermits = []string{"B", "C", "G", "L", "Other"}
	situations       = []string{
		SituationEmployed, SituationSelfEmployed, SituationPensioner,
		SituationUnemployed, SituationStudent, SituationOther,
	}
	relationships    = []string{"Permanent", "Fixed-term", "Temporary", "Hourly"}
	commutingMethods = []string{CommuteCar, "Public transport", "Bicycle", "On foot", "Motorbike", "Other"}
	beneficialOwners = []string{"Self", "Third party"}
	housingOptions   = []string{"Rent", "Owner", "Living with family", "Employer housing", "Other"}
	enforcements     = []string{"0", "1", "2", "3", "more"}
)

// Choices lists the accepted values of every closed-choice field.
func Choices() map[FieldKey][]string {
	return map[FieldKey][]string{
		Salutation:                salutations,
		MaritalStatus:             maritalStatuses,
		ResidencePermit:           residencePermits,
		PhoneType:                 phoneTypes,
		ProfessionalSituation:     situations,
		EmploymentRelationship:    relationships,
		CommutingMethod:           commutingMethods,
		CarNecessary:              yesNo,
		ThirteenthSalary:          yesNo,
		ReceivesBonus:             yesNo,
		HasSideIncome:             yesNo,
		BeneficialOwner:           beneficialOwners,
		HousingSituation:          housingOptions,
		HasChildren:               yesNo,
		PaysAlimony:               yesNo,
		HeavyLabor:                yesNo,
		HasObligations:            yesNo,
		DebtEnforcements:          enforcements,
		CreditProtectionInsurance: yesNo,
		PropertyPledged:           yesNo,
	}
}

func oneOf(value string, options []string) bool {
	value = strings.TrimSpace(value)
	for _, o := range options {
		if strings.EqualFold(value, o) {
			return true
		}
	}
	return false
}

func is(value, option string) bool {
	return strings.EqualFold(strings.TrimSpace(value), option)
}

var swissNationalities = []string{"swiss", "svizzera", "svizzero", "suisse", "schweiz", "schweizer", "schweizerin", "ch", "che", "switzerland"}

func isSwissNationality(value string) bool {
	return oneOf(value, swissNationalities)
}
