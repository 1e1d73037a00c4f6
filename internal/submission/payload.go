// Package submission accepts finished loan applications: it stores them as
// inbound requests for the back-office and announces them to subscribers.
package submission

import (
	"github.com/iwvelando/credit-wizard/internal/simulator"
)

// ServicePersonalLoan is the service label carried by wizard submissions.
const ServicePersonalLoan = "personal-loan"

// Payload is what the wizard hands over on submit.
type Payload struct {
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Service        string              `json:"service"`
	Language       string              `json:"language"`
	Description    string              `json:"description"`
	AdditionalData AdditionalData      `json:"additionalData"`
	Simulation     *simulator.Snapshot `json:"simulation,omitempty"`
	Files          []File              `json:"-"`
}

// AdditionalData groups the structured answers by topic.
type AdditionalData struct {
	Personal   Personal   `json:"personal"`
	Employment Employment `json:"employment"`
	Financial  Financial  `json:"financial"`
	Loan       Loan       `json:"loan"`
}

// Phone is one contact number.
type Phone struct {
	AreaCode string `json:"areaCode"`
	Number   string `json:"number"`
	Type     string `json:"type"`
}

// Personal holds identity, contact and residence answers.
type Personal struct {
	Salutation      string  `json:"salutation"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	DateOfBirth     string  `json:"dateOfBirth"`
	Nationality     string  `json:"nationality"`
	MaritalStatus   string  `json:"maritalStatus"`
	ResidencePermit string  `json:"residencePermit,omitempty"`
	Street          string  `json:"street"`
	HouseNumber     string  `json:"houseNumber,omitempty"`
	PostalCode      string  `json:"postalCode"`
	City            string  `json:"city"`
	Country         string  `json:"country"`
	Phones          []Phone `json:"phones"`
}

// Employment holds the professional situation answers.
type Employment struct {
	ProfessionalSituation  string `json:"professionalSituation"`
	EmployerName           string `json:"employerName,omitempty"`
	EmployerAddress        string `json:"employerAddress,omitempty"`
	EmploymentRelationship string `json:"employmentRelationship,omitempty"`
	TenureYears            int    `json:"tenureYears,omitempty"`
	TenureMonths           int    `json:"tenureMonths,omitempty"`
	CommutingMethod        string `json:"commutingMethod"`
	CarNecessary           string `json:"carNecessary,omitempty"`
	ThirteenthSalary       string `json:"thirteenthSalary"`
	ReceivesBonus          string `json:"receivesBonus"`
	HasSideIncome          string `json:"hasSideIncome"`
	BeneficialOwner        string `json:"beneficialOwner"`
}

// Financial holds income, housing and obligation answers.
type Financial struct {
	NetMonthlyIncome          float64 `json:"netMonthlyIncome"`
	HousingSituation          string  `json:"housingSituation"`
	HousingCost               float64 `json:"housingCost"`
	HasChildren               string  `json:"hasChildren"`
	PaysAlimony               string  `json:"paysAlimony"`
	HeavyLabor                string  `json:"heavyLabor"`
	HasObligations            string  `json:"hasObligations"`
	MonthlyInstalments        float64 `json:"monthlyInstalments,omitempty"`
	DebtEnforcements          string  `json:"debtEnforcements"`
	CreditProtectionInsurance string  `json:"creditProtectionInsurance"`
}

// Loan holds the requested credit.
type Loan struct {
	Amount          float64 `json:"amount"`
	DurationMonths  int     `json:"durationMonths"`
	Purpose         string  `json:"purpose,omitempty"`
	PropertyPledged string  `json:"propertyPledged,omitempty"`
	Comments        string  `json:"comments,omitempty"`
}

// File is one uploaded document with the slot it was attached to.
type File struct {
	DocumentType string
	FileName     string
	ContentType  string
	Size         int64
	Data         []byte
}

// Result is the collaborator answer. Error carries user-facing text when
// Success is false.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
