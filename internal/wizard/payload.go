package wizard

import (
	"strings"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/internal/submission"
	"github.com/iwvelando/credit-wizard/pkg/format"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

// BuildPayload flattens a validated draft into the submission request. Empty
// document slots are omitted.
func BuildPayload(d *Draft, snap *simulator.Snapshot, l *i18n.Localizer) submission.Payload {
	loan := loanTerms(d, snap)

	comments := strings.TrimSpace(d.Comments)
	if comments == "" {
		comments = "-"
	}

	phones := []submission.Phone{{
		AreaCode: strings.TrimSpace(d.PhoneAreaCode),
		Number:   strings.TrimSpace(d.PhoneNumber),
		Type:     strings.ToLower(strings.TrimSpace(d.PhoneType)),
	}}
	for _, p := range d.AdditionalPhones {
		phones = append(phones, submission.Phone{
			AreaCode: strings.TrimSpace(p.AreaCode),
			Number:   strings.TrimSpace(p.Number),
			Type:     strings.ToLower(strings.TrimSpace(p.Type)),
		})
	}

	payload := submission.Payload{
		Name:        strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName)),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(phones[0].AreaCode + " " + phones[0].Number),
		Service:     submission.ServicePersonalLoan,
		Language:    l.Language(),
		Description: l.Text(i18n.LoanDescription, format.Currency(loan.Amount), loan.DurationMonths, comments),
		AdditionalData: submission.AdditionalData{
			Personal: submission.Personal{
				Salutation:      strings.TrimSpace(d.Salutation),
				FirstName:       strings.TrimSpace(d.FirstName),
				LastName:        strings.TrimSpace(d.LastName),
				DateOfBirth:     strings.TrimSpace(d.DateOfBirth),
				Nationality:     strings.TrimSpace(d.Nationality),
				MaritalStatus:   strings.TrimSpace(d.MaritalStatus),
				ResidencePermit: strings.TrimSpace(d.ResidencePermit),
				Street:          strings.TrimSpace(d.Street),
				HouseNumber:     strings.TrimSpace(d.HouseNumber),
				PostalCode:      strings.TrimSpace(d.PostalCode),
				City:            strings.TrimSpace(d.City),
				Country:         strings.TrimSpace(d.Country),
				Phones:          phones,
			},
			Employment: submission.Employment{
				ProfessionalSituation:  strings.TrimSpace(d.ProfessionalSituation),
				EmployerName:           strings.TrimSpace(d.EmployerName),
				EmployerAddress:        strings.TrimSpace(d.EmployerAddress),
				EmploymentRelationship: strings.TrimSpace(d.EmploymentRelationship),
				TenureYears:            wholeOrZero(d.TenureYears),
				TenureMonths:           wholeOrZero(d.TenureMonths),
				CommutingMethod:        strings.TrimSpace(d.CommutingMethod),
				CarNecessary:           strings.TrimSpace(d.CarNecessary),
				ThirteenthSalary:       strings.TrimSpace(d.ThirteenthSalary),
				ReceivesBonus:          strings.TrimSpace(d.ReceivesBonus),
				HasSideIncome:          strings.TrimSpace(d.HasSideIncome),
				BeneficialOwner:        strings.TrimSpace(d.BeneficialOwner),
			},
			Financial: submission.Financial{
				NetMonthlyIncome:          numberOrZero(d.NetMonthlyIncome),
				HousingSituation:          strings.TrimSpace(d.HousingSituation),
				HousingCost:               numberOrZero(d.HousingCost),
				HasChildren:               strings.TrimSpace(d.HasChildren),
				PaysAlimony:               strings.TrimSpace(d.PaysAlimony),
				HeavyLabor:                strings.TrimSpace(d.HeavyLabor),
				HasObligations:            strings.TrimSpace(d.HasObligations),
				DebtEnforcements:          strings.TrimSpace(d.DebtEnforcements),
				CreditProtectionInsurance: strings.TrimSpace(d.CreditProtectionInsurance),
			},
			Loan: submission.Loan{
				Amount:          loan.Amount,
				DurationMonths:  loan.DurationMonths,
				Purpose:         strings.TrimSpace(d.LoanPurpose),
				PropertyPledged: strings.TrimSpace(d.PropertyPledged),
				Comments:        strings.TrimSpace(d.Comments),
			},
		},
		Simulation: snap,
	}
	if hasObligations(d) {
		payload.AdditionalData.Financial.MonthlyInstalments = numberOrZero(d.MonthlyInstalments)
	}

	for _, req := range documentCatalog {
		doc := d.Documents[req.Key]
		if doc == nil {
			continue
		}
		payload.Files = append(payload.Files, submission.File{
			DocumentType: string(req.Key),
			FileName:     doc.FileName,
			ContentType:  doc.ContentType,
			Size:         doc.Size,
			Data:         doc.Data,
		})
	}
	return payload
}

// loanTerms picks the draft's loan values, then the simulation's, then the defaults.
func loanTerms(d *Draft, snap *simulator.Snapshot) simulator.Input {
	in := simulator.DefaultInput()
	if snap != nil {
		in = snap.Input
	}
	if amount, err := simulator.ParseAmount(d.LoanAmount); err == nil {
		in.Amount = amount
	}
	if months, err := simulator.ParseDuration(d.LoanDuration); err == nil {
		in.DurationMonths = months
	}
	if oneOf(d.PropertyPledged, yesNo) {
		in.HasProperty = is(d.PropertyPledged, Yes)
	}
	if oneOf(d.CreditProtectionInsurance, yesNo) {
		in.HasGuarantee = is(d.CreditProtectionInsurance, Yes)
	}
	return in
}

func numberOrZero(v string) float64 {
	n, err := validation.ParseNumber(v)
	if err != nil {
		return 0
	}
	return n
}

func wholeOrZero(v string) int {
	n, err := validation.ParseWholeNumber(v)
	if err != nil {
		return 0
	}
	return n
}
