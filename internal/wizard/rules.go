package wizard

import (
	"errors"
	"strings"
	"time"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/datetime"
	"github.com/iwvelando/credit-wizard/pkg/format"
	"github.com/iwvelando/credit-wizard/pkg/mathutil"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

// Numeric bounds of the financial questions.
const (
	MinNetMonthlyIncome   = 1000.0
	MaxNetMonthlyIncome   = 1000000.0
	MinHousingCost        = 100.0
	MaxHousingCost        = 50000.0
	MinMonthlyInstalments = 0.0
	MaxMonthlyInstalments = 100000.0
	MaxTenureYears        = 100
	MaxTenureMonths       = 11
)

// Context is what rules are evaluated against.
type Context struct {
	Draft           *Draft
	Now             time.Time
	MaxDocumentSize int64
}

// Rule is one declarative check. A rule whose Applies returns false is
// skipped; a nil Applies always applies.
type Rule struct {
	Field    FieldKey
	Applies  func(*Context) bool
	Violated func(*Context) bool
	Message  func(*i18n.Localizer, *Context) string
}

type getter func(*Draft) string

func field(key FieldKey) getter {
	get := scalarFields[key]
	return func(d *Draft) string { return *get(d) }
}

func phoneField(index int, sub string) getter {
	return func(d *Draft) string {
		if index >= len(d.AdditionalPhones) {
			return ""
		}
		return *d.AdditionalPhones[index].field(sub)
	}
}

func text(id i18n.MessageID, args ...interface{}) func(*i18n.Localizer, *Context) string {
	return func(l *i18n.Localizer, _ *Context) string { return l.Text(id, args...) }
}

func filled(get getter) func(*Context) bool {
	return func(c *Context) bool { return !validation.IsBlank(get(c.Draft)) }
}

func required(key FieldKey, get getter) Rule {
	return Rule{
		Field:    key,
		Violated: func(c *Context) bool { return validation.IsBlank(get(c.Draft)) },
		Message:  text(i18n.Required),
	}
}

// check flags a non-blank value that ok rejects.
func check(key FieldKey, get getter, ok func(string) bool, msg func(*i18n.Localizer, *Context) string) Rule {
	return Rule{
		Field:    key,
		Applies:  filled(get),
		Violated: func(c *Context) bool { return !ok(get(c.Draft)) },
		Message:  msg,
	}
}

func choice(key FieldKey, get getter, options []string) Rule {
	return check(key, get, func(v string) bool { return oneOf(v, options) }, text(i18n.InvalidChoice))
}

func number(key FieldKey, get getter, min, max float64) []Rule {
	parses := func(v string) bool {
		_, err := validation.ParseNumber(v)
		return err == nil
	}
	return []Rule{
		check(key, get, parses, text(i18n.InvalidNumber)),
		{
			Field:   key,
			Applies: func(c *Context) bool { return parses(get(c.Draft)) },
			Violated: func(c *Context) bool {
				n, _ := validation.ParseNumber(get(c.Draft))
				return !mathutil.InRange(n, min, max)
			},
			Message: text(i18n.NumberOutOfRange, amount(min), amount(max)),
		},
	}
}

func wholeNumber(key FieldKey, get getter, min, max int) []Rule {
	parses := func(v string) bool {
		_, err := validation.ParseWholeNumber(v)
		return err == nil
	}
	return []Rule{
		check(key, get, parses, text(i18n.InvalidNumber)),
		{
			Field:   key,
			Applies: func(c *Context) bool { return parses(get(c.Draft)) },
			Violated: func(c *Context) bool {
				n, _ := validation.ParseWholeNumber(get(c.Draft))
				return n < min || n > max
			},
			Message: text(i18n.NumberOutOfRange, min, max),
		},
	}
}

// when restricts rules to drafts matching cond.
func when(cond func(*Draft) bool, rules ...Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		r := r
		inner := r.Applies
		r.Applies = func(c *Context) bool {
			if !cond(c.Draft) {
				return false
			}
			return inner == nil || inner(c)
		}
		out = append(out, r)
	}
	return out
}

func amount(v float64) string {
	return strings.TrimSuffix(format.NumericCurrency(v), ".00")
}

func rules(parts ...interface{}) []Rule {
	var out []Rule
	for _, p := range parts {
		switch v := p.(type) {
		case Rule:
			out = append(out, v)
		case []Rule:
			out = append(out, v...)
		}
	}
	return out
}

func requiredChoice(key FieldKey, options []string) []Rule {
	get := field(key)
	return []Rule{required(key, get), choice(key, get, options)}
}

func requiredName(key FieldKey) []Rule {
	get := field(key)
	return []Rule{required(key, get), check(key, get, validation.IsPersonName, text(i18n.InvalidName))}
}

func phoneRules(key func(sub string) FieldKey, get func(sub string) getter) []Rule {
	return []Rule{
		required(key(PhoneSubAreaCode), get(PhoneSubAreaCode)),
		check(key(PhoneSubAreaCode), get(PhoneSubAreaCode), validation.IsAreaCode, text(i18n.InvalidAreaCode)),
		required(key(PhoneSubNumber), get(PhoneSubNumber)),
		check(key(PhoneSubNumber), get(PhoneSubNumber), validation.IsPhoneNumber,
			text(i18n.InvalidPhone, validation.MinPhoneDigits, validation.MaxPhoneDigits)),
		required(key(PhoneSubType), get(PhoneSubType)),
		check(key(PhoneSubType), get(PhoneSubType), func(v string) bool { return oneOf(v, phoneTypes) },
			text(i18n.InvalidPhoneType)),
	}
}

func primaryPhoneRules() []Rule {
	keys := map[string]FieldKey{
		PhoneSubAreaCode: PhoneAreaCode,
		PhoneSubNumber:   PhoneNumber,
		PhoneSubType:     PhoneType,
	}
	return phoneRules(
		func(sub string) FieldKey { return keys[sub] },
		func(sub string) getter { return field(keys[sub]) },
	)
}

func additionalPhoneRules(index int) []Rule {
	return phoneRules(
		func(sub string) FieldKey { return PhoneFieldKey(index, sub) },
		func(sub string) getter { return phoneField(index, sub) },
	)
}

func validDate(v string) bool {
	_, err := datetime.ParseDate(v)
	return err == nil
}

func birthDateRules() []Rule {
	get := field(DateOfBirth)
	return []Rule{
		required(DateOfBirth, get),
		check(DateOfBirth, get, validDate, text(i18n.InvalidDate)),
		{
			Field:   DateOfBirth,
			Applies: func(c *Context) bool { return validDate(get(c.Draft)) },
			Violated: func(c *Context) bool {
				birth, _ := datetime.ParseDate(get(c.Draft))
				age := datetime.AgeAt(birth, c.Now)
				return age < constants.MinApplicantAge || age > constants.MaxApplicantAge
			},
			Message: text(i18n.AgeOutOfRange, constants.MinApplicantAge, constants.MaxApplicantAge),
		},
	}
}

func residentSinceRule() Rule {
	get := field(ResidentSince)
	return Rule{
		Field:   ResidentSince,
		Applies: filled(get),
		Violated: func(c *Context) bool {
			t, err := datetime.ParseDate(get(c.Draft))
			return err != nil || t.After(c.Now)
		},
		Message: text(i18n.InvalidDate),
	}
}

func postalCodeRule() Rule {
	get := field(PostalCode)
	return Rule{
		Field:   PostalCode,
		Applies: filled(get),
		Violated: func(c *Context) bool {
			return !validation.IsPostalCode(get(c.Draft), c.Draft.Country)
		},
		Message: func(l *i18n.Localizer, c *Context) string {
			if validation.IsSwitzerland(c.Draft.Country) {
				return l.Text(i18n.InvalidSwissPostal)
			}
			return l.Text(i18n.InvalidPostal)
		},
	}
}

func needsPermit(d *Draft) bool {
	return !validation.IsBlank(d.Nationality) && !isSwissNationality(d.Nationality)
}

func hasEmployer(d *Draft) bool {
	return is(d.ProfessionalSituation, SituationEmployed) || is(d.ProfessionalSituation, SituationSelfEmployed)
}

func commutesByCar(d *Draft) bool {
	return is(d.CommutingMethod, CommuteCar)
}

func hasObligations(d *Draft) bool {
	return is(d.HasObligations, Yes)
}

func personalRules(d *Draft) []Rule {
	out := rules(
		requiredChoice(Salutation, salutations),
		requiredName(FirstName),
		requiredName(LastName),
		birthDateRules(),
		required(Nationality, field(Nationality)),
		requiredChoice(MaritalStatus, maritalStatuses),
		when(needsPermit, required(ResidencePermit, field(ResidencePermit))),
		choice(ResidencePermit, field(ResidencePermit), residencePermits),
		required(Email, field(Email)),
		check(Email, field(Email), validation.IsEmail, text(i18n.InvalidEmail)),
		primaryPhoneRules(),
	)
	for i := range d.AdditionalPhones {
		out = append(out, additionalPhoneRules(i)...)
	}
	return append(out, rules(
		required(Street, field(Street)),
		required(PostalCode, field(PostalCode)),
		postalCodeRule(),
		required(City, field(City)),
		required(Country, field(Country)),
		residentSinceRule(),
	)...)
}

func employmentRules() []Rule {
	return rules(
		requiredChoice(ProfessionalSituation, situations),
		when(hasEmployer,
			rules(
				required(EmployerName, field(EmployerName)),
				required(EmployerAddress, field(EmployerAddress)),
				requiredChoice(EmploymentRelationship, relationships),
				required(TenureYears, field(TenureYears)),
				wholeNumber(TenureYears, field(TenureYears), 0, MaxTenureYears),
				required(TenureMonths, field(TenureMonths)),
				wholeNumber(TenureMonths, field(TenureMonths), 0, MaxTenureMonths),
			)...,
		),
		requiredChoice(CommutingMethod, commutingMethods),
		when(commutesByCar, requiredChoice(CarNecessary, yesNo)...),
		required(NetMonthlyIncome, field(NetMonthlyIncome)),
		number(NetMonthlyIncome, field(NetMonthlyIncome), MinNetMonthlyIncome, MaxNetMonthlyIncome),
		requiredChoice(ThirteenthSalary, yesNo),
		requiredChoice(ReceivesBonus, yesNo),
		requiredChoice(HasSideIncome, yesNo),
		requiredChoice(BeneficialOwner, beneficialOwners),
	)
}

func housingRules() []Rule {
	return rules(
		requiredChoice(HousingSituation, housingOptions),
		required(HousingCost, field(HousingCost)),
		number(HousingCost, field(HousingCost), MinHousingCost, MaxHousingCost),
		requiredChoice(HasChildren, yesNo),
		requiredChoice(PaysAlimony, yesNo),
	)
}

func obligationRules() []Rule {
	return rules(
		requiredChoice(HeavyLabor, yesNo),
		requiredChoice(HasObligations, yesNo),
		when(hasObligations,
			append([]Rule{required(MonthlyInstalments, field(MonthlyInstalments))},
				number(MonthlyInstalments, field(MonthlyInstalments), MinMonthlyInstalments, MaxMonthlyInstalments)...)...,
		),
		requiredChoice(DebtEnforcements, enforcements),
	)
}

func insuranceRules() []Rule {
	return rules(
		requiredChoice(CreditProtectionInsurance, yesNo),
		number(LoanAmount, field(LoanAmount), constants.MinLoanAmount, constants.MaxLoanAmount),
		wholeNumber(LoanDuration, field(LoanDuration), constants.MinDurationMonths, constants.MaxDurationMonths),
		choice(PropertyPledged, field(PropertyPledged), yesNo),
	)
}

func documentRules() []Rule {
	var out []Rule
	for _, req := range documentCatalog {
		req := req
		attached := func(c *Context) bool { return c.Draft.Documents[req.Key] != nil }
		if !req.Optional {
			out = append(out, Rule{
				Field:    req.Key,
				Violated: func(c *Context) bool { return !attached(c) },
				Message:  text(i18n.DocumentMissing, req.Label),
			})
		}
		out = append(out, Rule{
			Field:   req.Key,
			Applies: attached,
			Violated: func(c *Context) bool {
				return ValidateFile(c.Draft.Documents[req.Key], c.MaxDocumentSize) != nil
			},
			Message: func(l *i18n.Localizer, c *Context) string {
				return fileMessage(l, ValidateFile(c.Draft.Documents[req.Key], c.MaxDocumentSize), c.MaxDocumentSize)
			},
		})
	}
	return out
}

func fileMessage(l *i18n.Localizer, err error, maxSize int64) string {
	if errors.Is(err, ErrFileTooLarge) {
		return l.Text(i18n.DocumentTooLarge, maxSize/(1024*1024))
	}
	return l.Text(i18n.DocumentNotPDF)
}

// StepRules returns the checks of a step for the given draft. The personal
// step grows with the number of additional phones.
func StepRules(step int, d *Draft) []Rule {
	switch step {
	case 1:
		return personalRules(d)
	case 2:
		return employmentRules()
	case 3:
		return housingRules()
	case 4:
		return obligationRules()
	case 5:
		return insuranceRules()
	case 6:
		return documentRules()
	}
	return nil
}

// ValidateStep evaluates every rule of step and reports each failing field
// once, in rule order.
func ValidateStep(step int, c *Context, l *i18n.Localizer) []FieldError {
	var errs []FieldError
	failed := make(map[FieldKey]bool)
	for _, r := range StepRules(step, c.Draft) {
		if failed[r.Field] {
			continue
		}
		if r.Applies != nil && !r.Applies(c) {
			continue
		}
		if r.Violated(c) {
			failed[r.Field] = true
			errs = append(errs, FieldError{Field: r.Field, Message: r.Message(l, c)})
		}
	}
	return errs
}
