package wizard

// AdditionalPhone is one extra contact number.
type AdditionalPhone struct {
	AreaCode string `json:"areaCode"`
	Number   string `json:"number"`
	Type     string `json:"type"`
}

func (p *AdditionalPhone) field(sub string) *string {
	switch sub {
	case PhoneSubAreaCode:
		return &p.AreaCode
	case PhoneSubNumber:
		return &p.Number
	case PhoneSubType:
		return &p.Type
	}
	return nil
}

// Draft is the in-progress application. Every answer is kept as the text the
// visitor typed; parsing happens during validation and payload assembly.
type Draft struct {
	Salutation       string            `json:"salutation"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	DateOfBirth      string            `json:"dateOfBirth"`
	Nationality      string            `json:"nationality"`
	MaritalStatus    string            `json:"maritalStatus"`
	ResidencePermit  string            `json:"residencePermit"`
	Email            string            `json:"email"`
	PhoneAreaCode    string            `json:"phoneAreaCode"`
	PhoneNumber      string            `json:"phoneNumber"`
	PhoneType        string            `json:"phoneType"`
	AdditionalPhones []AdditionalPhone `json:"additionalPhones"`
	Street           string            `json:"street"`
	HouseNumber      string            `json:"houseNumber"`
	PostalCode       string            `json:"postalCode"`
	City             string            `json:"city"`
	Country          string            `json:"country"`
	ResidentSince    string            `json:"residentSince"`

	ProfessionalSituation  string `json:"professionalSituation"`
	EmployerName           string `json:"employerName"`
	EmployerAddress        string `json:"employerAddress"`
	EmploymentRelationship string `json:"employmentRelationship"`
	TenureYears            string `json:"tenureYears"`
	TenureMonths           string `json:"tenureMonths"`
	CommutingMethod        string `json:"commutingMethod"`
	CarNecessary           string `json:"carNecessary"`
	NetMonthlyIncome       string `json:"netMonthlyIncome"`
	ThirteenthSalary       string `json:"thirteenthSalary"`
	ReceivesBonus          string `json:"receivesBonus"`
	HasSideIncome          string `json:"hasSideIncome"`
	BeneficialOwner        string `json:"beneficialOwner"`

	HousingSituation string `json:"housingSituation"`
	HousingCost      string `json:"housingCost"`
	HasChildren      string `json:"hasChildren"`
	PaysAlimony      string `json:"paysAlimony"`

	HeavyLabor         string `json:"heavyLabor"`
	HasObligations     string `json:"hasObligations"`
	MonthlyInstalments string `json:"monthlyInstalments"`
	DebtEnforcements   string `json:"debtEnforcements"`

	CreditProtectionInsurance string `json:"creditProtectionInsurance"`
	Comments                  string `json:"comments"`

	LoanAmount      string `json:"loanAmount"`
	LoanDuration    string `json:"loanDuration"`
	LoanPurpose     string `json:"loanPurpose"`
	PropertyPledged string `json:"propertyPledged"`

	// Documents are held in memory only and never persisted.
	Documents map[FieldKey]*Document `json:"-"`
}

// NewDraft returns an empty draft with the site defaults.
func NewDraft() *Draft {
	return &Draft{
		Country:   "Svizzera",
		PhoneType: PhoneMobile,
		Documents: make(map[FieldKey]*Document),
	}
}

// Value returns the text of a scalar field.
func (d *Draft) Value(key FieldKey) string {
	if get, ok := scalarFields[key]; ok {
		return *get(d)
	}
	return ""
}

// Clone copies the draft, sharing attached document contents.
func (d *Draft) Clone() *Draft {
	c := *d
	c.AdditionalPhones = append([]AdditionalPhone(nil), d.AdditionalPhones...)
	c.Documents = make(map[FieldKey]*Document, len(d.Documents))
	for k, v := range d.Documents {
		c.Documents[k] = v
	}
	return &c
}
