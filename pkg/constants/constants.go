// Package constants provides shared constants for the credit-wizard application.
package constants

import "time"

// DateLayout is the format expected for dates of birth and other calendar
// fields submitted by the wizard.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// CurrencyCode is the currency every amount is expressed in
	CurrencyCode = "CHF"
)

// Simulator bounds
const (
	// MinLoanAmount is the smallest amount the simulator accepts
	MinLoanAmount = 5000.0

	// MaxLoanAmount is the largest amount the simulator accepts
	MaxLoanAmount = 250000.0

	// LoanAmountStep is the slider step used by the front-end
	LoanAmountStep = 500.0

	// MinDurationMonths is the shortest duration the simulator accepts
	MinDurationMonths = 6

	// MaxDurationMonths is the longest duration the simulator accepts
	MaxDurationMonths = 84

	// DefaultLoanAmount seeds a simulation when nothing better is known
	DefaultLoanAmount = 10000.0

	// DefaultDurationMonths seeds a simulation when nothing better is known
	DefaultDurationMonths = 36
)

// Tariff defaults (annual rates as decimal fractions)
const (
	MinRateWithProperty    = 0.049
	MaxRateWithProperty    = 0.080
	MinRateWithoutProperty = 0.062
	MaxRateWithoutProperty = 0.098

	// GuaranteeFactorWithProperty is multiplied by the amount to get the monthly guarantee fee
	GuaranteeFactorWithProperty = 0.001625

	// GuaranteeFactorWithoutProperty is multiplied by the amount to get the monthly guarantee fee
	GuaranteeFactorWithoutProperty = 0.001795
)

// Wizard constants
const (
	// FirstStep is the first wizard step
	FirstStep = 1

	// LastStep is the final wizard step, the only one that can submit
	LastStep = 6

	// DefaultDebounceInterval coalesces draft writes
	DefaultDebounceInterval = 250 * time.Millisecond

	// DefaultMaxDocumentSizeBytes is the per-file upload limit (10 MB)
	DefaultMaxDocumentSizeBytes int64 = 10 * 1024 * 1024

	// DefaultWizardIdleTTL evicts in-memory wizards nobody touched for this long
	DefaultWizardIdleTTL = 30 * time.Minute

	// MinApplicantAge and MaxApplicantAge bound the date of birth (inclusive)
	MinApplicantAge = 18
	MaxApplicantAge = 100
)

// Session storage keys
const (
	SimulationKey = "creditSimulation"
	DraftKey      = "loanApplicationDraft"
	StepKey       = "loanApplicationStep"
)

// Session defaults
const (
	// DefaultSessionTTL is how long session-scoped values and tokens live
	DefaultSessionTTL = 24 * time.Hour

	// SessionCookieName carries the session token for browser clients
	SessionCookieName = "cw_session"

	// SessionTokenHeader carries the session token for API clients
	SessionTokenHeader = "X-Session-Token"

	// DefaultTokenIssuer is the JWT issuer of session tokens
	DefaultTokenIssuer = "credit-wizard"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes bounds a whole multipart request (one document plus form overhead)
	DefaultMaxUploadSizeBytes int64 = DefaultMaxDocumentSizeBytes + 1024*1024

	// DefaultRateLimitRequests is the per-client request budget per window
	DefaultRateLimitRequests = 30

	// DefaultRateLimitWindow is the token bucket refill period
	DefaultRateLimitWindow = time.Minute
)

// Notification defaults
const (
	// DefaultSubmissionTopic receives request.submitted events
	DefaultSubmissionTopic = "website.requests"
)
