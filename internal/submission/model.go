package submission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks a request through the back-office.
type Status string

// StatusNew is the status of freshly submitted requests.
const StatusNew Status = "new"

// Request is a stored inbound request.
type Request struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	Status             Status            `gorm:"size:32;index" json:"status"`
	Service            string            `gorm:"size:64;index" json:"service"`
	Language           string            `gorm:"size:8" json:"language"`
	Name               string            `gorm:"size:200" json:"name"`
	Email              string            `gorm:"size:254;index" json:"email"`
	Phone              string            `gorm:"size:40" json:"phone"`
	Description        string            `gorm:"type:text" json:"description"`
	LoanAmount         decimal.Decimal   `gorm:"type:numeric(12,2)" json:"loanAmount"`
	LoanDurationMonths int               `json:"loanDurationMonths"`
	MinMonthlyPayment  decimal.Decimal   `gorm:"type:numeric(12,2)" json:"minMonthlyPayment"`
	MaxMonthlyPayment  decimal.Decimal   `gorm:"type:numeric(12,2)" json:"maxMonthlyPayment"`
	AdditionalData     string            `gorm:"type:jsonb" json:"additionalData"`
	Documents          []RequestDocument `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"documents"`
}

// RequestDocument is one file attached to a request.
type RequestDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID    uuid.UUID `gorm:"type:uuid;index" json:"requestId"`
	CreatedAt    time.Time `json:"createdAt"`
	DocumentType string    `gorm:"size:64" json:"documentType"`
	FileName     string    `gorm:"size:255" json:"fileName"`
	ContentType  string    `gorm:"size:100" json:"contentType"`
	Size         int64     `json:"size"`
	Content      []byte    `gorm:"type:bytea" json:"-"`
}
