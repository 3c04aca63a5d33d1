package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationType classifies the purpose of a credit operation
type OperationType string

const (
	OperationWorkingCapital    OperationType = "working_capital"
	OperationInvestment        OperationType = "investment"
	OperationCommercialization OperationType = "commercialization"
)

// OperationStatus tracks an operation through its lifecycle
type OperationStatus string

const (
	StatusDraft      OperationStatus = "draft"
	StatusSubmitted  OperationStatus = "submitted"
	StatusMatching   OperationStatus = "matching"
	StatusProposal   OperationStatus = "proposal"
	StatusContracted OperationStatus = "contracted"
	StatusFunded     OperationStatus = "funded"
	StatusSettled    OperationStatus = "settled"
	StatusCancelled  OperationStatus = "cancelled"
)

// CreditOperation represents a producer's credit request
type CreditOperation struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ProducerID       uuid.UUID       `json:"producer_id" db:"producer_id"`
	Amount           float64         `json:"amount" db:"amount"`
	TermMonths       int             `json:"term_months" db:"term_months"`
	Type             OperationType   `json:"type" db:"type"`
	Crop             string          `json:"crop" db:"crop"`
	State            string          `json:"state" db:"state"`
	GuaranteeTypes   StringList      `json:"guarantee_types" db:"guarantee_types"`
	Status           OperationStatus `json:"status" db:"status"`
	PartnerID        *uuid.UUID      `json:"partner_id,omitempty" db:"partner_id"`
	ContractedAmount *float64        `json:"contracted_amount,omitempty" db:"contracted_amount"`
	ContractedRate   *float64        `json:"contracted_rate,omitempty" db:"contracted_rate"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// PaymentStatus tracks whether a commission has been settled
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Commission is the fee owed to the marketplace on a contracted operation.
// Immutable once created except for payment status and paid-at.
type Commission struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	OperationID      uuid.UUID     `json:"operation_id" db:"operation_id"`
	PartnerID        uuid.UUID     `json:"partner_id" db:"partner_id"`
	ContractedAmount float64       `json:"contracted_amount" db:"contracted_amount"`
	Rate             float64       `json:"rate" db:"rate"`
	Value            float64       `json:"value" db:"value"`
	FixedFee         float64       `json:"fixed_fee" db:"fixed_fee"`
	Total            float64       `json:"total" db:"total"`
	Status           PaymentStatus `json:"status" db:"status"`
	PaidAt           *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}
