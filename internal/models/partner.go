package models

import (
	"time"

	"github.com/google/uuid"
)

// PartnerType classifies a financial partner
type PartnerType string

const (
	PartnerTypeBank        PartnerType = "bank"
	PartnerTypeCooperative PartnerType = "cooperative"
	PartnerTypeSecuritizer PartnerType = "securitizer"
)

// AllPartnerTypes lists the known partner types in a stable order.
func AllPartnerTypes() []PartnerType {
	return []PartnerType{PartnerTypeBank, PartnerTypeCooperative, PartnerTypeSecuritizer}
}

// Partner represents a financial partner (bank, credit cooperative or
// securitization vehicle) that issues proposals on the marketplace
type Partner struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Type      PartnerType `json:"type" db:"type"`
	State     string      `json:"state" db:"state"`
	Active    bool        `json:"active" db:"active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// PartnerCriteria is a partner's acceptance policy. It is owned by the
// partner and read-only to the matching engine.
type PartnerCriteria struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	PartnerID      uuid.UUID   `json:"partner_id" db:"partner_id"`
	PartnerType    PartnerType `json:"partner_type" db:"partner_type"`
	MinTicket      float64     `json:"min_ticket" db:"min_ticket"`
	MaxTicket      float64     `json:"max_ticket" db:"max_ticket"`
	GuaranteeTypes StringList  `json:"guarantee_types" db:"guarantee_types"`
	Crops          StringList  `json:"crops" db:"crops"`
	States         StringList  `json:"states" db:"states"`
	OperationTypes StringList  `json:"operation_types" db:"operation_types"`
	MinScore       int         `json:"min_score" db:"min_score"`
	MaxDebtRatio   float64     `json:"max_debt_ratio" db:"max_debt_ratio"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}
