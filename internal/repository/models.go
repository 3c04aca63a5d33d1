package repository

import (
	"time"

	"github.com/agrocredbr/agrocred-api/internal/models"
)

// LoginResponse represents the response from login
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

// RegisterRequest represents the request to register a new user
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role,omitempty"`
}

// ProducerForm represents the form data for creating/updating producers
type ProducerForm struct {
	Name            string   `json:"name" binding:"required"`
	Document        string   `json:"document" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	State           string   `json:"state" binding:"required,len=2"`
	City            string   `json:"city" binding:"required"`
	TotalAreaHa     float64  `json:"total_area_ha" binding:"gte=0"`
	Crops           []string `json:"crops"`
	Irrigated       bool     `json:"irrigated"`
	Insured         bool     `json:"insured"`
	YearsInActivity int      `json:"years_in_activity" binding:"gte=0"`
}

// FinancialProfileForm represents the form data for a producer's financial
// profile. Pointer fields stay nil when the client omits them, which the
// scoring engine rejects as an incomplete profile.
type FinancialProfileForm struct {
	AnnualRevenue      *float64  `json:"annual_revenue"`
	TotalDebt          *float64  `json:"total_debt"`
	MonthlyCashFlow    []float64 `json:"monthly_cash_flow"`
	GuaranteeValue     *float64  `json:"guarantee_value"`
	HasNegativeRecords *bool     `json:"has_negative_records"`
	CreditHistoryYears *int      `json:"credit_history_years"`
}

// PartnerForm represents the form data for creating/updating partners
type PartnerForm struct {
	Name   string `json:"name" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=bank cooperative securitizer"`
	State  string `json:"state" binding:"required,len=2"`
	Active bool   `json:"active"`
}

// PartnerCriteriaForm represents the form data for a partner's acceptance
// criteria
type PartnerCriteriaForm struct {
	MinTicket      float64  `json:"min_ticket" binding:"gte=0"`
	MaxTicket      float64  `json:"max_ticket" binding:"gtefield=MinTicket"`
	GuaranteeTypes []string `json:"guarantee_types" binding:"required,min=1"`
	Crops          []string `json:"crops" binding:"required,min=1"`
	States         []string `json:"states" binding:"required,min=1"`
	OperationTypes []string `json:"operation_types" binding:"required,min=1"`
	MinScore       int      `json:"min_score" binding:"gte=0,lte=100"`
	MaxDebtRatio   float64  `json:"max_debt_ratio" binding:"gt=0"`
}

// OperationForm represents the form data for creating credit operations
type OperationForm struct {
	Amount         float64  `json:"amount" binding:"required,gt=0"`
	TermMonths     int      `json:"term_months" binding:"required,gt=0"`
	Type           string   `json:"type" binding:"required,oneof=working_capital investment commercialization"`
	Crop           string   `json:"crop" binding:"required"`
	State          string   `json:"state" binding:"required,len=2"`
	GuaranteeTypes []string `json:"guarantee_types" binding:"required,min=1"`
}

// ContractForm represents the form data for contracting an operation with a
// partner
type ContractForm struct {
	PartnerID        string   `json:"partner_id" binding:"required,uuid"`
	ContractedAmount float64  `json:"contracted_amount" binding:"required,gt=0"`
	ContractedRate   *float64 `json:"contracted_rate,omitempty"`
}
