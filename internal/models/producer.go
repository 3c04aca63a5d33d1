package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Producer represents a rural producer registered on the marketplace
type Producer struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Document        string     `json:"document" db:"document"`
	Email           string     `json:"email" db:"email"`
	State           string     `json:"state" db:"state"`
	City            string     `json:"city" db:"city"`
	TotalAreaHa     float64    `json:"total_area_ha" db:"total_area_ha"`
	Crops           StringList `json:"crops" db:"crops"`
	Irrigated       bool       `json:"irrigated" db:"irrigated"`
	Insured         bool       `json:"insured" db:"insured"`
	YearsInActivity int        `json:"years_in_activity" db:"years_in_activity"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// FinancialProfile holds a producer's financial attributes used for risk
// scoring. Pointer fields distinguish an absent attribute from a present zero:
// zero is valid input, nil is an incomplete profile.
type FinancialProfile struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ProducerID         uuid.UUID  `json:"producer_id" db:"producer_id"`
	AnnualRevenue      *float64   `json:"annual_revenue" db:"annual_revenue"`
	TotalDebt          *float64   `json:"total_debt" db:"total_debt"`
	MonthlyCashFlow    CashFlow   `json:"monthly_cash_flow" db:"monthly_cash_flow"`
	GuaranteeValue     *float64   `json:"guarantee_value" db:"guarantee_value"`
	HasNegativeRecords *bool      `json:"has_negative_records" db:"has_negative_records"`
	CreditHistoryYears *int       `json:"credit_history_years" db:"credit_history_years"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// DebtRatio returns total debt over annual revenue. Zero revenue with debt
// maps to a ratio of 1 so downstream checks treat it as fully leveraged.
func (p *FinancialProfile) DebtRatio() float64 {
	if p.TotalDebt == nil || p.AnnualRevenue == nil {
		return 0
	}
	if *p.AnnualRevenue <= 0 {
		if *p.TotalDebt > 0 {
			return 1
		}
		return 0
	}
	ratio := *p.TotalDebt / *p.AnnualRevenue
	if ratio < 0 {
		return 0
	}
	return ratio
}

// CashFlow is a producer's monthly cash-flow sequence stored as JSONB.
// A complete sequence has 12 entries; missing months count as zero.
type CashFlow []float64

// Normalized returns the sequence padded or truncated to exactly 12 months.
func (cf CashFlow) Normalized() []float64 {
	months := make([]float64, 12)
	copy(months, cf)
	return months
}

// Value implements driver.Valuer for CashFlow
func (cf CashFlow) Value() (driver.Value, error) {
	return json.Marshal(cf)
}

// Scan implements sql.Scanner for CashFlow
func (cf *CashFlow) Scan(value interface{}) error {
	if value == nil {
		*cf = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan CashFlow: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, cf)
}

// StringList is a string slice stored as a JSONB column
type StringList []string

// Contains reports whether the list holds s.
func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringList: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, l)
}
