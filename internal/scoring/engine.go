package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/models"
)

// Factor weights. Fixed configuration, must sum to 1.0.
const (
	weightRevenue           = 0.20
	weightProductionHistory = 0.15
	weightGuarantees        = 0.20
	weightDebtRatio         = 0.15
	weightCashFlow          = 0.15
	weightCreditHistory     = 0.10
	weightInsurance         = 0.05
)

// Normalization reference values.
const (
	revenueReferenceMax     = 10_000_000.0 // revenue at or above this scores 1.0
	productionHistoryMaxYrs = 15.0
	creditHistoryMaxYrs     = 10.0
	guaranteeCoverageTarget = 2.0 // guarantees at 2x revenue score 1.0
)

// scoreValidityDays is how long a computed score stays usable. Callers must
// recompute rather than reuse a score past its ValidUntil.
const scoreValidityDays = 90

// RiskProfile classifies a 0-100 score into a risk band
type RiskProfile string

const (
	RiskLow      RiskProfile = "low"
	RiskModerate RiskProfile = "moderate"
	RiskElevated RiskProfile = "elevated"
	RiskHigh     RiskProfile = "high"
)

// RiskScore is the immutable output of a scoring run. A new instance is
// produced for every recomputation.
type RiskScore struct {
	ID           uuid.UUID     `json:"id"`
	ProducerID   uuid.UUID     `json:"producer_id"`
	Score        int           `json:"score"`
	Profile      RiskProfile   `json:"profile"`
	Tier         Tier          `json:"tier"`
	DebtRatio    float64       `json:"debt_ratio"`
	Factors      []RiskFactor  `json:"factors"`
	Eligibility  []Eligibility `json:"eligibility"`
	CalculatedAt time.Time     `json:"calculated_at"`
	ValidUntil   time.Time     `json:"valid_until"`
}

// Expired reports whether the score is stale at the given instant.
func (s *RiskScore) Expired(now time.Time) bool {
	return now.After(s.ValidUntil)
}

// RiskFactor is one weighted component of the composite score
type RiskFactor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Raw         float64 `json:"raw"`
	Max         float64 `json:"max"`
	Normalized  float64 `json:"normalized"`
	Description string  `json:"description"`
}

// EligibilityReason is a machine-checkable reason for ineligibility
type EligibilityReason string

const (
	ReasonScoreBelowMinimum EligibilityReason = "score_below_minimum"
	ReasonDebtRatioExceeded EligibilityReason = "debt_ratio_exceeded"
)

// Description renders the reason for display.
func (r EligibilityReason) Description() string {
	switch r {
	case ReasonScoreBelowMinimum:
		return "risk score below the partner type minimum"
	case ReasonDebtRatioExceeded:
		return "debt-to-revenue ratio above the partner type maximum"
	default:
		return string(r)
	}
}

// Eligibility is the per-partner-type outcome of a scoring run
type Eligibility struct {
	PartnerType models.PartnerType `json:"partner_type"`
	Eligible    bool               `json:"eligible"`
	Reason      EligibilityReason  `json:"reason,omitempty"`
	MaxAmount   float64            `json:"max_amount,omitempty"`
}

// typePolicy is a partner type's acceptance thresholds. The coverage ratio
// bounds the fundable amount relative to pledged guarantees.
type typePolicy struct {
	minScore      int
	maxDebtRatio  float64
	coverageRatio float64
}

var partnerTypePolicies = map[models.PartnerType]typePolicy{
	models.PartnerTypeBank:        {minScore: 60, maxDebtRatio: 0.5, coverageRatio: 1.2},
	models.PartnerTypeCooperative: {minScore: 50, maxDebtRatio: 0.7, coverageRatio: 1.0},
	models.PartnerTypeSecuritizer: {minScore: 40, maxDebtRatio: 0.9, coverageRatio: 0.8},
}

// Engine computes producer risk scores. Stateless; all weight and threshold
// tables are frozen constants.
type Engine struct{}

// NewEngine creates a new risk scoring engine instance
func NewEngine() *Engine {
	return &Engine{}
}

// ComputeRiskScore converts a producer's financial and agronomic profile into
// a 0-100 risk score with per-factor breakdown and partner-type eligibility.
// Pure and deterministic: identical inputs and reference date always produce
// an identical result.
func (e *Engine) ComputeRiskScore(fp *models.FinancialProfile, producer *models.Producer, referenceDate time.Time) (*RiskScore, error) {
	if fp == nil {
		return nil, apperrors.IncompleteProfile("financial profile is required", nil)
	}
	if producer == nil {
		return nil, apperrors.InvalidInput("producer is required", nil)
	}
	if err := validateProfile(fp); err != nil {
		return nil, err
	}

	revenue := *fp.AnnualRevenue
	guarantee := *fp.GuaranteeValue
	debtRatio := fp.DebtRatio()
	cashFlow := fp.MonthlyCashFlow.Normalized()

	tier, err := ClassifyTier(revenue)
	if err != nil {
		return nil, err
	}

	creditYears := float64(*fp.CreditHistoryYears)
	creditNorm := clamp01(creditYears / creditHistoryMaxYrs)
	if *fp.HasNegativeRecords {
		creditNorm /= 2
	}

	factors := []RiskFactor{
		{
			Name:        "annual_revenue",
			Weight:      weightRevenue,
			Raw:         revenue,
			Max:         revenueReferenceMax,
			Normalized:  clamp01(revenue / revenueReferenceMax),
			Description: "annual gross revenue against the reference ceiling",
		},
		{
			Name:        "production_history",
			Weight:      weightProductionHistory,
			Raw:         float64(producer.YearsInActivity),
			Max:         productionHistoryMaxYrs,
			Normalized:  clamp01(float64(producer.YearsInActivity) / productionHistoryMaxYrs),
			Description: "years of productive activity",
		},
		{
			Name:        "guarantees",
			Weight:      weightGuarantees,
			Raw:         guarantee,
			Max:         guaranteeCoverageTarget * revenue,
			Normalized:  normalizeGuarantee(guarantee, revenue),
			Description: "pledged guarantee value relative to revenue",
		},
		{
			Name:        "debt_ratio",
			Weight:      weightDebtRatio,
			Raw:         debtRatio,
			Max:         1.0,
			Normalized:  1 - clamp01(debtRatio),
			Description: "debt-to-revenue ratio, lower is better",
		},
		{
			Name:        "cash_flow_stability",
			Weight:      weightCashFlow,
			Raw:         coefficientOfVariation(cashFlow),
			Max:         1.0,
			Normalized:  normalizeCashFlowStability(cashFlow),
			Description: "monthly cash-flow variation over twelve months, lower is better",
		},
		{
			Name:        "credit_history",
			Weight:      weightCreditHistory,
			Raw:         creditYears,
			Max:         creditHistoryMaxYrs,
			Normalized:  creditNorm,
			Description: "length of credit history, halved when negative records exist",
		},
		{
			Name:        "insurance_coverage",
			Weight:      weightInsurance,
			Raw:         boolToFloat(producer.Insured),
			Max:         1.0,
			Normalized:  boolToFloat(producer.Insured),
			Description: "active rural insurance coverage",
		},
	}

	var weighted float64
	for _, f := range factors {
		weighted += f.Weight * f.Normalized
	}
	score := clampScore(int(math.Round(weighted * 100)))

	result := &RiskScore{
		ID:           uuid.New(),
		ProducerID:   producer.ID,
		Score:        score,
		Profile:      classifyProfile(score),
		Tier:         tier,
		DebtRatio:    debtRatio,
		Factors:      factors,
		Eligibility:  evaluateEligibility(score, debtRatio, guarantee),
		CalculatedAt: referenceDate,
		ValidUntil:   referenceDate.AddDate(0, 0, scoreValidityDays),
	}
	return result, nil
}

// validateProfile rejects profiles with absent required attributes.
func validateProfile(fp *models.FinancialProfile) error {
	missing := ""
	switch {
	case fp.AnnualRevenue == nil:
		missing = "annual_revenue"
	case fp.TotalDebt == nil:
		missing = "total_debt"
	case fp.GuaranteeValue == nil:
		missing = "guarantee_value"
	case fp.HasNegativeRecords == nil:
		missing = "has_negative_records"
	case fp.CreditHistoryYears == nil:
		missing = "credit_history_years"
	case fp.MonthlyCashFlow == nil:
		missing = "monthly_cash_flow"
	}
	if missing != "" {
		return apperrors.IncompleteProfile(fmt.Sprintf("required attribute %s is absent", missing), nil)
	}
	if *fp.AnnualRevenue < 0 || *fp.TotalDebt < 0 || *fp.GuaranteeValue < 0 || *fp.CreditHistoryYears < 0 {
		return apperrors.InvalidInput("financial attributes must be non-negative", nil)
	}
	return nil
}

// classifyProfile is total over [0,100]: every score maps to exactly one band.
func classifyProfile(score int) RiskProfile {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskModerate
	case score >= 40:
		return RiskElevated
	default:
		return RiskHigh
	}
}

// evaluateEligibility checks the score against every known partner type. The
// max fundable amount grows with both guarantee value and score.
func evaluateEligibility(score int, debtRatio, guarantee float64) []Eligibility {
	result := make([]Eligibility, 0, len(partnerTypePolicies))
	for _, pt := range models.AllPartnerTypes() {
		policy := partnerTypePolicies[pt]
		switch {
		case score < policy.minScore:
			result = append(result, Eligibility{PartnerType: pt, Eligible: false, Reason: ReasonScoreBelowMinimum})
		case debtRatio > policy.maxDebtRatio:
			result = append(result, Eligibility{PartnerType: pt, Eligible: false, Reason: ReasonDebtRatioExceeded})
		default:
			maxAmount := guarantee * policy.coverageRatio * float64(score) / 100
			result = append(result, Eligibility{PartnerType: pt, Eligible: true, MaxAmount: maxAmount})
		}
	}
	return result
}

// normalizeGuarantee scores pledged guarantees against a 2x revenue target.
// A positive guarantee with zero revenue counts as full coverage.
func normalizeGuarantee(guarantee, revenue float64) float64 {
	if revenue <= 0 {
		if guarantee > 0 {
			return 1
		}
		return 0
	}
	return clamp01(guarantee / (guaranteeCoverageTarget * revenue))
}

// normalizeCashFlowStability maps the coefficient of variation across the
// twelve monthly figures into [0,1], lower variation scoring higher. A
// non-positive mean scores zero.
func normalizeCashFlowStability(months []float64) float64 {
	mean := meanOf(months)
	if mean <= 0 {
		return 0
	}
	return 1 - clamp01(coefficientOfVariation(months))
}

func coefficientOfVariation(months []float64) float64 {
	mean := meanOf(months)
	if mean <= 0 {
		return 1
	}
	var sumSq float64
	for _, v := range months {
		d := v - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(len(months)))
	return stddev / mean
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampScore keeps the composite inside [0,100] even if rounding drifts.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
