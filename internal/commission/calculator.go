package commission

import (
	"fmt"
	"math"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// Band is a tier's closed commission rate range plus an optional fixed fee.
type Band struct {
	MinRate  float64
	MaxRate  float64
	FixedFee float64
}

// tierBands is frozen commercial policy: negotiated rates are always clamped
// into the tier's band, never honored outside it. Only Tier D carries a
// fixed structuring fee.
var tierBands = map[scoring.Tier]Band{
	scoring.TierA: {MinRate: 0.010, MaxRate: 0.030},
	scoring.TierB: {MinRate: 0.015, MaxRate: 0.035},
	scoring.TierC: {MinRate: 0.020, MaxRate: 0.040},
	scoring.TierD: {MinRate: 0.025, MaxRate: 0.050, FixedFee: 50_000},
}

// BandFor returns the commission band for a tier.
func BandFor(tier scoring.Tier) (Band, bool) {
	band, ok := tierBands[tier]
	return band, ok
}

// Breakdown is the computed commission on a contracted operation
type Breakdown struct {
	Tier             scoring.Tier `json:"tier"`
	ContractedAmount float64      `json:"contracted_amount"`
	Rate             float64      `json:"rate"`
	Value            float64      `json:"value"`
	FixedFee         float64      `json:"fixed_fee"`
	Total            float64      `json:"total"`
}

// Calculate computes the commission owed on a contracted amount. A custom
// rate, when supplied, is clamped into the tier's band; otherwise the band
// minimum applies. Pure and deterministic.
func Calculate(tier scoring.Tier, contractedAmount float64, customRate *float64) (*Breakdown, error) {
	band, ok := tierBands[tier]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown tier %q", tier), nil)
	}
	if contractedAmount < 0 || math.IsNaN(contractedAmount) || math.IsInf(contractedAmount, 0) {
		return nil, apperrors.InvalidInput("contracted amount must be a non-negative finite number", nil)
	}

	rate := band.MinRate
	if customRate != nil {
		if math.IsNaN(*customRate) || math.IsInf(*customRate, 0) {
			return nil, apperrors.InvalidInput("custom rate must be a finite number", nil)
		}
		rate = clampRate(*customRate, band)
	}

	value := contractedAmount * rate
	return &Breakdown{
		Tier:             tier,
		ContractedAmount: contractedAmount,
		Rate:             rate,
		Value:            value,
		FixedFee:         band.FixedFee,
		Total:            value + band.FixedFee,
	}, nil
}

func clampRate(rate float64, band Band) float64 {
	if rate < band.MinRate {
		return band.MinRate
	}
	if rate > band.MaxRate {
		return band.MaxRate
	}
	return rate
}
