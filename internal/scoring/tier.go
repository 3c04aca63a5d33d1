package scoring

import (
	"fmt"
	"math"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
)

// Tier is the revenue-based producer classification that governs
// commission bands.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Revenue band upper bounds, inclusive on the lower three tiers.
const (
	tierAMaxRevenue = 500_000.0
	tierBMaxRevenue = 5_000_000.0
	tierCMaxRevenue = 50_000_000.0
)

// ClassifyTier maps annual revenue to a producer tier. The four bands are
// contiguous and non-overlapping; boundary revenues belong to the lower band.
func ClassifyTier(annualRevenue float64) (Tier, error) {
	if math.IsNaN(annualRevenue) || math.IsInf(annualRevenue, 0) {
		return "", apperrors.InvalidInput("annual revenue must be a finite number", nil)
	}
	if annualRevenue < 0 {
		return "", apperrors.InvalidInput(fmt.Sprintf("annual revenue must be non-negative, got %.2f", annualRevenue), nil)
	}

	switch {
	case annualRevenue <= tierAMaxRevenue:
		return TierA, nil
	case annualRevenue <= tierBMaxRevenue:
		return TierB, nil
	case annualRevenue <= tierCMaxRevenue:
		return TierC, nil
	default:
		return TierD, nil
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC, TierD:
		return true
	}
	return false
}
