package matching

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// Dimension weights. Fixed configuration, must sum to 1.0.
const (
	weightTicketFit    = 0.25
	weightGuaranteeFit = 0.20
	weightRegionFit    = 0.15
	weightCropFit      = 0.15
	weightScoreFit     = 0.15
	weightOpTypeFit    = 0.10
)

// scoreFitComfortMargin is how many points above a partner's minimum score
// saturate the score-fit dimension at 1.0.
const scoreFitComfortMargin = 20.0

// defaultWorkers bounds the per-partner evaluation fan-out.
const defaultWorkers = 8

// MatchResult is the scored fit between one operation and one partner
type MatchResult struct {
	ID           uuid.UUID     `json:"id"`
	OperationID  uuid.UUID     `json:"operation_id"`
	PartnerID    uuid.UUID     `json:"partner_id"`
	MatchScore   int           `json:"match_score"`
	Factors      []MatchFactor `json:"factors"`
	Rank         int           `json:"rank"`
	CalculatedAt time.Time     `json:"calculated_at"`

	scoreFit float64
}

// MatchFactor is one weighted dimension of the fit score
type MatchFactor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// SkipReason is a machine-checkable reason a partner was left out of a run
type SkipReason string

const (
	SkipInvalidTicketBand  SkipReason = "invalid_ticket_band"
	SkipMissingAcceptedSet SkipReason = "missing_accepted_set"
	SkipInvalidThresholds  SkipReason = "invalid_thresholds"
)

// Description renders the reason for display.
func (r SkipReason) Description() string {
	switch r {
	case SkipInvalidTicketBand:
		return "ticket band is negative or inverted"
	case SkipMissingAcceptedSet:
		return "a required accepted set is empty"
	case SkipInvalidThresholds:
		return "score or debt-ratio thresholds are out of range"
	default:
		return string(r)
	}
}

// SkippedPartner is a non-fatal warning about malformed partner criteria.
// One bad partner never aborts ranking for the rest.
type SkippedPartner struct {
	PartnerID uuid.UUID  `json:"partner_id"`
	Reason    SkipReason `json:"reason"`
	Detail    string     `json:"detail,omitempty"`
}

// Engine ranks financial partners against credit operations. Stateless; the
// dimension weight table is frozen at compile time.
type Engine struct {
	workers int
}

// NewEngine creates a matching engine with the given fan-out width.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Engine{workers: workers}
}

// RankPartners computes a fit score for every eligible partner and returns an
// explainable ranking. Partners removed by the hard filter produce no result;
// partners with malformed criteria are collected as warnings. Evaluation runs
// concurrently but the final ordering is a deterministic sequential pass over
// the complete survivor set.
func (e *Engine) RankPartners(ctx context.Context, op *models.CreditOperation, riskScore *scoring.RiskScore, criteria []models.PartnerCriteria) ([]MatchResult, []SkippedPartner, error) {
	if op == nil {
		return nil, nil, apperrors.InvalidInput("credit operation is required", nil)
	}
	if riskScore == nil {
		return nil, nil, apperrors.InvalidInput("producer risk score is required", nil)
	}
	if op.Amount < 0 || math.IsNaN(op.Amount) || math.IsInf(op.Amount, 0) {
		return nil, nil, apperrors.InvalidInput("operation amount must be a non-negative finite number", nil)
	}

	now := time.Now()
	type outcome struct {
		result  *MatchResult
		skipped *SkippedPartner
	}
	outcomes := make([]outcome, len(criteria))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range criteria {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			pc := &criteria[i]
			if reason, detail := validateCriteria(pc); reason != "" {
				outcomes[i].skipped = &SkippedPartner{PartnerID: pc.PartnerID, Reason: reason, Detail: detail}
				return nil
			}
			if !passesHardFilter(op, riskScore, pc) {
				return nil
			}
			outcomes[i].result = evaluatePartner(op, riskScore, pc, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var results []MatchResult
	var skipped []SkippedPartner
	for _, o := range outcomes {
		if o.result != nil {
			results = append(results, *o.result)
		}
		if o.skipped != nil {
			skipped = append(skipped, *o.skipped)
		}
	}

	// Deterministic total ordering: score desc, score-fit desc, partner id
	// asc. Never dependent on evaluation completion order.
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].MatchScore != results[b].MatchScore {
			return results[a].MatchScore > results[b].MatchScore
		}
		if results[a].scoreFit != results[b].scoreFit {
			return results[a].scoreFit > results[b].scoreFit
		}
		return strings.Compare(results[a].PartnerID.String(), results[b].PartnerID.String()) < 0
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, skipped, nil
}

// validateCriteria reports structurally malformed criteria. Returns an empty
// reason for well-formed input.
func validateCriteria(pc *models.PartnerCriteria) (SkipReason, string) {
	if pc.MinTicket < 0 || pc.MaxTicket < pc.MinTicket {
		return SkipInvalidTicketBand, "min_ticket must be non-negative and not above max_ticket"
	}
	switch {
	case len(pc.GuaranteeTypes) == 0:
		return SkipMissingAcceptedSet, "guarantee_types is empty"
	case len(pc.Crops) == 0:
		return SkipMissingAcceptedSet, "crops is empty"
	case len(pc.States) == 0:
		return SkipMissingAcceptedSet, "states is empty"
	case len(pc.OperationTypes) == 0:
		return SkipMissingAcceptedSet, "operation_types is empty"
	}
	if pc.MinScore < 0 || pc.MinScore > 100 || pc.MaxDebtRatio <= 0 {
		return SkipInvalidThresholds, "min_score must be in [0,100] and max_debt_ratio positive"
	}
	return "", ""
}

// passesHardFilter strictly eliminates partners that cannot serve the
// operation. Eliminated partners are not scored and produce no result.
func passesHardFilter(op *models.CreditOperation, riskScore *scoring.RiskScore, pc *models.PartnerCriteria) bool {
	if op.Amount < pc.MinTicket || op.Amount > pc.MaxTicket {
		return false
	}
	if riskScore.Score < pc.MinScore {
		return false
	}
	if riskScore.DebtRatio > pc.MaxDebtRatio {
		return false
	}
	return true
}

// evaluatePartner computes the six dimension scores for a surviving partner.
func evaluatePartner(op *models.CreditOperation, riskScore *scoring.RiskScore, pc *models.PartnerCriteria, now time.Time) *MatchResult {
	ticket := ticketFit(op.Amount, pc.MinTicket, pc.MaxTicket)
	guarantee := setOverlap(op.GuaranteeTypes, pc.GuaranteeTypes)
	region := containsFit(pc.States, op.State)
	crop := containsFit(pc.Crops, op.Crop)
	scoreFit := scoreFit(riskScore.Score, pc.MinScore)
	opType := containsFit(pc.OperationTypes, string(op.Type))

	factors := []MatchFactor{
		{Name: "ticket_fit", Weight: weightTicketFit, Score: ticket, Description: "requested amount within the partner's comfortable range"},
		{Name: "guarantee_fit", Weight: weightGuaranteeFit, Score: guarantee, Description: "overlap between offered and accepted guarantee types"},
		{Name: "region_fit", Weight: weightRegionFit, Score: region, Description: "operation state accepted by the partner"},
		{Name: "crop_fit", Weight: weightCropFit, Score: crop, Description: "operation crop accepted by the partner"},
		{Name: "score_fit", Weight: weightScoreFit, Score: scoreFit, Description: "risk score margin above the partner minimum"},
		{Name: "operation_type_fit", Weight: weightOpTypeFit, Score: opType, Description: "operation type accepted by the partner"},
	}

	var weighted float64
	for _, f := range factors {
		weighted += f.Weight * f.Score
	}
	matchScore := int(math.Round(weighted * 100))
	if matchScore < 0 {
		matchScore = 0
	}
	if matchScore > 100 {
		matchScore = 100
	}

	return &MatchResult{
		ID:           uuid.New(),
		OperationID:  op.ID,
		PartnerID:    pc.PartnerID,
		MatchScore:   matchScore,
		Factors:      factors,
		CalculatedAt: now,
		scoreFit:     scoreFit,
	}
}

// ticketFit is 1.0 inside the middle half of the partner's band and decays
// linearly to 0.5 at the edges. Out-of-band amounts never reach here; the
// hard filter removed them.
func ticketFit(amount, minTicket, maxTicket float64) float64 {
	width := maxTicket - minTicket
	if width <= 0 {
		return 1
	}
	comfortLow := minTicket + width/4
	comfortHigh := maxTicket - width/4
	if amount >= comfortLow && amount <= comfortHigh {
		return 1
	}
	var distance float64
	if amount < comfortLow {
		distance = (comfortLow - amount) / (width / 4)
	} else {
		distance = (amount - comfortHigh) / (width / 4)
	}
	return 1 - 0.5*math.Min(distance, 1)
}

// setOverlap is the proportion of the operation's attribute set covered by
// the partner's accepted set: 1.0 for full containment, 0 for no overlap.
func setOverlap(offered, accepted models.StringList) float64 {
	if len(offered) == 0 {
		return 0
	}
	var covered int
	for _, item := range offered {
		if accepted.Contains(item) {
			covered++
		}
	}
	return float64(covered) / float64(len(offered))
}

// containsFit scores single-valued attributes: accepted or not.
func containsFit(accepted models.StringList, value string) float64 {
	if accepted.Contains(value) {
		return 1
	}
	return 0
}

// scoreFit measures how comfortably the producer clears the partner's
// minimum score, saturating at the comfort margin.
func scoreFit(score, minScore int) float64 {
	margin := float64(score - minScore)
	if margin <= 0 {
		return 0
	}
	return math.Min(margin/scoreFitComfortMargin, 1)
}
