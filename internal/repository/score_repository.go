package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// scoreRepository implements ScoreRepository
type scoreRepository struct {
	db dbExecutor
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db dbExecutor) ScoreRepository {
	return &scoreRepository{db: db}
}

// StoreScore persists a computed risk score. Scores are append-only; the
// factor breakdown and eligibility set are stored as JSON.
func (r *scoreRepository) StoreScore(score *scoring.RiskScore) error {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}

	factors, err := json.Marshal(score.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal score factors: %w", err)
	}
	eligibility, err := json.Marshal(score.Eligibility)
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility: %w", err)
	}

	query := `
		INSERT INTO risk_scores (
			id, producer_id, score, profile, tier, debt_ratio, factors,
			eligibility, calculated_at, valid_until
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err = r.db.Exec(query,
		score.ID, score.ProducerID, score.Score, score.Profile, score.Tier,
		score.DebtRatio, string(factors), string(eligibility),
		score.CalculatedAt, score.ValidUntil,
	)

	if err != nil {
		return fmt.Errorf("failed to store risk score: %w", err)
	}

	return nil
}

func scanRiskScore(row interface{ Scan(...interface{}) error }) (*scoring.RiskScore, error) {
	score := &scoring.RiskScore{}
	var factors, eligibility string

	err := row.Scan(
		&score.ID, &score.ProducerID, &score.Score, &score.Profile,
		&score.Tier, &score.DebtRatio, &factors, &eligibility,
		&score.CalculatedAt, &score.ValidUntil,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(factors), &score.Factors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score factors: %w", err)
	}
	if err := json.Unmarshal([]byte(eligibility), &score.Eligibility); err != nil {
		return nil, fmt.Errorf("failed to unmarshal eligibility: %w", err)
	}

	return score, nil
}

const riskScoreColumns = `id, producer_id, score, profile, tier, debt_ratio, factors,
	   eligibility, calculated_at, valid_until`

// GetLatestByProducer retrieves a producer's most recent risk score
func (r *scoreRepository) GetLatestByProducer(producerID uuid.UUID) (*scoring.RiskScore, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM risk_scores
		WHERE producer_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1
	`, riskScoreColumns)

	score, err := scanRiskScore(r.db.QueryRow(query, producerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("risk score not found")
		}
		return nil, fmt.Errorf("failed to get risk score: %w", err)
	}

	return score, nil
}

// GetScoreHistory retrieves a producer's scores, most recent first
func (r *scoreRepository) GetScoreHistory(producerID uuid.UUID, limit int) ([]scoring.RiskScore, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM risk_scores
		WHERE producer_id = $1
		ORDER BY calculated_at DESC
	`, riskScoreColumns)

	args := []interface{}{producerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	var scores []scoring.RiskScore
	for rows.Next() {
		score, err := scanRiskScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk score: %w", err)
		}
		scores = append(scores, *score)
	}

	return scores, nil
}

// GetProducersWithStaleScores finds active producers whose latest score is
// expired or missing, the input set for a batch rescore run
func (r *scoreRepository) GetProducersWithStaleScores(asOf time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT p.id
		FROM producers p
		LEFT JOIN (
			SELECT DISTINCT ON (producer_id) producer_id, valid_until
			FROM risk_scores
			ORDER BY producer_id, calculated_at DESC
		) s ON s.producer_id = p.id
		WHERE p.archived_at IS NULL
		  AND (s.producer_id IS NULL OR s.valid_until < $1)
		ORDER BY p.updated_at DESC
	`

	args := []interface{}{asOf}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale producers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan producer ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// StoreMatchResults persists the ranked results of one matching run
func (r *scoreRepository) StoreMatchResults(results []matching.MatchResult) error {
	query := `
		INSERT INTO match_results (
			id, operation_id, partner_id, match_score, factors, rank, calculated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	for i := range results {
		result := &results[i]
		if result.ID == uuid.Nil {
			result.ID = uuid.New()
		}

		factors, err := json.Marshal(result.Factors)
		if err != nil {
			return fmt.Errorf("failed to marshal match factors: %w", err)
		}

		_, err = r.db.Exec(query,
			result.ID, result.OperationID, result.PartnerID,
			result.MatchScore, string(factors), result.Rank, result.CalculatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to store match result: %w", err)
		}
	}

	return nil
}

// GetMatchResults retrieves the stored ranking for an operation
func (r *scoreRepository) GetMatchResults(operationID uuid.UUID) ([]matching.MatchResult, error) {
	query := `
		SELECT id, operation_id, partner_id, match_score, factors, rank, calculated_at
		FROM match_results
		WHERE operation_id = $1
		ORDER BY rank ASC
	`

	rows, err := r.db.Query(query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	var results []matching.MatchResult
	for rows.Next() {
		var result matching.MatchResult
		var factors string
		err := rows.Scan(
			&result.ID, &result.OperationID, &result.PartnerID,
			&result.MatchScore, &factors, &result.Rank, &result.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		if err := json.Unmarshal([]byte(factors), &result.Factors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match factors: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// DeleteMatchResults removes the stored ranking for an operation, typically
// before persisting a fresh run
func (r *scoreRepository) DeleteMatchResults(operationID uuid.UUID) error {
	query := `DELETE FROM match_results WHERE operation_id = $1`

	if _, err := r.db.Exec(query, operationID); err != nil {
		return fmt.Errorf("failed to delete match results: %w", err)
	}

	return nil
}

// CreateCommission persists a commission record for a contracted operation
func (r *scoreRepository) CreateCommission(commission *models.Commission) error {
	if commission.ID == uuid.Nil {
		commission.ID = uuid.New()
	}
	if commission.Status == "" {
		commission.Status = models.PaymentPending
	}
	commission.CreatedAt = time.Now()

	query := `
		INSERT INTO commissions (
			id, operation_id, partner_id, contracted_amount, rate, value,
			fixed_fee, total, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.Exec(query,
		commission.ID, commission.OperationID, commission.PartnerID,
		commission.ContractedAmount, commission.Rate, commission.Value,
		commission.FixedFee, commission.Total, commission.Status,
		commission.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}

	return nil
}

const commissionColumns = `id, operation_id, partner_id, contracted_amount, rate, value,
	   fixed_fee, total, status, paid_at, created_at`

func scanCommission(row interface{ Scan(...interface{}) error }) (*models.Commission, error) {
	c := &models.Commission{}
	err := row.Scan(
		&c.ID, &c.OperationID, &c.PartnerID, &c.ContractedAmount, &c.Rate,
		&c.Value, &c.FixedFee, &c.Total, &c.Status, &c.PaidAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCommissionByOperation retrieves the commission for an operation
func (r *scoreRepository) GetCommissionByOperation(operationID uuid.UUID) (*models.Commission, error) {
	query := fmt.Sprintf(`SELECT %s FROM commissions WHERE operation_id = $1`, commissionColumns)

	commission, err := scanCommission(r.db.QueryRow(query, operationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("commission not found")
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	return commission, nil
}

// GetCommissions retrieves commissions with filters
func (r *scoreRepository) GetCommissions(filters CommissionFilters) ([]models.Commission, error) {
	query := fmt.Sprintf(`SELECT %s FROM commissions`, commissionColumns)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if filters.PartnerID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("partner_id = $%d", argIndex))
		args = append(args, *filters.PartnerID)
		argIndex++
	}

	if len(filters.Status) > 0 {
		placeholders := make([]string, len(filters.Status))
		for i, status := range filters.Status {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, status)
			argIndex++
		}
		whereClauses = append(whereClauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	if filters.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filters.From)
		argIndex++
	}

	if filters.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filters.To)
		argIndex++
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
		argIndex++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	defer rows.Close()

	var commissions []models.Commission
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		commissions = append(commissions, *commission)
	}

	return commissions, nil
}

// MarkCommissionPaid settles a pending commission
func (r *scoreRepository) MarkCommissionPaid(id uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE commissions SET status = $2, paid_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Exec(query, id, models.PaymentPaid, paidAt, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to mark commission paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("commission not found or not pending")
	}

	return nil
}
