package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/models"
)

// operationRepository implements OperationRepository
type operationRepository struct {
	db dbExecutor
}

// NewOperationRepository creates a new credit operation repository
func NewOperationRepository(db dbExecutor) OperationRepository {
	return &operationRepository{db: db}
}

const operationColumns = `id, producer_id, amount, term_months, type, crop, state,
	   guarantee_types, status, partner_id, contracted_amount, contracted_rate,
	   created_at, updated_at`

func scanOperation(row interface{ Scan(...interface{}) error }) (*models.CreditOperation, error) {
	op := &models.CreditOperation{}
	err := row.Scan(
		&op.ID, &op.ProducerID, &op.Amount, &op.TermMonths, &op.Type,
		&op.Crop, &op.State, &op.GuaranteeTypes, &op.Status, &op.PartnerID,
		&op.ContractedAmount, &op.ContractedRate, &op.CreatedAt, &op.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return op, nil
}

// GetByID retrieves a credit operation by ID
func (r *operationRepository) GetByID(id uuid.UUID) (*models.CreditOperation, error) {
	query := fmt.Sprintf(`SELECT %s FROM credit_operations WHERE id = $1`, operationColumns)

	op, err := scanOperation(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("credit operation not found")
		}
		return nil, fmt.Errorf("failed to get credit operation: %w", err)
	}

	return op, nil
}

// Create creates a new credit operation
func (r *operationRepository) Create(op *models.CreditOperation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if op.Status == "" {
		op.Status = models.StatusDraft
	}

	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now

	query := `
		INSERT INTO credit_operations (
			id, producer_id, amount, term_months, type, crop, state,
			guarantee_types, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.Exec(query,
		op.ID, op.ProducerID, op.Amount, op.TermMonths, op.Type,
		op.Crop, op.State, op.GuaranteeTypes, op.Status,
		op.CreatedAt, op.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create credit operation: %w", err)
	}

	return nil
}

// Update updates an existing credit operation
func (r *operationRepository) Update(op *models.CreditOperation) error {
	op.UpdatedAt = time.Now()

	query := `
		UPDATE credit_operations SET
			amount = $2, term_months = $3, type = $4, crop = $5, state = $6,
			guarantee_types = $7, status = $8, partner_id = $9,
			contracted_amount = $10, contracted_rate = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Exec(query,
		op.ID, op.Amount, op.TermMonths, op.Type, op.Crop, op.State,
		op.GuaranteeTypes, op.Status, op.PartnerID, op.ContractedAmount,
		op.ContractedRate, op.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update credit operation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("credit operation not found")
	}

	return nil
}

// GetAll retrieves credit operations with filters
func (r *operationRepository) GetAll(filters OperationFilters) ([]models.CreditOperation, error) {
	query := fmt.Sprintf(`SELECT %s FROM credit_operations`, operationColumns)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if filters.ProducerID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("producer_id = $%d", argIndex))
		args = append(args, *filters.ProducerID)
		argIndex++
	}

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

	if len(filters.Type) > 0 {
		placeholders := make([]string, len(filters.Type))
		for i, opType := range filters.Type {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, opType)
			argIndex++
		}
		whereClauses = append(whereClauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}

	if filters.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("state = $%d", argIndex))
		args = append(args, filters.State)
		argIndex++
	}

	if filters.MinAmount != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("amount >= $%d", argIndex))
		args = append(args, *filters.MinAmount)
		argIndex++
	}

	if filters.MaxAmount != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("amount <= $%d", argIndex))
		args = append(args, *filters.MaxAmount)
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
		return nil, fmt.Errorf("failed to query credit operations: %w", err)
	}
	defer rows.Close()

	var operations []models.CreditOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit operation: %w", err)
		}
		operations = append(operations, *op)
	}

	return operations, nil
}

// GetByProducer retrieves every credit operation of a producer
func (r *operationRepository) GetByProducer(producerID uuid.UUID) ([]models.CreditOperation, error) {
	return r.GetAll(OperationFilters{ProducerID: &producerID})
}
