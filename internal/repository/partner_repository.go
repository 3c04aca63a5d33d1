package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/models"
)

// partnerRepository implements PartnerRepository
type partnerRepository struct {
	db dbExecutor
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db dbExecutor) PartnerRepository {
	return &partnerRepository{db: db}
}

// GetByID retrieves a partner by ID
func (r *partnerRepository) GetByID(id uuid.UUID) (*models.Partner, error) {
	query := `
		SELECT id, name, type, state, active, created_at, updated_at
		FROM partners WHERE id = $1
	`

	partner := &models.Partner{}
	err := r.db.QueryRow(query, id).Scan(
		&partner.ID, &partner.Name, &partner.Type, &partner.State,
		&partner.Active, &partner.CreatedAt, &partner.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("partner not found")
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return partner, nil
}

// Create creates a new partner
func (r *partnerRepository) Create(partner *models.Partner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}

	now := time.Now()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	query := `
		INSERT INTO partners (id, name, type, state, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		partner.ID, partner.Name, partner.Type, partner.State,
		partner.Active, partner.CreatedAt, partner.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

// Update updates an existing partner
func (r *partnerRepository) Update(partner *models.Partner) error {
	partner.UpdatedAt = time.Now()

	query := `
		UPDATE partners SET
			name = $2, type = $3, state = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(query,
		partner.ID, partner.Name, partner.Type, partner.State,
		partner.Active, partner.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("partner not found")
	}

	return nil
}

// Deactivate removes a partner from matching without deleting its history
func (r *partnerRepository) Deactivate(id uuid.UUID) error {
	query := `UPDATE partners SET active = false, updated_at = $2 WHERE id = $1`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate partner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("partner not found")
	}

	return nil
}

// GetAll retrieves partners with filters
func (r *partnerRepository) GetAll(filters PartnerFilters) ([]models.Partner, error) {
	query := `
		SELECT id, name, type, state, active, created_at, updated_at
		FROM partners
	`

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if filters.ActiveOnly {
		whereClauses = append(whereClauses, "active = true")
	}

	if filters.Type != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, filters.Type)
		argIndex++
	}

	if filters.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("state = $%d", argIndex))
		args = append(args, filters.State)
		argIndex++
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY name ASC"

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
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		var partner models.Partner
		err := rows.Scan(
			&partner.ID, &partner.Name, &partner.Type, &partner.State,
			&partner.Active, &partner.CreatedAt, &partner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, partner)
	}

	return partners, nil
}

// GetCriteria retrieves a partner's acceptance criteria
func (r *partnerRepository) GetCriteria(partnerID uuid.UUID) (*models.PartnerCriteria, error) {
	query := `
		SELECT pc.id, pc.partner_id, p.type, pc.min_ticket, pc.max_ticket,
			   pc.guarantee_types, pc.crops, pc.states, pc.operation_types,
			   pc.min_score, pc.max_debt_ratio, pc.updated_at
		FROM partner_criteria pc
		JOIN partners p ON p.id = pc.partner_id
		WHERE pc.partner_id = $1
	`

	criteria := &models.PartnerCriteria{}
	err := r.db.QueryRow(query, partnerID).Scan(
		&criteria.ID, &criteria.PartnerID, &criteria.PartnerType,
		&criteria.MinTicket, &criteria.MaxTicket, &criteria.GuaranteeTypes,
		&criteria.Crops, &criteria.States, &criteria.OperationTypes,
		&criteria.MinScore, &criteria.MaxDebtRatio, &criteria.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("partner criteria not found")
		}
		return nil, fmt.Errorf("failed to get partner criteria: %w", err)
	}

	return criteria, nil
}

// UpsertCriteria creates or replaces a partner's acceptance criteria
func (r *partnerRepository) UpsertCriteria(criteria *models.PartnerCriteria) error {
	if criteria.ID == uuid.Nil {
		criteria.ID = uuid.New()
	}
	criteria.UpdatedAt = time.Now()

	query := `
		INSERT INTO partner_criteria (
			id, partner_id, min_ticket, max_ticket, guarantee_types, crops,
			states, operation_types, min_score, max_debt_ratio, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (partner_id) DO UPDATE SET
			min_ticket = EXCLUDED.min_ticket,
			max_ticket = EXCLUDED.max_ticket,
			guarantee_types = EXCLUDED.guarantee_types,
			crops = EXCLUDED.crops,
			states = EXCLUDED.states,
			operation_types = EXCLUDED.operation_types,
			min_score = EXCLUDED.min_score,
			max_debt_ratio = EXCLUDED.max_debt_ratio,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(query,
		criteria.ID, criteria.PartnerID, criteria.MinTicket, criteria.MaxTicket,
		criteria.GuaranteeTypes, criteria.Crops, criteria.States,
		criteria.OperationTypes, criteria.MinScore, criteria.MaxDebtRatio,
		criteria.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert partner criteria: %w", err)
	}

	return nil
}

// GetActiveCriteria retrieves the criteria of every active partner, the input
// set for a matching run
func (r *partnerRepository) GetActiveCriteria() ([]models.PartnerCriteria, error) {
	query := `
		SELECT pc.id, pc.partner_id, p.type, pc.min_ticket, pc.max_ticket,
			   pc.guarantee_types, pc.crops, pc.states, pc.operation_types,
			   pc.min_score, pc.max_debt_ratio, pc.updated_at
		FROM partner_criteria pc
		JOIN partners p ON p.id = pc.partner_id
		WHERE p.active = true
		ORDER BY pc.partner_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active criteria: %w", err)
	}
	defer rows.Close()

	var criteria []models.PartnerCriteria
	for rows.Next() {
		var pc models.PartnerCriteria
		err := rows.Scan(
			&pc.ID, &pc.PartnerID, &pc.PartnerType, &pc.MinTicket,
			&pc.MaxTicket, &pc.GuaranteeTypes, &pc.Crops, &pc.States,
			&pc.OperationTypes, &pc.MinScore, &pc.MaxDebtRatio, &pc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner criteria: %w", err)
		}
		criteria = append(criteria, pc)
	}

	return criteria, nil
}
