package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/models"
)

// producerRepository implements ProducerRepository
type producerRepository struct {
	db dbExecutor
}

// NewProducerRepository creates a new producer repository
func NewProducerRepository(db dbExecutor) ProducerRepository {
	return &producerRepository{db: db}
}

const producerColumns = `id, name, document, email, state, city, total_area_ha, crops,
	   irrigated, insured, years_in_activity, archived_at, created_at, updated_at`

func scanProducer(row interface{ Scan(...interface{}) error }) (*models.Producer, error) {
	p := &models.Producer{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Document, &p.Email, &p.State, &p.City,
		&p.TotalAreaHa, &p.Crops, &p.Irrigated, &p.Insured,
		&p.YearsInActivity, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a producer by ID
func (r *producerRepository) GetByID(id uuid.UUID) (*models.Producer, error) {
	query := fmt.Sprintf(`SELECT %s FROM producers WHERE id = $1`, producerColumns)

	producer, err := scanProducer(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("producer not found")
		}
		return nil, fmt.Errorf("failed to get producer: %w", err)
	}

	return producer, nil
}

// GetByDocument retrieves a producer by CPF/CNPJ document
func (r *producerRepository) GetByDocument(document string) (*models.Producer, error) {
	query := fmt.Sprintf(`SELECT %s FROM producers WHERE document = $1`, producerColumns)

	producer, err := scanProducer(r.db.QueryRow(query, document))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("producer with document %s not found", document)
		}
		return nil, fmt.Errorf("failed to get producer: %w", err)
	}

	return producer, nil
}

// Create creates a new producer
func (r *producerRepository) Create(producer *models.Producer) error {
	if producer.ID == uuid.Nil {
		producer.ID = uuid.New()
	}

	now := time.Now()
	producer.CreatedAt = now
	producer.UpdatedAt = now

	query := `
		INSERT INTO producers (
			id, name, document, email, state, city, total_area_ha, crops,
			irrigated, insured, years_in_activity, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.Exec(query,
		producer.ID, producer.Name, producer.Document, producer.Email,
		producer.State, producer.City, producer.TotalAreaHa, producer.Crops,
		producer.Irrigated, producer.Insured, producer.YearsInActivity,
		producer.CreatedAt, producer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}

	return nil
}

// Update updates an existing producer
func (r *producerRepository) Update(producer *models.Producer) error {
	producer.UpdatedAt = time.Now()

	query := `
		UPDATE producers SET
			name = $2, email = $3, state = $4, city = $5, total_area_ha = $6,
			crops = $7, irrigated = $8, insured = $9, years_in_activity = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.Exec(query,
		producer.ID, producer.Name, producer.Email, producer.State,
		producer.City, producer.TotalAreaHa, producer.Crops,
		producer.Irrigated, producer.Insured, producer.YearsInActivity,
		producer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update producer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("producer not found")
	}

	return nil
}

// Archive soft-deletes a producer. Scores and operations are kept for audit.
func (r *producerRepository) Archive(id uuid.UUID) error {
	query := `UPDATE producers SET archived_at = $2, updated_at = $2 WHERE id = $1 AND archived_at IS NULL`

	result, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to archive producer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("producer not found")
	}

	return nil
}

// GetAll retrieves producers with filters
func (r *producerRepository) GetAll(filters ProducerFilters) ([]models.Producer, error) {
	query := fmt.Sprintf(`SELECT %s FROM producers`, producerColumns)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if !filters.IncludeArchived {
		whereClauses = append(whereClauses, "archived_at IS NULL")
	}

	if filters.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("state = $%d", argIndex))
		args = append(args, filters.State)
		argIndex++
	}

	if filters.Crop != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("crops @> $%d", argIndex))
		args = append(args, models.StringList{filters.Crop})
		argIndex++
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY updated_at DESC"

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
		return nil, fmt.Errorf("failed to query producers: %w", err)
	}
	defer rows.Close()

	var producers []models.Producer
	for rows.Next() {
		producer, err := scanProducer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan producer: %w", err)
		}
		producers = append(producers, *producer)
	}

	return producers, nil
}

// GetProfile retrieves a producer's financial profile
func (r *producerRepository) GetProfile(producerID uuid.UUID) (*models.FinancialProfile, error) {
	query := `
		SELECT id, producer_id, annual_revenue, total_debt, monthly_cash_flow,
			   guarantee_value, has_negative_records, credit_history_years,
			   created_at, updated_at
		FROM financial_profiles WHERE producer_id = $1
	`

	profile := &models.FinancialProfile{}
	err := r.db.QueryRow(query, producerID).Scan(
		&profile.ID, &profile.ProducerID, &profile.AnnualRevenue,
		&profile.TotalDebt, &profile.MonthlyCashFlow, &profile.GuaranteeValue,
		&profile.HasNegativeRecords, &profile.CreditHistoryYears,
		&profile.CreatedAt, &profile.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("financial profile not found")
		}
		return nil, fmt.Errorf("failed to get financial profile: %w", err)
	}

	return profile, nil
}

// UpsertProfile creates or replaces a producer's financial profile
func (r *producerRepository) UpsertProfile(profile *models.FinancialProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO financial_profiles (
			id, producer_id, annual_revenue, total_debt, monthly_cash_flow,
			guarantee_value, has_negative_records, credit_history_years,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (producer_id) DO UPDATE SET
			annual_revenue = EXCLUDED.annual_revenue,
			total_debt = EXCLUDED.total_debt,
			monthly_cash_flow = EXCLUDED.monthly_cash_flow,
			guarantee_value = EXCLUDED.guarantee_value,
			has_negative_records = EXCLUDED.has_negative_records,
			credit_history_years = EXCLUDED.credit_history_years,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(query,
		profile.ID, profile.ProducerID, profile.AnnualRevenue,
		profile.TotalDebt, profile.MonthlyCashFlow, profile.GuaranteeValue,
		profile.HasNegativeRecords, profile.CreditHistoryYears,
		profile.CreatedAt, profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert financial profile: %w", err)
	}

	return nil
}
