package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// In-memory repository fakes. Only the behavior the services exercise is
// implemented; everything else returns a plain error.

type fakeProducerRepo struct {
	producers map[uuid.UUID]*models.Producer
	profiles  map[uuid.UUID]*models.FinancialProfile
}

func newFakeProducerRepo() *fakeProducerRepo {
	return &fakeProducerRepo{
		producers: make(map[uuid.UUID]*models.Producer),
		profiles:  make(map[uuid.UUID]*models.FinancialProfile),
	}
}

func (f *fakeProducerRepo) GetByID(id uuid.UUID) (*models.Producer, error) {
	p, ok := f.producers[id]
	if !ok {
		return nil, fmt.Errorf("producer not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProducerRepo) GetByDocument(document string) (*models.Producer, error) {
	for _, p := range f.producers {
		if p.Document == document {
			copied := *p
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("producer not found")
}

func (f *fakeProducerRepo) Create(p *models.Producer) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := *p
	f.producers[p.ID] = &copied
	return nil
}

func (f *fakeProducerRepo) Update(p *models.Producer) error {
	if _, ok := f.producers[p.ID]; !ok {
		return fmt.Errorf("producer not found")
	}
	copied := *p
	f.producers[p.ID] = &copied
	return nil
}

func (f *fakeProducerRepo) Archive(id uuid.UUID) error {
	p, ok := f.producers[id]
	if !ok || p.ArchivedAt != nil {
		return fmt.Errorf("producer not found")
	}
	now := time.Now()
	p.ArchivedAt = &now
	return nil
}

func (f *fakeProducerRepo) GetAll(filters repository.ProducerFilters) ([]models.Producer, error) {
	var out []models.Producer
	for _, p := range f.producers {
		if !filters.IncludeArchived && p.ArchivedAt != nil {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducerRepo) GetProfile(producerID uuid.UUID) (*models.FinancialProfile, error) {
	fp, ok := f.profiles[producerID]
	if !ok {
		return nil, fmt.Errorf("financial profile not found")
	}
	copied := *fp
	return &copied, nil
}

func (f *fakeProducerRepo) UpsertProfile(fp *models.FinancialProfile) error {
	copied := *fp
	f.profiles[fp.ProducerID] = &copied
	return nil
}

type fakePartnerRepo struct {
	partners map[uuid.UUID]*models.Partner
	criteria map[uuid.UUID]*models.PartnerCriteria
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{
		partners: make(map[uuid.UUID]*models.Partner),
		criteria: make(map[uuid.UUID]*models.PartnerCriteria),
	}
}

func (f *fakePartnerRepo) GetByID(id uuid.UUID) (*models.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, fmt.Errorf("partner not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakePartnerRepo) Create(p *models.Partner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := *p
	f.partners[p.ID] = &copied
	return nil
}

func (f *fakePartnerRepo) Update(p *models.Partner) error {
	if _, ok := f.partners[p.ID]; !ok {
		return fmt.Errorf("partner not found")
	}
	copied := *p
	f.partners[p.ID] = &copied
	return nil
}

func (f *fakePartnerRepo) Deactivate(id uuid.UUID) error {
	p, ok := f.partners[id]
	if !ok {
		return fmt.Errorf("partner not found")
	}
	p.Active = false
	return nil
}

func (f *fakePartnerRepo) GetAll(filters repository.PartnerFilters) ([]models.Partner, error) {
	var out []models.Partner
	for _, p := range f.partners {
		if filters.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePartnerRepo) GetCriteria(partnerID uuid.UUID) (*models.PartnerCriteria, error) {
	c, ok := f.criteria[partnerID]
	if !ok {
		return nil, fmt.Errorf("partner criteria not found")
	}
	copied := *c
	return &copied, nil
}

func (f *fakePartnerRepo) UpsertCriteria(c *models.PartnerCriteria) error {
	copied := *c
	f.criteria[c.PartnerID] = &copied
	return nil
}

func (f *fakePartnerRepo) GetActiveCriteria() ([]models.PartnerCriteria, error) {
	var out []models.PartnerCriteria
	for partnerID, c := range f.criteria {
		p, ok := f.partners[partnerID]
		if !ok || !p.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].PartnerID.String() < out[b].PartnerID.String()
	})
	return out, nil
}

type fakeOperationRepo struct {
	operations map[uuid.UUID]*models.CreditOperation
}

func newFakeOperationRepo() *fakeOperationRepo {
	return &fakeOperationRepo{operations: make(map[uuid.UUID]*models.CreditOperation)}
}

func (f *fakeOperationRepo) GetByID(id uuid.UUID) (*models.CreditOperation, error) {
	op, ok := f.operations[id]
	if !ok {
		return nil, fmt.Errorf("credit operation not found")
	}
	copied := *op
	return &copied, nil
}

func (f *fakeOperationRepo) Create(op *models.CreditOperation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	copied := *op
	f.operations[op.ID] = &copied
	return nil
}

func (f *fakeOperationRepo) Update(op *models.CreditOperation) error {
	if _, ok := f.operations[op.ID]; !ok {
		return fmt.Errorf("credit operation not found")
	}
	copied := *op
	f.operations[op.ID] = &copied
	return nil
}

func (f *fakeOperationRepo) GetAll(filters repository.OperationFilters) ([]models.CreditOperation, error) {
	var out []models.CreditOperation
	for _, op := range f.operations {
		if filters.ProducerID != nil && op.ProducerID != *filters.ProducerID {
			continue
		}
		out = append(out, *op)
	}
	return out, nil
}

func (f *fakeOperationRepo) GetByProducer(producerID uuid.UUID) ([]models.CreditOperation, error) {
	return f.GetAll(repository.OperationFilters{ProducerID: &producerID})
}

type fakeScoreRepo struct {
	scores      map[uuid.UUID][]scoring.RiskScore
	matches     map[uuid.UUID][]matching.MatchResult
	commissions map[uuid.UUID]*models.Commission
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{
		scores:      make(map[uuid.UUID][]scoring.RiskScore),
		matches:     make(map[uuid.UUID][]matching.MatchResult),
		commissions: make(map[uuid.UUID]*models.Commission),
	}
}

func (f *fakeScoreRepo) StoreScore(score *scoring.RiskScore) error {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	f.scores[score.ProducerID] = append(f.scores[score.ProducerID], *score)
	return nil
}

func (f *fakeScoreRepo) GetLatestByProducer(producerID uuid.UUID) (*scoring.RiskScore, error) {
	history := f.scores[producerID]
	if len(history) == 0 {
		return nil, fmt.Errorf("risk score not found")
	}
	latest := history[len(history)-1]
	return &latest, nil
}

func (f *fakeScoreRepo) GetScoreHistory(producerID uuid.UUID, limit int) ([]scoring.RiskScore, error) {
	history := f.scores[producerID]
	out := make([]scoring.RiskScore, len(history))
	for i := range history {
		out[i] = history[len(history)-1-i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeScoreRepo) GetProducersWithStaleScores(asOf time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for producerID, history := range f.scores {
		if history[len(history)-1].ValidUntil.Before(asOf) {
			ids = append(ids, producerID)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeScoreRepo) StoreMatchResults(results []matching.MatchResult) error {
	for _, r := range results {
		f.matches[r.OperationID] = append(f.matches[r.OperationID], r)
	}
	return nil
}

func (f *fakeScoreRepo) GetMatchResults(operationID uuid.UUID) ([]matching.MatchResult, error) {
	return f.matches[operationID], nil
}

func (f *fakeScoreRepo) DeleteMatchResults(operationID uuid.UUID) error {
	delete(f.matches, operationID)
	return nil
}

func (f *fakeScoreRepo) CreateCommission(c *models.Commission) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	copied := *c
	f.commissions[c.OperationID] = &copied
	return nil
}

func (f *fakeScoreRepo) GetCommissionByOperation(operationID uuid.UUID) (*models.Commission, error) {
	c, ok := f.commissions[operationID]
	if !ok {
		return nil, fmt.Errorf("commission not found")
	}
	copied := *c
	return &copied, nil
}

func (f *fakeScoreRepo) GetCommissions(filters repository.CommissionFilters) ([]models.Commission, error) {
	var out []models.Commission
	for _, c := range f.commissions {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeScoreRepo) MarkCommissionPaid(id uuid.UUID, paidAt time.Time) error {
	for _, c := range f.commissions {
		if c.ID == id && c.Status == models.PaymentPending {
			c.Status = models.PaymentPaid
			c.PaidAt = &paidAt
			return nil
		}
	}
	return fmt.Errorf("commission not found or not pending")
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) Create(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(u *models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("user not found")
	}
	delete(f.users, id)
	return nil
}

type fakeTxManager struct {
	repos *repository.Repositories
}

func (f *fakeTxManager) WithTransaction(fn func(repos *repository.Repositories) error) error {
	return fn(f.repos)
}

// fakeScoreCache is an in-memory stand-in for the Redis score cache
type fakeScoreCache struct {
	entries map[uuid.UUID]*scoring.RiskScore
}

func newFakeScoreCache() *fakeScoreCache {
	return &fakeScoreCache{entries: make(map[uuid.UUID]*scoring.RiskScore)}
}

func (f *fakeScoreCache) Get(ctx context.Context, producerID uuid.UUID) *scoring.RiskScore {
	score, ok := f.entries[producerID]
	if !ok || score.Expired(nowFunc()) {
		return nil
	}
	return score
}

func (f *fakeScoreCache) Set(ctx context.Context, score *scoring.RiskScore) {
	f.entries[score.ProducerID] = score
}

func (f *fakeScoreCache) Invalidate(ctx context.Context, producerID uuid.UUID) {
	delete(f.entries, producerID)
}

func newTestRepos() *repository.Repositories {
	repos := &repository.Repositories{
		Producer:  newFakeProducerRepo(),
		Partner:   newFakePartnerRepo(),
		Operation: newFakeOperationRepo(),
		Score:     newFakeScoreRepo(),
		User:      newFakeUserRepo(),
	}
	repos.Tx = &fakeTxManager{repos: repos}
	return repos
}
