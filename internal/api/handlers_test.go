package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
	"github.com/agrocredbr/agrocred-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubProducerService returns canned responses per method
type stubProducerService struct {
	services.ProducerService

	producer *models.Producer
	err      error
}

func (s *stubProducerService) GetByID(id string) (*models.Producer, error) {
	return s.producer, s.err
}

func (s *stubProducerService) Create(form *repository.ProducerForm) (*models.Producer, error) {
	return s.producer, s.err
}

type stubScoringService struct {
	services.ScoringService

	score *scoring.RiskScore
	err   error
}

func (s *stubScoringService) GetScore(ctx context.Context, producerID string) (*scoring.RiskScore, error) {
	return s.score, s.err
}

type stubMatchingService struct {
	services.MatchingService

	response *services.MatchResponse
	err      error
}

func (s *stubMatchingService) Match(ctx context.Context, operationID string) (*services.MatchResponse, error) {
	return s.response, s.err
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetProducerOK(t *testing.T) {
	producer := &models.Producer{ID: uuid.New(), Name: "Fazenda Alvorada", State: "MT"}
	handler := NewProducerHandler(&stubProducerService{producer: producer})

	r := gin.New()
	r.GET("/producers/:id", handler.Get)

	w := doRequest(r, http.MethodGet, "/producers/"+producer.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Producer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, producer.ID, got.ID)
	assert.Equal(t, "Fazenda Alvorada", got.Name)
}

func TestGetProducerNotFound(t *testing.T) {
	handler := NewProducerHandler(&stubProducerService{
		err: apperrors.NotFound("producer not found", nil),
	})

	r := gin.New()
	r.GET("/producers/:id", handler.Get)

	w := doRequest(r, http.MethodGet, "/producers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.ErrCodeNotFound)
}

func TestCreateProducerRejectsMalformedBody(t *testing.T) {
	handler := NewProducerHandler(&stubProducerService{})

	r := gin.New()
	r.POST("/producers", handler.Create)

	w := doRequest(r, http.MethodPost, "/producers", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScoreIncompleteProfileMapsTo422(t *testing.T) {
	handler := NewScoringHandler(&stubScoringService{
		err: apperrors.IncompleteProfile("producer has no financial profile", nil),
	})

	r := gin.New()
	r.GET("/producers/:id/score", handler.GetScore)

	w := doRequest(r, http.MethodGet, "/producers/"+uuid.NewString()+"/score", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.ErrCodeIncompleteProfile)
}

func TestGetScoreOK(t *testing.T) {
	score := &scoring.RiskScore{
		ID:      uuid.New(),
		Score:   74,
		Profile: scoring.RiskModerate,
		Tier:    scoring.TierB,
	}
	handler := NewScoringHandler(&stubScoringService{score: score})

	r := gin.New()
	r.GET("/producers/:id/score", handler.GetScore)

	w := doRequest(r, http.MethodGet, "/producers/"+uuid.NewString()+"/score", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got scoring.RiskScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 74, got.Score)
	assert.Equal(t, scoring.RiskModerate, got.Profile)
}

func TestMatchReturnsRankingAndWarnings(t *testing.T) {
	opID := uuid.New()
	response := &services.MatchResponse{
		OperationID: opID,
		Results: []matching.MatchResult{
			{ID: uuid.New(), OperationID: opID, PartnerID: uuid.New(), MatchScore: 91, Rank: 1},
			{ID: uuid.New(), OperationID: opID, PartnerID: uuid.New(), MatchScore: 77, Rank: 2},
		},
		Skipped: []matching.SkippedPartner{
			{PartnerID: uuid.New(), Reason: matching.SkipMissingAcceptedSet, Detail: "crops is empty"},
		},
	}
	handler := NewOperationHandler(nil, &stubMatchingService{response: response})

	r := gin.New()
	r.POST("/operations/:id/match", handler.Match)

	w := doRequest(r, http.MethodPost, "/operations/"+opID.String()+"/match", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got services.MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, 1, got.Results[0].Rank)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, matching.SkipMissingAcceptedSet, got.Skipped[0].Reason)
}

func TestMatchConflictOnClosedOperation(t *testing.T) {
	handler := NewOperationHandler(nil, &stubMatchingService{
		err: apperrors.Conflict("operation is not open for matching", nil),
	})

	r := gin.New()
	r.POST("/operations/:id/match", handler.Match)

	w := doRequest(r, http.MethodPost, "/operations/"+uuid.NewString()+"/match", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, assert.AnError)
	})

	w := doRequest(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
