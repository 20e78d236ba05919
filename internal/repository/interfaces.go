package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vocalis-audio/vocalis/pkg/models"
)

// AnalysisRepository defines the interface for analysis data operations
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.AnalysisResults) error
	GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error)
	CreateSpeakerProfile(ctx context.Context, profile *models.SpeakerProfile) error
	GetSpeakerProfile(ctx context.Context, analysisID uuid.UUID) (*models.SpeakerProfile, error)
}
