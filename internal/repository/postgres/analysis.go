package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/vocalis-audio/vocalis/internal/repository"
	"github.com/vocalis-audio/vocalis/pkg/models"
)

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository
func NewPostgresAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Create inserts a new analysis record
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	query := `
		INSERT INTO analyses (id, session_id, file_name, status, progress, audio_s3_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.SessionID,
		analysis.FileName,
		analysis.Status,
		analysis.Progress,
		analysis.AudioS3Key,
		analysis.CreatedAt,
		analysis.UpdatedAt)

	return err
}

// GetByID retrieves an analysis by ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `
		SELECT id, session_id, file_name, status, progress, audio_s3_key, error_message, created_at, updated_at, completed_at
		FROM analyses
		WHERE id = $1`

	analysis, err := scanAnalysis(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetBySessionID retrieves analyses by session ID, newest first
func (r *PostgresAnalysisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error) {
	query := `
		SELECT id, session_id, file_name, status, progress, audio_s3_key, error_message, created_at, updated_at, completed_at
		FROM analyses
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var analysis models.Analysis
	var audioS3Key, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID,
		&analysis.SessionID,
		&analysis.FileName,
		&analysis.Status,
		&analysis.Progress,
		&audioS3Key,
		&errorMsg,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
		&completedAt)

	if err != nil {
		return nil, err
	}

	if audioS3Key.Valid {
		analysis.AudioS3Key = &audioS3Key.String
	}
	if errorMsg.Valid {
		analysis.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		analysis.CompletedAt = &completedAt.Time
	}

	return &analysis, nil
}

// UpdateStatus updates the status and progress of an analysis
func (r *PostgresAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE analyses
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks an analysis as failed with the given error message
func (r *PostgresAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE analyses
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores analysis results. Metrics, spectrogram and formant
// tracks are persisted as JSON columns.
func (r *PostgresAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	metrics, err := json.Marshal(results.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	var spectrogram, formantTracks []byte
	if results.Spectrogram != nil {
		spectrogram, err = json.Marshal(results.Spectrogram)
		if err != nil {
			return fmt.Errorf("failed to marshal spectrogram: %w", err)
		}
	}
	if results.FormantTracks != nil {
		formantTracks, err = json.Marshal(results.FormantTracks)
		if err != nil {
			return fmt.Errorf("failed to marshal formant tracks: %w", err)
		}
	}

	query := `
		INSERT INTO analysis_results (id, analysis_id, metrics, spectrogram, formant_tracks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.AnalysisID,
		string(metrics),
		nullableJSON(spectrogram),
		nullableJSON(formantTracks),
		results.CreatedAt)

	return err
}

func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}

// GetResults retrieves analysis results
func (r *PostgresAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	query := `
		SELECT id, analysis_id, metrics, spectrogram, formant_tracks, created_at
		FROM analysis_results
		WHERE analysis_id = $1`

	var results models.AnalysisResults
	var metricsStr string
	var spectrogramStr, formantTracksStr sql.NullString

	err := r.db.QueryRowContext(ctx, query, analysisID).Scan(
		&results.ID,
		&results.AnalysisID,
		&metricsStr,
		&spectrogramStr,
		&formantTracksStr,
		&results.CreatedAt)

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metricsStr), &results.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if spectrogramStr.Valid {
		var spectrogram models.Spectrogram
		if err := json.Unmarshal([]byte(spectrogramStr.String), &spectrogram); err != nil {
			return nil, fmt.Errorf("failed to unmarshal spectrogram: %w", err)
		}
		results.Spectrogram = &spectrogram
	}
	if formantTracksStr.Valid {
		var tracks models.FormantTracks
		if err := json.Unmarshal([]byte(formantTracksStr.String), &tracks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal formant tracks: %w", err)
		}
		results.FormantTracks = &tracks
	}

	return &results, nil
}

// CreateSpeakerProfile inserts a speaker profile for an analysis
func (r *PostgresAnalysisRepository) CreateSpeakerProfile(ctx context.Context, profile *models.SpeakerProfile) error {
	query := `
		INSERT INTO speaker_profiles (id, analysis_id, voice_type, pitch_floor_hz, pitch_ceiling_hz, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.AnalysisID,
		profile.VoiceType,
		profile.PitchFloorHz,
		profile.PitchCeilingHz,
		profile.Notes,
		profile.CreatedAt)

	return err
}

// GetSpeakerProfile retrieves the speaker profile by analysis ID
func (r *PostgresAnalysisRepository) GetSpeakerProfile(ctx context.Context, analysisID uuid.UUID) (*models.SpeakerProfile, error) {
	query := `
		SELECT id, analysis_id, voice_type, pitch_floor_hz, pitch_ceiling_hz, notes, created_at
		FROM speaker_profiles
		WHERE analysis_id = $1`

	var profile models.SpeakerProfile
	var notes sql.NullString

	err := r.db.QueryRowContext(ctx, query, analysisID).Scan(
		&profile.ID,
		&profile.AnalysisID,
		&profile.VoiceType,
		&profile.PitchFloorHz,
		&profile.PitchCeilingHz,
		&notes,
		&profile.CreatedAt)

	if err != nil {
		return nil, err
	}

	if notes.Valid {
		profile.Notes = notes.String
	}

	return &profile, nil
}
