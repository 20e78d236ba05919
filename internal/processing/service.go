package processing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vocalis-audio/vocalis/internal/analysis"
	"github.com/vocalis-audio/vocalis/internal/audio"
	"github.com/vocalis-audio/vocalis/internal/repository"
	"github.com/vocalis-audio/vocalis/internal/storage"
	"github.com/vocalis-audio/vocalis/pkg/models"
)

type ProcessingService interface {
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

type processingService struct {
	s3         storage.S3Service
	repository repository.AnalysisRepository
	decoder    audio.Decoder
	tempDir    string
}

func NewProcessingService(s3Service storage.S3Service, repo repository.AnalysisRepository, decoder audio.Decoder) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		decoder:    decoder,
		tempDir:    os.TempDir(),
	}
}

// ProcessAnalysis runs the full pipeline for one uploaded recording:
// download, decode, measure, store results. Pipeline failures mark the
// analysis failed with a user-facing message and are also returned.
func (s *processingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, analysisID, "processing", 10); err != nil {
		return err
	}

	// Step 2: Get analysis details
	record, err := s.repository.GetByID(ctx, analysisID)
	if err != nil {
		return err
	}
	if record.AudioS3Key == nil {
		return s.fail(ctx, analysisID, "No uploaded recording found",
			fmt.Errorf("analysis %s has no audio key", analysisID))
	}

	// Step 3: Download the recording to a temp file for the decoder.
	// Keep the original extension so container probing works.
	if err := s.repository.UpdateStatus(ctx, analysisID, "processing", 20); err != nil {
		return err
	}

	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("%s%s", analysisID, filepath.Ext(record.FileName)))
	if err := s.s3.DownloadToFile(ctx, *record.AudioS3Key, tempFile); err != nil {
		return s.fail(ctx, analysisID, "Failed to download recording", err)
	}
	defer os.Remove(tempFile) // Always cleanup

	// Step 4: Decode to mono PCM at the analysis rate
	if err := s.repository.UpdateStatus(ctx, analysisID, "processing", 40); err != nil {
		return err
	}

	clip, err := s.decoder.Decode(ctx, tempFile)
	if err != nil {
		return s.fail(ctx, analysisID, "Could not read audio from the uploaded file", err)
	}

	// Step 5: Run the acoustic measurements, tuned by the speaker profile
	// when one was attached
	if err := s.repository.UpdateStatus(ctx, analysisID, "processing", 60); err != nil {
		return err
	}

	var opts []analysis.Option
	if profile, err := s.repository.GetSpeakerProfile(ctx, analysisID); err == nil && profile != nil {
		floor, ceiling := pitchRange(profile)
		opts = append(opts, analysis.WithPitchRange(floor, ceiling))
	}

	start := time.Now()
	result, err := analysis.NewAnalyzer(opts...).Analyze(clip)
	if err != nil {
		return s.fail(ctx, analysisID, "Audio analysis failed", err)
	}
	log.Info().
		Str("analysis_id", analysisID.String()).
		Float64("duration_sec", clip.Duration()).
		Dur("elapsed", time.Since(start)).
		Msg("Acoustic analysis finished")

	// Step 6: Store results
	if err := s.repository.UpdateStatus(ctx, analysisID, "processing", 90); err != nil {
		return err
	}

	results := &models.AnalysisResults{
		ID:            uuid.New().String(),
		AnalysisID:    record.ID,
		Metrics:       result.Metrics,
		Spectrogram:   result.Spectrogram,
		FormantTracks: result.FormantTracks,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 7: Delete the uploaded recording, results are all we keep
	if err := s.s3.DeleteFile(ctx, *record.AudioS3Key); err != nil {
		// results are already stored, so log and move on
		log.Warn().Err(err).Str("key", *record.AudioS3Key).Msg("Failed to delete recording from storage")
	}

	// Step 8: Mark complete
	return s.repository.UpdateStatus(ctx, analysisID, "completed", 100)
}

// fail records a user-facing failure message and returns the underlying
// error for the caller's logs.
func (s *processingService) fail(ctx context.Context, analysisID uuid.UUID, message string, err error) error {
	if updateErr := s.repository.UpdateError(ctx, analysisID, message); updateErr != nil {
		log.Error().Err(updateErr).Str("analysis_id", analysisID.String()).Msg("Failed to record analysis error")
	}
	return fmt.Errorf("%s: %w", message, err)
}

// pitchRange resolves a speaker profile to pitch search bounds. Explicit
// bounds win; otherwise the voice type picks a preset.
func pitchRange(profile *models.SpeakerProfile) (float64, float64) {
	if profile.PitchFloorHz > 0 && profile.PitchCeilingHz > profile.PitchFloorHz {
		return profile.PitchFloorHz, profile.PitchCeilingHz
	}
	switch profile.VoiceType {
	case "low":
		return 60, 300
	case "high":
		return 120, 600
	default:
		return 75, 500
	}
}
