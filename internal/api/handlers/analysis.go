package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vocalis-audio/vocalis/internal/processing"
	"github.com/vocalis-audio/vocalis/internal/repository"
	"github.com/vocalis-audio/vocalis/internal/storage"
	"github.com/vocalis-audio/vocalis/pkg/models"
)

// allowedExtensions are the upload file extensions accepted before any
// storage work happens.
var allowedExtensions = map[string]bool{
	".wav": true,
	".mp4": true,
	".m4a": true,
}

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	repo          repository.AnalysisRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(repo repository.AnalysisRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *AnalysisHandler {
	return &AnalysisHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateAnalysis registers an uploaded recording and returns a pre-signed
// upload URL. The file is validated by name and MIME type before any
// storage work happens.
func (h *AnalysisHandler) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.CreateAnalysisResponse, error) {
	log.Info().
		Str("fileName", req.Body.FileName).
		Int64("fileSize", req.Body.FileSize).
		Str("mimeType", req.Body.MimeType).
		Msg("Creating new analysis")

	ext := strings.ToLower(filepath.Ext(req.Body.FileName))
	if !allowedExtensions[ext] {
		return nil, huma.Error400BadRequest(
			"Unsupported file type. Please upload a WAV, MP4 or M4A recording.", nil)
	}

	analysisID := uuid.New()
	audioKey := fmt.Sprintf("uploads/%s%s", analysisID, ext)

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, audioKey, req.Body.MimeType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest(
				"Unsupported file type. Please upload a WAV, MP4 or M4A recording.", err)
		}
		return nil, huma.Error500InternalServerError("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now().UTC()
	analysis := &models.Analysis{
		ID:         analysisID.String(),
		SessionID:  req.Body.SessionID,
		FileName:   req.Body.FileName,
		Status:     "pending",
		Progress:   0,
		AudioS3Key: &audioKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.Create(ctx, analysis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create analysis", err)
	}
	log.Info().Str("analysisID", analysis.ID).Str("audioKey", audioKey).Msg("Analysis created")

	return &models.CreateAnalysisResponse{
		Body: models.CreateAnalysisResponseBody{
			ID:        analysis.ID,
			UploadURL: uploadURL,
			ExpiresIn: int((15 * time.Minute).Seconds()),
		},
	}, nil
}

// GetAnalysisStatus returns the current status of an analysis
func (h *AnalysisHandler) GetAnalysisStatus(ctx context.Context, req *models.GetAnalysisStatusRequest) (*models.GetAnalysisStatusResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, huma.Error404NotFound("Analysis not found", err)
	}

	message := statusMessage(analysis.Status, analysis.Progress)

	var resultsID *string
	if analysis.Status == "completed" {
		if results, err := h.repo.GetResults(ctx, analysisID); err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetAnalysisStatusResponse{
		Body: models.GetAnalysisStatusResponseBody{
			ID:        analysis.ID,
			Status:    analysis.Status,
			Progress:  analysis.Progress,
			Message:   message,
			ResultsID: resultsID,
		},
	}, nil
}

// GetAnalysisResults returns the acoustic measurements of a completed
// analysis
func (h *AnalysisHandler) GetAnalysisResults(ctx context.Context, req *models.GetAnalysisResultsRequest) (*models.GetAnalysisResultsResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, huma.Error404NotFound("Analysis not found", err)
	}

	if analysis.Status != "completed" {
		return nil, huma.Error409Conflict("Analysis not yet completed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	results, err := h.repo.GetResults(ctx, analysisID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	return &models.GetAnalysisResultsResponse{
		Body: models.GetAnalysisResultsResponseBody{
			ID:            results.ID,
			Metrics:       results.Metrics,
			Spectrogram:   results.Spectrogram,
			FormantTracks: results.FormantTracks,
			CreatedAt:     results.CreatedAt,
		},
	}, nil
}

// ListAnalyses returns all analyses belonging to a session, newest first
func (h *AnalysisHandler) ListAnalyses(ctx context.Context, req *models.ListAnalysesRequest) (*models.ListAnalysesResponse, error) {
	analyses, err := h.repo.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list analyses", err)
	}

	resp := &models.ListAnalysesResponse{}
	resp.Body.Analyses = make([]models.AnalysisSummary, 0, len(analyses))
	for _, a := range analyses {
		resp.Body.Analyses = append(resp.Body.Analyses, models.AnalysisSummary{
			ID:        a.ID,
			FileName:  a.FileName,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
		})
	}
	return resp, nil
}

// StartProcessing starts processing an uploaded recording
func (h *AnalysisHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, huma.Error404NotFound("Analysis not found", err)
	}
	if analysis.Status != "pending" {
		return nil, huma.Error409Conflict("Analysis already processed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	log.Info().Str("analysisID", analysisID.String()).Msg("Starting background processing")
	go func() {
		if err := h.processingSvc.ProcessAnalysis(context.Background(), analysisID); err != nil {
			log.Error().Err(err).Str("analysisID", analysisID.String()).Msg("Processing failed")
		}
	}()

	return &models.StartProcessingResponse{
		Body: struct {
			Message string `json:"message" doc:"Confirmation message"`
		}{
			Message: "Processing started successfully",
		},
	}, nil
}

// SetSpeakerProfile attaches speaker information to an analysis so the
// pitch tracker can be tuned before processing starts
func (h *AnalysisHandler) SetSpeakerProfile(ctx context.Context, req *models.SetSpeakerProfileRequest) (*models.SetSpeakerProfileResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, huma.Error404NotFound("Analysis not found", err)
	}
	if analysis.Status != "pending" {
		return nil, huma.Error409Conflict("Analysis already processed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	if req.Body.PitchFloorHz > 0 && req.Body.PitchCeilingHz > 0 &&
		req.Body.PitchCeilingHz <= req.Body.PitchFloorHz {
		return nil, huma.Error400BadRequest("Pitch ceiling must be above the pitch floor", nil)
	}

	profile := &models.SpeakerProfile{
		ID:             uuid.New().String(),
		AnalysisID:     analysisID.String(),
		VoiceType:      req.Body.VoiceType,
		PitchFloorHz:   req.Body.PitchFloorHz,
		PitchCeilingHz: req.Body.PitchCeilingHz,
		Notes:          req.Body.Notes,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.repo.CreateSpeakerProfile(ctx, profile); err != nil {
		return nil, huma.Error500InternalServerError("Failed to save speaker profile", err)
	}

	return &models.SetSpeakerProfileResponse{Body: profile}, nil
}

// statusMessage creates a human-readable stage message
func statusMessage(status string, progress int) string {
	switch status {
	case "pending":
		return "Waiting for the recording upload..."
	case "processing":
		if progress < 40 {
			return "Fetching your recording..."
		} else if progress < 60 {
			return "Decoding audio..."
		} else if progress < 90 {
			return "Measuring pitch, formants and voice quality..."
		}
		return "Finalizing results..."
	case "completed":
		return "Analysis complete!"
	case "failed":
		return "Analysis failed. Please try again."
	default:
		return "Unknown status"
	}
}
