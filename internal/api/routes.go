package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/vocalis-audio/vocalis/internal/api/handlers"
	"github.com/vocalis-audio/vocalis/internal/processing"
	"github.com/vocalis-audio/vocalis/internal/repository"
	"github.com/vocalis-audio/vocalis/internal/storage"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(router *chi.Mux, api huma.API, s3Service storage.S3Service, analysisRepo repository.AnalysisRepository, processingSvc processing.ProcessingService) {
	analysisHandler := handlers.NewAnalysisHandler(analysisRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID: "createAnalysis",
		Method:      http.MethodPost,
		Path:        "/api/analyses",
		Summary:     "Create a new analysis",
		Description: "Creates a new analysis record and returns a pre-signed upload URL for the recording",
		Tags:        []string{"Analysis"},
	}, analysisHandler.CreateAnalysis)

	huma.Register(api, huma.Operation{
		OperationID: "listAnalyses",
		Method:      http.MethodGet,
		Path:        "/api/analyses",
		Summary:     "List analyses for a session",
		Description: "Returns all analyses belonging to a client session, newest first",
		Tags:        []string{"Analysis"},
	}, analysisHandler.ListAnalyses)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisStatus",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/status",
		Summary:     "Get analysis status",
		Description: "Returns the current status and progress of an analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisResults",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/results",
		Summary:     "Get analysis results",
		Description: "Returns the acoustic measurements, spectrogram and formant trajectories of a completed analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisResults)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/analyses/{id}/process",
		Summary:     "Start processing analysis",
		Description: "Starts decoding and measuring an uploaded recording in the background",
		Tags:        []string{"Analysis"},
	}, analysisHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "setSpeakerProfile",
		Method:      http.MethodPost,
		Path:        "/api/analyses/{id}/speaker",
		Summary:     "Attach speaker profile",
		Description: "Attaches speaker information that tunes the pitch tracking range before processing",
		Tags:        []string{"Analysis"},
	}, analysisHandler.SetSpeakerProfile)
}
