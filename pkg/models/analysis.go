package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateAnalysisRequest represents a request to create a new analysis
type CreateAnalysisRequest struct {
	Body struct {
		SessionID string `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
		FileName  string `json:"file_name" minLength:"1" maxLength:"255" required:"true" doc:"Original file name including extension (.wav, .mp4 or .m4a)"`
		FileSize  int64  `json:"file_size" minimum:"1024" maximum:"104857600" required:"true" doc:"Recording file size in bytes"`
		MimeType  string `json:"mime_type" enum:"audio/wav,audio/x-wav,video/mp4,audio/mp4,audio/x-m4a" required:"true" doc:"Recording MIME type"`
	}
}

// CreateAnalysisResponseBody is the body of the create analysis response
type CreateAnalysisResponseBody struct {
	ID        string `json:"id" doc:"Analysis unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for the recording upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateAnalysisResponse represents the response from creating an analysis
type CreateAnalysisResponse struct {
	Body CreateAnalysisResponseBody
}

// GetAnalysisStatusRequest represents a request to get analysis status
type GetAnalysisStatusRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisStatusResponseBody is the body of the status response
type GetAnalysisStatusResponseBody struct {
	ID        string  `json:"id" doc:"Analysis ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Analysis status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Analysis progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable stage message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID once the analysis completes"`
}

// GetAnalysisStatusResponse represents the current status of an analysis
type GetAnalysisStatusResponse struct {
	Body GetAnalysisStatusResponseBody
}

// GetAnalysisResultsRequest represents a request to get analysis results
type GetAnalysisResultsRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisResultsResponseBody is the body of the results response
type GetAnalysisResultsResponseBody struct {
	ID            string          `json:"id" doc:"Results ID"`
	Metrics       AcousticMetrics `json:"metrics" doc:"The eight acoustic measurements"`
	Spectrogram   *Spectrogram    `json:"spectrogram,omitempty" doc:"Spectrogram magnitude matrix for plotting"`
	FormantTracks *FormantTracks  `json:"formant_tracks,omitempty" doc:"Formant trajectories for plotting"`
	CreatedAt     time.Time       `json:"created_at" doc:"Results creation timestamp"`
}

// GetAnalysisResultsResponse represents the complete analysis results
type GetAnalysisResultsResponse struct {
	Body GetAnalysisResultsResponseBody
}

// ListAnalysesRequest represents a request to list analyses for a session
type ListAnalysesRequest struct {
	SessionID string `query:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
}

// AnalysisSummary is a single entry in a session's analysis listing
type AnalysisSummary struct {
	ID        string    `json:"id" doc:"Analysis ID"`
	FileName  string    `json:"file_name" doc:"Uploaded file name"`
	Status    string    `json:"status" enum:"pending,processing,completed,failed" doc:"Analysis status"`
	CreatedAt time.Time `json:"created_at" doc:"Analysis creation timestamp"`
}

// ListAnalysesResponse represents a session's analysis listing
type ListAnalysesResponse struct {
	Body struct {
		Analyses []AnalysisSummary `json:"analyses" doc:"Analyses belonging to the session, newest first"`
	}
}

// StartProcessingRequest represents a request to start processing an uploaded recording
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// SpeakerProfile carries optional information about the speaker that tunes
// the pitch-tracking search range before processing starts
type SpeakerProfile struct {
	ID             string    `json:"id,omitempty" doc:"Speaker profile unique identifier"`
	AnalysisID     string    `json:"analysis_id,omitempty" doc:"Associated analysis ID"`
	VoiceType      string    `json:"voice_type" enum:"low,medium,high" doc:"Rough voice register of the speaker"`
	PitchFloorHz   float64   `json:"pitch_floor_hz,omitempty" minimum:"0" maximum:"600" doc:"Pitch search floor in Hz (0 = derive from voice type)"`
	PitchCeilingHz float64   `json:"pitch_ceiling_hz,omitempty" minimum:"0" maximum:"1000" doc:"Pitch search ceiling in Hz (0 = derive from voice type)"`
	Notes          string    `json:"notes,omitempty" maxLength:"500" doc:"Free-form notes about the recording"`
	CreatedAt      time.Time `json:"created_at,omitempty" doc:"When the profile was added"`
}

// SetSpeakerProfileRequest represents a request to attach a speaker profile to an analysis
type SetSpeakerProfileRequest struct {
	ID   string          `path:"id" doc:"Analysis ID"`
	Body *SpeakerProfile
}

// SetSpeakerProfileResponse represents the response from attaching a speaker profile
type SetSpeakerProfileResponse struct {
	Body *SpeakerProfile
}

// Analysis represents the core analysis entity (for internal use)
type Analysis struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	FileName    string     `json:"file_name"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	AudioS3Key  *string    `json:"audio_s3_key,omitempty"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AnalysisResults represents the stored analysis results
type AnalysisResults struct {
	ID            string          `json:"id"`
	AnalysisID    string          `json:"analysis_id"`
	Metrics       AcousticMetrics `json:"metrics"`
	Spectrogram   *Spectrogram    `json:"spectrogram,omitempty"`
	FormantTracks *FormantTracks  `json:"formant_tracks,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
