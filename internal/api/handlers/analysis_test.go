package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vocalis-audio/vocalis/pkg/models"
)

// MockAnalysisRepository implements repository.AnalysisRepository for testing
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	args := m.Called(ctx, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResults), args.Error(1)
}

func (m *MockAnalysisRepository) CreateSpeakerProfile(ctx context.Context, profile *models.SpeakerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetSpeakerProfile(ctx context.Context, analysisID uuid.UUID) (*models.SpeakerProfile, error) {
	args := m.Called(ctx, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpeakerProfile), args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadToFile(ctx context.Context, key string, path string) error {
	args := m.Called(ctx, key, path)
	return args.Error(0)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	args := m.Called(ctx, analysisID)
	return args.Error(0)
}

func createRequest(fileName, mimeType string) *models.CreateAnalysisRequest {
	req := &models.CreateAnalysisRequest{}
	req.Body.SessionID = "test-session-123"
	req.Body.FileName = fileName
	req.Body.FileSize = 5242880 // 5MB
	req.Body.MimeType = mimeType
	return req
}

func TestCreateAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		mimeType  string
		mockSetup func(*MockAnalysisRepository, *MockS3Service)
		wantError bool
	}{
		{
			name:     "valid wav file",
			fileName: "reading-passage.wav",
			mimeType: "audio/wav",
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "audio/wav").Return("https://example.com/upload", nil)
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Analysis")).Return(nil)
			},
			wantError: false,
		},
		{
			name:     "valid mp4 file",
			fileName: "session-video.mp4",
			mimeType: "video/mp4",
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "video/mp4").Return("https://example.com/upload", nil)
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Analysis")).Return(nil)
			},
			wantError: false,
		},
		{
			name:     "unsupported extension rejected before any storage work",
			fileName: "notes.txt",
			mimeType: "audio/wav",
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				// no expectations: validation fails first
			},
			wantError: true,
		},
		{
			name:     "rejected content type from storage",
			fileName: "recording.wav",
			mimeType: "audio/wav",
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "audio/wav").
					Return("", fmt.Errorf("invalid content type: audio/wav"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAnalysisRepository{}
			mockS3 := &MockS3Service{}
			mockProc := &MockProcessingService{}
			tt.mockSetup(mockRepo, mockS3)

			handler := NewAnalysisHandler(mockRepo, mockS3, mockProc)

			resp, err := handler.CreateAnalysis(context.Background(), createRequest(tt.fileName, tt.mimeType))

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
				assert.NotEmpty(t, resp.Body.ID)
				assert.NotEmpty(t, resp.Body.UploadURL)
				assert.Equal(t, 900, resp.Body.ExpiresIn) // 15 minutes in seconds
			}

			mockRepo.AssertExpectations(t)
			mockS3.AssertExpectations(t)
			mockProc.AssertExpectations(t)
		})
	}
}

func TestCreateAnalysisCaseInsensitiveExtension(t *testing.T) {
	mockRepo := &MockAnalysisRepository{}
	mockS3 := &MockS3Service{}

	mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "audio/wav").Return("https://example.com/upload", nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	handler := NewAnalysisHandler(mockRepo, mockS3, &MockProcessingService{})
	resp, err := handler.CreateAnalysis(context.Background(), createRequest("RECORDING.WAV", "audio/wav"))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Body.UploadURL)
}

func TestGetAnalysisStatus(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:       id.String(),
		Status:   "processing",
		Progress: 60,
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	req := &models.GetAnalysisStatusRequest{ID: id.String()}
	resp, err := handler.GetAnalysisStatus(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Body.Status)
	assert.Equal(t, 60, resp.Body.Progress)
	assert.Equal(t, "Measuring pitch, formants and voice quality...", resp.Body.Message)
	assert.Nil(t, resp.Body.ResultsID)
}

func TestGetAnalysisStatusInvalidID(t *testing.T) {
	handler := NewAnalysisHandler(&MockAnalysisRepository{}, &MockS3Service{}, &MockProcessingService{})

	_, err := handler.GetAnalysisStatus(context.Background(), &models.GetAnalysisStatusRequest{ID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestGetAnalysisResults(t *testing.T) {
	id := uuid.New()
	metrics := models.AcousticMetrics{
		MeanPitchHz:  182.4,
		F1Hz:         512.0,
		F2Hz:         1710.6,
		F3Hz:         2690.3,
		Jitter:       0.012,
		Shimmer:      0.041,
		HNRdB:        17.8,
		LowHighRatio: 8.3,
	}

	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "completed",
	}, nil)
	mockRepo.On("GetResults", mock.Anything, id).Return(&models.AnalysisResults{
		ID:         uuid.New().String(),
		AnalysisID: id.String(),
		Metrics:    metrics,
		CreatedAt:  time.Now().UTC(),
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	resp, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, metrics, resp.Body.Metrics)
}

func TestGetAnalysisResultsNotCompleted(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "processing",
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	_, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "GetResults", mock.Anything, mock.Anything)
}

func TestListAnalyses(t *testing.T) {
	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetBySessionID", mock.Anything, "test-session-123").Return([]*models.Analysis{
		{ID: uuid.New().String(), FileName: "second.wav", Status: "completed"},
		{ID: uuid.New().String(), FileName: "first.mp4", Status: "failed"},
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	resp, err := handler.ListAnalyses(context.Background(), &models.ListAnalysesRequest{SessionID: "test-session-123"})
	require.NoError(t, err)
	require.Len(t, resp.Body.Analyses, 2)
	assert.Equal(t, "second.wav", resp.Body.Analyses[0].FileName)
	assert.Equal(t, "failed", resp.Body.Analyses[1].Status)
}

func TestStartProcessing(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockProc := &MockProcessingService{}

	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "pending",
	}, nil)

	done := make(chan struct{})
	mockProc.On("ProcessAnalysis", mock.Anything, id).
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)

	resp, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, "Processing started successfully", resp.Body.Message)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background processing never started")
	}
	mockProc.AssertExpectations(t)
}

func TestStartProcessingAlreadyProcessed(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockProc := &MockProcessingService{}

	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "completed",
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)

	_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
	assert.Error(t, err)
	mockProc.AssertNotCalled(t, "ProcessAnalysis", mock.Anything, mock.Anything)
}

func TestSetSpeakerProfile(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}

	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "pending",
	}, nil)
	mockRepo.On("CreateSpeakerProfile", mock.Anything, mock.AnythingOfType("*models.SpeakerProfile")).Return(nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	req := &models.SetSpeakerProfileRequest{
		ID: id.String(),
		Body: &models.SpeakerProfile{
			VoiceType:      "low",
			PitchFloorHz:   60,
			PitchCeilingHz: 300,
		},
	}
	resp, err := handler.SetSpeakerProfile(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.Body.AnalysisID)
	assert.Equal(t, "low", resp.Body.VoiceType)
	mockRepo.AssertExpectations(t)
}

func TestSetSpeakerProfileInvertedRange(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{
		ID:     id.String(),
		Status: "pending",
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})

	req := &models.SetSpeakerProfileRequest{
		ID: id.String(),
		Body: &models.SpeakerProfile{
			VoiceType:      "medium",
			PitchFloorHz:   400,
			PitchCeilingHz: 100,
		},
	}
	_, err := handler.SetSpeakerProfile(context.Background(), req)
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "CreateSpeakerProfile", mock.Anything, mock.Anything)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Waiting for the recording upload...", statusMessage("pending", 0))
	assert.Equal(t, "Fetching your recording...", statusMessage("processing", 20))
	assert.Equal(t, "Decoding audio...", statusMessage("processing", 40))
	assert.Equal(t, "Measuring pitch, formants and voice quality...", statusMessage("processing", 60))
	assert.Equal(t, "Finalizing results...", statusMessage("processing", 90))
	assert.Equal(t, "Analysis complete!", statusMessage("completed", 100))
	assert.Equal(t, "Analysis failed. Please try again.", statusMessage("failed", 40))
}
