package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"walksocr/internal/domain"
	"walksocr/internal/port"
	"walksocr/mocks"
)

func encodedJPEG() string {
	return base64.StdEncoding.EncodeToString(jpegBytes)
}

func TestCreateTask_StagesDocumentsAndQueues(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	repo := new(mocks.MockTaskRepo)
	svc := NewOnboardingService(repo, storage, testBucket, 10)

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == testBucket && in.ContentType == "image/jpeg"
	})).Return(&port.UploadOutput{Location: "s3://x"}, nil).Twice()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	task, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{
			{Kind: domain.KindCNPJ, Content: encodedJPEG()},
			{Kind: domain.KindFacade, Content: encodedJPEG()},
		},
		WebhookURL: "https://example.com/hook",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusQueued, task.Status)
	assert.Equal(t, "https://example.com/hook", task.WebhookURL)

	inputs, err := task.Inputs()
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, domain.KindCNPJ, inputs[0].Kind)
	assert.Contains(t, inputs[0].StorageKey, task.ID.String())
	assert.Contains(t, inputs[0].StorageKey, "cnpj.jpg")

	storage.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreateTask_NoDocuments(t *testing.T) {
	svc := NewOnboardingService(new(mocks.MockTaskRepo), new(mocks.MockObjectStorage), testBucket, 10)

	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{})
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestCreateTask_DuplicateKind(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := NewOnboardingService(new(mocks.MockTaskRepo), storage, testBucket, 10)

	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil).Once()

	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{
			{Kind: domain.KindCNPJ, Content: encodedJPEG()},
			{Kind: domain.KindCNPJ, Content: encodedJPEG()},
		},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateDocument)
	storage.AssertExpectations(t)
}

func TestCreateTask_UnknownKind(t *testing.T) {
	svc := NewOnboardingService(new(mocks.MockTaskRepo), new(mocks.MockObjectStorage), testBucket, 10)

	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{{Kind: "passport", Content: encodedJPEG()}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownDocumentKind)
}

func TestCreateTask_InvalidBase64(t *testing.T) {
	svc := NewOnboardingService(new(mocks.MockTaskRepo), new(mocks.MockObjectStorage), testBucket, 10)

	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{{Kind: domain.KindRG, Content: "not-base64!!!"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBase64)
}

func TestCreateTask_UnsupportedFileType(t *testing.T) {
	svc := NewOnboardingService(new(mocks.MockTaskRepo), new(mocks.MockObjectStorage), testBucket, 10)

	gif := base64.StdEncoding.EncodeToString([]byte("GIF89a....."))
	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{{Kind: domain.KindRG, Content: gif}},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestCreateTask_FileTooLarge(t *testing.T) {
	svc := NewOnboardingService(new(mocks.MockTaskRepo), new(mocks.MockObjectStorage), testBucket, 0)

	_, err := svc.CreateTask(context.Background(), &CreateTaskInput{
		Documents: []DocumentUpload{{Kind: domain.KindRG, Content: encodedJPEG()}},
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}
