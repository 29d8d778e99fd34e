package domain

import "errors"

var (
	ErrSchemaNotFound      = errors.New("no field schema for document kind")
	ErrUnknownDocumentKind = errors.New("unknown document kind")
	ErrTaskNotFound        = errors.New("onboarding task not found")
	ErrNoDocuments         = errors.New("at least one document must be provided")
	ErrDuplicateDocument   = errors.New("duplicate document kind in task")
	ErrInvalidBase64       = errors.New("document content is not valid base64")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
