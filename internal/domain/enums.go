package domain

// DocumentKind identifies the category of an onboarding document.
type DocumentKind string

const (
	// KindRG is the Brazilian identity card (RG).
	KindRG DocumentKind = "rg"
	// KindCNPJ is the business-registration certificate (comprovante CNPJ).
	KindCNPJ DocumentKind = "cnpj"
	// KindAddress is a proof-of-address document.
	KindAddress DocumentKind = "address"
	// KindFacade is the storefront photo. It is stored as-is and never OCRed.
	KindFacade DocumentKind = "facade"
)

// AllKinds lists every accepted document kind in processing order.
var AllKinds = []DocumentKind{KindRG, KindCNPJ, KindAddress, KindFacade}

// IsValidKind reports whether k is one of the accepted document kinds.
func IsValidKind(k DocumentKind) bool {
	switch k {
	case KindRG, KindCNPJ, KindAddress, KindFacade:
		return true
	}
	return false
}

// TaskStatus represents the lifecycle of an onboarding task.
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusSuccess    TaskStatus = "success"
	TaskStatusFailure    TaskStatus = "failure"
)

// Sentinel markers the vision model is instructed to emit for problem values.
const (
	// SentinelIllegible marks text the model could not read.
	SentinelIllegible = "[ILEGÍVEL]"
	// SentinelNeedsReview marks a value flagged for manual review.
	SentinelNeedsReview = "[REVISAR]"
)

// FileType represents the allowed upload file types.
type FileType string

const (
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
	FileTypePDF: "application/pdf",
}

// DetectFileType sniffs the magic numbers of an uploaded document.
// Returns the detected type and its content type, or ok=false.
func DetectFileType(data []byte) (FileType, string, bool) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return FileTypeJPG, "image/jpeg", true
	case len(data) >= 4 && string(data[:4]) == "\x89PNG":
		return FileTypePNG, "image/png", true
	case len(data) >= 4 && string(data[:4]) == "%PDF":
		return FileTypePDF, "application/pdf", true
	}
	return "", "", false
}
