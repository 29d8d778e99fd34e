package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ParsedRecord maps extracted field names to values. A nil value means the
// field was present in the schema but could not be extracted. Keys beyond the
// schema's essential fields are preserved as-is.
type ParsedRecord map[string]*string

// Get returns the value for field, or "" when absent or null.
func (r ParsedRecord) Get(field string) string {
	if v, ok := r[field]; ok && v != nil {
		return *v
	}
	return ""
}

// Set stores a non-null value for field.
func (r ParsedRecord) Set(field, value string) {
	v := value
	r[field] = &v
}

// QualityMetrics scores a ParsedRecord against its schema. Derived data,
// recomputed fresh on every evaluation.
type QualityMetrics struct {
	Score         float64  `json:"score"`
	ValidFields   int      `json:"valid_fields"`
	TotalRequired int      `json:"total_required"`
	FoundFields   []string `json:"found_fields"`
	MissingFields []string `json:"missing_required"`
	Accepted      bool     `json:"is_acceptable"`
}

// FacadeInfo carries metadata for a stored storefront photo.
type FacadeInfo struct {
	StoredForWebhook bool   `json:"stored_for_webhook"`
	ImageValidated   bool   `json:"image_validated"`
	FileSize         int64  `json:"file_size"`
	StorageKey       string `json:"storage_key,omitempty"`
	// PhotoURL is a presigned download link filled in right before webhook
	// delivery; it is never persisted.
	PhotoURL string `json:"photo_url,omitempty"`
}

// DocumentResult is the terminal outcome of one document's extraction
// pipeline. Failed attempts are discarded; only the final attempt survives.
type DocumentResult struct {
	Kind        DocumentKind    `json:"document_type"`
	Success     bool            `json:"success"`
	Parsed      ParsedRecord    `json:"data,omitempty"`
	RawText     string          `json:"raw_text,omitempty"`
	Quality     *QualityMetrics `json:"quality_metrics,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	Facade      *FacadeInfo     `json:"facade,omitempty"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// ConsolidatedProfile is the merged customer profile built from all document
// results of one onboarding task. It is always rebuilt from the full result
// set, never updated incrementally.
type ConsolidatedProfile struct {
	// Company identity
	Empresa           *string `json:"empresa"`
	CNPJ              *string `json:"cnpj"`
	InscricaoEstadual *string `json:"inscricao_estadual"`
	Email             *string `json:"email"`
	Telefone          *string `json:"telefone"`
	Celular           *string `json:"celular"`

	// Address
	CEP         *string `json:"cep"`
	Endereco    *string `json:"endereco"`
	Numero      *string `json:"numero"`
	Complemento *string `json:"complemento"`
	Bairro      *string `json:"bairro"`
	Cidade      *string `json:"cidade"`
	UF          *string `json:"uf"`

	// Owner identity
	NomeCompleto         *string `json:"nome_completo"`
	CPF                  *string `json:"cpf"`
	DataNascimento       *string `json:"data_nascimento"`
	EnderecoProprietario *string `json:"endereco_proprietario"`

	// Banking placeholders, filled during onboarding, never by OCR.
	Banco   *string `json:"banco"`
	Agencia *string `json:"agencia"`
	Conta   *string `json:"conta"`

	// Facade photo metadata
	FacadeStored bool        `json:"facade_stored"`
	FacadeInfo   *FacadeInfo `json:"facade_info,omitempty"`

	// Metadata
	ConfidenceScore    float64        `json:"confidence_score"`
	FieldsExtracted    int            `json:"fields_extracted"`
	FieldsTotal        int            `json:"fields_total"`
	NeedsReview        []string       `json:"needs_review"`
	ProcessedDocuments []DocumentKind `json:"processed_documents"`
}

// DataFields returns the profile's customer-facing fields in a stable order,
// keyed by their JSON names. Metadata and facade flags are excluded.
func (p *ConsolidatedProfile) DataFields() []ProfileField {
	return []ProfileField{
		{"empresa", &p.Empresa},
		{"cnpj", &p.CNPJ},
		{"inscricao_estadual", &p.InscricaoEstadual},
		{"email", &p.Email},
		{"telefone", &p.Telefone},
		{"celular", &p.Celular},
		{"cep", &p.CEP},
		{"endereco", &p.Endereco},
		{"numero", &p.Numero},
		{"complemento", &p.Complemento},
		{"bairro", &p.Bairro},
		{"cidade", &p.Cidade},
		{"uf", &p.UF},
		{"nome_completo", &p.NomeCompleto},
		{"cpf", &p.CPF},
		{"data_nascimento", &p.DataNascimento},
		{"endereco_proprietario", &p.EnderecoProprietario},
		{"banco", &p.Banco},
		{"agencia", &p.Agencia},
		{"conta", &p.Conta},
	}
}

// ProfileField pairs a profile field's JSON name with a pointer to its value.
type ProfileField struct {
	Name  string
	Value **string
}

// TaskResult is the final outcome of a whole onboarding task.
type TaskResult struct {
	TaskID              uuid.UUID                        `json:"task_id"`
	Success             bool                             `json:"success"`
	TotalDocuments      int                              `json:"total_documents"`
	SuccessfulDocuments int                              `json:"successful_documents"`
	FailedDocuments     int                              `json:"failed_documents"`
	Results             map[DocumentKind]*DocumentResult `json:"results"`
	Consolidated        *ConsolidatedProfile             `json:"consolidated_data"`
	ProcessedAt         time.Time                        `json:"processing_time"`
}

// DocumentInput references one uploaded document staged for processing.
type DocumentInput struct {
	Kind        DocumentKind `json:"kind"`
	StorageKey  string       `json:"storage_key"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
}

// OnboardingTask is a persisted processing job for one customer's documents.
type OnboardingTask struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Status          TaskStatus      `db:"status" json:"status"`
	Progress        int             `db:"progress" json:"progress"`
	CurrentDocument string          `db:"current_document" json:"current_document,omitempty"`
	Documents       json.RawMessage `db:"documents" json:"documents"`
	Result          json.RawMessage `db:"result" json:"result,omitempty"`
	Error           string          `db:"error" json:"error,omitempty"`
	Attempts        int             `db:"attempts" json:"attempts"`
	WebhookURL      string          `db:"webhook_url" json:"webhook_url,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Inputs decodes the task's staged document references.
func (t *OnboardingTask) Inputs() ([]DocumentInput, error) {
	var inputs []DocumentInput
	if err := json.Unmarshal(t.Documents, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}
