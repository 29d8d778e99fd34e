// Package export renders completed onboarding tasks as an Excel workbook for
// the operations team.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"walksocr/internal/domain"
)

const sheetName = "Profiles"

// columns defines the header row: task metadata, the profile's customer
// fields in DataFields order, then scoring metadata.
var columns = []string{
	"Task ID",
	"Status",
	"Empresa",
	"CNPJ",
	"Inscrição Estadual",
	"Email",
	"Telefone",
	"Celular",
	"CEP",
	"Endereço",
	"Número",
	"Complemento",
	"Bairro",
	"Cidade",
	"UF",
	"Nome Completo",
	"CPF",
	"Data Nascimento",
	"Endereço Proprietário",
	"Banco",
	"Agência",
	"Conta",
	"Fachada Armazenada",
	"Confidence Score",
	"Fields Extracted",
	"Needs Review",
	"Processed Documents",
	"Created At",
}

// Writer builds an Excel workbook of consolidated onboarding profiles.
type Writer struct {
	file *excelize.File
	row  int
}

// NewWriter creates a Writer with the header row already written.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header row: %w", err)
	}
	return &Writer{file: f, row: 1}, nil
}

// WriteTasks appends one row per completed task. Tasks without a stored
// result (e.g. failed before processing) get a row with empty profile fields.
func (w *Writer) WriteTasks(tasks []*domain.OnboardingTask) error {
	for _, task := range tasks {
		if err := w.writeTask(task); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTask(task *domain.OnboardingTask) error {
	w.row++
	cell := fmt.Sprintf("A%d", w.row)

	row := taskToRow(task)
	if err := w.file.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("writing row for task %s: %w", task.ID, err)
	}
	return nil
}

// WriteTo writes the finished workbook to w.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// Close releases the workbook resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

func taskToRow(task *domain.OnboardingTask) []interface{} {
	row := make([]interface{}, 0, len(columns))
	row = append(row, task.ID.String(), string(task.Status))

	var profile *domain.ConsolidatedProfile
	if len(task.Result) > 0 {
		var result domain.TaskResult
		if err := json.Unmarshal(task.Result, &result); err == nil {
			profile = result.Consolidated
		}
	}

	if profile == nil {
		for range columns[2:] {
			row = append(row, "")
		}
		row[len(row)-1] = task.CreatedAt.Format("2006-01-02 15:04:05")
		return row
	}

	for _, f := range profile.DataFields() {
		row = append(row, deref(*f.Value))
	}
	row = append(row,
		profile.FacadeStored,
		profile.ConfidenceScore,
		profile.FieldsExtracted,
		strings.Join(profile.NeedsReview, ", "),
		kindList(profile.ProcessedDocuments),
		task.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	return row
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func kindList(kinds []domain.DocumentKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
