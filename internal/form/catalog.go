package form

import (
	"context"
	"strings"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// StrainService is the part of the service layer a strain form submits to.
type StrainService interface {
	CreateStrain(ctx context.Context, in api.StrainInput) (types.Strain, error)
	UpdateStrain(ctx context.Context, id int64, in api.StrainInput) (types.Strain, error)
}

// BatchService is the part of the service layer a batch form submits to.
type BatchService interface {
	CreateBatch(ctx context.Context, in api.BatchInput) (types.Batch, error)
	UpdateBatch(ctx context.Context, id int64, in api.BatchInput) (types.Batch, error)
}

// StrainForm edits one strain. The duplicate check is advisory; the backend
// has the final word through its own error.
type StrainForm struct {
	Name        string
	Description string

	svc       StrainService
	existing  func() []types.Strain
	lang      string
	editingID int64
}

// NewStrainForm returns an empty strain form. existing supplies the current
// catalog for the duplicate check.
func NewStrainForm(svc StrainService, existing func() []types.Strain, lang string) *StrainForm {
	if existing == nil {
		existing = func() []types.Strain { return nil }
	}
	return &StrainForm{svc: svc, existing: existing, lang: lang}
}

// SetForEdit loads s into the form.
func (f *StrainForm) SetForEdit(s types.Strain) {
	f.Name, f.Description, f.editingID = s.Name, s.Description, s.ID
}

// Validate requires a name and flags a duplicate.
func (f *StrainForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid(f.lang, "name", msgNameRequired)
	}
	if types.DuplicateStrainName(f.existing(), f.Name, f.editingID) {
		return duplicate(f.lang, "name", msgNameDuplicate)
	}
	return nil
}

// Submit validates, then creates or updates the strain.
func (f *StrainForm) Submit(ctx context.Context) (types.Strain, error) {
	if err := f.Validate(); err != nil {
		return types.Strain{}, err
	}
	in := api.StrainInput{Name: strings.TrimSpace(f.Name), Description: f.Description}
	if f.editingID != 0 {
		return f.svc.UpdateStrain(ctx, f.editingID, in)
	}
	return f.svc.CreateStrain(ctx, in)
}

// BatchForm edits one batch.
type BatchForm struct {
	BatchCode   string
	Description string
	StartedDate string

	svc       BatchService
	existing  func() []types.Batch
	lang      string
	editingID int64
}

// NewBatchForm returns an empty batch form.
func NewBatchForm(svc BatchService, existing func() []types.Batch, lang string) *BatchForm {
	if existing == nil {
		existing = func() []types.Batch { return nil }
	}
	return &BatchForm{svc: svc, existing: existing, lang: lang}
}

// SetForEdit loads b into the form.
func (f *BatchForm) SetForEdit(b types.Batch) {
	f.BatchCode, f.Description, f.StartedDate, f.editingID = b.BatchCode, b.Description, b.StartedDate, b.ID
}

// Validate requires a code and flags a duplicate.
func (f *BatchForm) Validate() error {
	if strings.TrimSpace(f.BatchCode) == "" {
		return invalid(f.lang, "batch_code", msgBatchCodeRequired)
	}
	if types.DuplicateBatchCode(f.existing(), f.BatchCode, f.editingID) {
		return duplicate(f.lang, "batch_code", msgBatchCodeDuplicate)
	}
	return nil
}

// Submit validates, then creates or updates the batch.
func (f *BatchForm) Submit(ctx context.Context) (types.Batch, error) {
	if err := f.Validate(); err != nil {
		return types.Batch{}, err
	}
	in := api.BatchInput{BatchCode: strings.TrimSpace(f.BatchCode), Description: f.Description}
	if f.StartedDate != "" {
		d := f.StartedDate
		in.StartedDate = &d
	}
	if f.editingID != 0 {
		return f.svc.UpdateBatch(ctx, f.editingID, in)
	}
	return f.svc.CreateBatch(ctx, in)
}
