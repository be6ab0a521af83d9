package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/internal/preview"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

// TreeService is the part of the service layer a tree form submits to.
type TreeService interface {
	CreateTree(ctx context.Context, m *api.Multipart) (types.Tree, error)
	UpdateTree(ctx context.Context, id int64, m *api.Multipart) (types.Tree, error)
}

// Option configures a form.
type Option func(*options)

type options struct {
	now       func() time.Time
	lang      string
	strains   func() []types.Strain
	onSuccess func(ctx context.Context, t types.Tree) error
}

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLanguage picks the language of validation messages.
func WithLanguage(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// WithStrains supplies the strain list used to resolve the strain selector.
func WithStrains(strains func() []types.Strain) Option {
	return func(o *options) { o.strains = strains }
}

// OnSuccess registers a callback run after a successful submit, typically a
// store refresh. Its error is returned from Submit but the draft stays reset.
func OnSuccess(fn func(ctx context.Context, t types.Tree) error) Option {
	return func(o *options) { o.onSuccess = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		lang:    types.DefaultLanguage,
		strains: func() []types.Strain { return nil },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PendingImage is an image picked for upload with its preview URL.
type PendingImage struct {
	File       upload.File
	PreviewURL string
}

// TreeForm is the create/edit state for one tree. It is safe for use from
// one goroutine at a time; Submitting may be read concurrently.
type TreeForm struct {
	Draft Draft

	svc      TreeService
	previews preview.Registry
	opts     options

	editingID int64
	images    []PendingImage
	document  *upload.File
	err       string

	mu         sync.Mutex
	submitting bool
}

// NewTreeForm returns a form in its default state.
func NewTreeForm(svc TreeService, previews preview.Registry, opts ...Option) *TreeForm {
	f := &TreeForm{svc: svc, previews: previews, opts: buildOptions(opts)}
	f.Reset()
	return f
}

// DefaultDraft returns the create-mode defaults for the given day.
func DefaultDraft(today time.Time) Draft {
	return Draft{
		PlantDate: today.Format(DateLayout),
		Status:    types.StatusAlive,
		Sex:       types.SexUnknown,
	}
}

// Reset returns the form to create mode with default values, dropping
// pending files and the error.
func (f *TreeForm) Reset() {
	f.Draft = DefaultDraft(f.opts.now())
	f.editingID = 0
	f.document = nil
	f.err = ""
	f.replaceImages(nil)
}

// SetForEdit loads t into the form. Files are never pre-populated.
func (f *TreeForm) SetForEdit(t types.Tree) {
	f.Draft = draftFromTree(t)
	f.editingID = t.ID
	f.document = nil
	f.err = ""
	f.replaceImages(nil)
}

// EditingID returns the id of the tree being edited, or 0 in create mode.
func (f *TreeForm) EditingID() int64 { return f.editingID }

// Err returns the current form error, or "".
func (f *TreeForm) Err() string { return f.err }

// SetErr overrides the form error.
func (f *TreeForm) SetErr(msg string) { f.err = msg }

// Submitting reports whether a submit is in flight.
func (f *TreeForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// HandleInputChange applies a raw input event. Number inputs store a
// number, or nil when empty; every other input stores the string as is.
func (f *TreeForm) HandleInputChange(name, value, inputType string) error {
	if inputType == "number" && !IsNumeric(name) {
		if _, err := strconv.ParseFloat(value, 64); value != "" && err != nil {
			return &types.ValidationError{Field: name, Message: fmt.Sprintf("%s must be a number, got %q", name, value)}
		}
	}
	return f.Draft.setString(name, value)
}

// SetFieldValue stores a typed value into the named field.
func (f *TreeForm) SetFieldValue(name string, value any) error {
	return f.Draft.set(name, value)
}

// Images returns the pending images in order.
func (f *TreeForm) Images() []PendingImage {
	return append([]PendingImage(nil), f.images...)
}

// PreviewURLs returns one preview URL per pending image.
func (f *TreeForm) PreviewURLs() []string {
	urls := make([]string, len(f.images))
	for i, img := range f.images {
		urls[i] = img.PreviewURL
	}
	return urls
}

// SetImageFiles replaces the pending images. If any file fails validation
// the whole batch is rejected, the form error is set and the previous list
// is kept.
func (f *TreeForm) SetImageFiles(files []upload.File) error {
	if err := upload.ValidateImages(files); err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	return f.setImages(files)
}

// AppendImageFiles adds files after the pending ones with the same
// all-or-nothing rule as SetImageFiles.
func (f *TreeForm) AppendImageFiles(files []upload.File) error {
	if err := upload.ValidateImages(files); err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	all := make([]upload.File, 0, len(f.images)+len(files))
	for _, img := range f.images {
		all = append(all, img.File)
	}
	return f.setImages(append(all, files...))
}

// setImages issues fresh previews for files, then revokes the old ones.
func (f *TreeForm) setImages(files []upload.File) error {
	next := make([]PendingImage, 0, len(files))
	for _, file := range files {
		url, err := f.previews.Create(file)
		if err != nil {
			for _, p := range next {
				f.previews.Revoke(p.PreviewURL)
			}
			f.err = err.Error()
			return err
		}
		next = append(next, PendingImage{File: file, PreviewURL: url})
	}
	f.replaceImages(next)
	return nil
}

func (f *TreeForm) replaceImages(next []PendingImage) {
	for _, img := range f.images {
		f.previews.Revoke(img.PreviewURL)
	}
	f.images = next
}

// Document returns the pending document, if any.
func (f *TreeForm) Document() (upload.File, bool) {
	if f.document == nil {
		return upload.File{}, false
	}
	return *f.document, true
}

// SetDocument validates and stores the document. On failure the form error
// is set and the previous document is kept.
func (f *TreeForm) SetDocument(file upload.File) error {
	if err := upload.ValidateDocument(file); err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	doc := file
	f.document = &doc
	return nil
}

// ClearDocument drops the pending document.
func (f *TreeForm) ClearDocument() {
	f.document = nil
}

// Close revokes every outstanding preview URL.
func (f *TreeForm) Close() {
	f.replaceImages(nil)
}

// Validate runs the ordered checks and returns the first failure as a
// *types.ValidationError.
func (f *TreeForm) Validate() error {
	d := &f.Draft
	lang := f.opts.lang
	switch {
	case d.Strain == "":
		return invalid(lang, strainField, msgStrainRequired)
	case !strainKnown(f.opts.strains(), d.Strain):
		return invalid(lang, strainField, msgStrainUnknown)
	case d.Status == "":
		return invalid(lang, "status", msgStatusRequired)
	case d.Sex == "":
		return invalid(lang, "sex", msgSexRequired)
	case d.PlantDate == "":
		return invalid(lang, "plant_date", msgPlantDateRequired)
	case d.YieldAmount != nil && *d.YieldAmount < 0:
		return invalid(lang, "yield_amount", msgYieldNegative)
	case d.SeedCount != nil && *d.SeedCount < 0:
		return invalid(lang, "seed_count", msgSeedCountNegative)
	}
	return nil
}

func strainKnown(strains []types.Strain, name string) bool {
	_, ok := types.FindStrainByName(strains, name)
	return ok
}

// Payload builds the multipart body for the current draft.
func (f *TreeForm) Payload() *api.Multipart {
	m := api.NewMultipart()

	strainID := ""
	if s, ok := types.FindStrainByName(f.opts.strains(), f.Draft.Strain); ok {
		strainID = strconv.FormatInt(s.ID, 10)
	}
	m.Set("strain_id", strainID)

	for _, fd := range fields {
		v, _ := f.Draft.Value(fd.name)
		m.Set(fd.name, v)
	}
	if f.document != nil {
		m.AddFile("document", *f.document)
	}
	for _, img := range f.images {
		m.AddFile("uploaded_images", img.File)
	}
	return m
}

// Submit validates the draft and creates or updates the tree. Validation
// failures never reach the service. On success the form resets and the
// success callback runs; on failure the draft is kept and the error text
// becomes the form error.
func (f *TreeForm) Submit(ctx context.Context) (types.Tree, error) {
	f.err = ""
	if err := f.Validate(); err != nil {
		f.err = err.Error()
		return types.Tree{}, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return types.Tree{}, types.ErrSubmitInProgress
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	var (
		tree types.Tree
		err  error
	)
	payload := f.Payload()
	if f.editingID != 0 {
		tree, err = f.svc.UpdateTree(ctx, f.editingID, payload)
	} else {
		tree, err = f.svc.CreateTree(ctx, payload)
	}
	if err != nil {
		f.err = submitMessage(err)
		return types.Tree{}, err
	}

	f.Reset()
	if f.opts.onSuccess != nil {
		if err := f.opts.onSuccess(ctx, tree); err != nil {
			return tree, err
		}
	}
	return tree, nil
}

func submitMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
