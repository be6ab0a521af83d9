package form

import (
	"context"
	"strings"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// LogService is the part of the service layer a log form submits to.
type LogService interface {
	CreateLog(ctx context.Context, treeID int64, m *api.Multipart) (types.TreeLog, error)
}

// LogForm is a journal entry draft. Readings are kept as typed text and
// parsed during validation.
type LogForm struct {
	ActionType string
	ActionDate string
	Title      string
	Notes      string

	PH         string
	EC         string
	Temp       string
	Humidity   string
	WetWeight  string
	DryWeight  string
	TrimWeight string

	svc    LogService
	treeID int64
	opts   options
	images []upload.File
}

// NewLogForm returns a log draft for treeID with the defaults applied.
func NewLogForm(svc LogService, treeID int64, opts ...Option) *LogForm {
	f := &LogForm{svc: svc, treeID: treeID, opts: buildOptions(opts)}
	f.Reset()
	return f
}

// Reset restores the defaults: a note dated today.
func (f *LogForm) Reset() {
	*f = LogForm{svc: f.svc, treeID: f.treeID, opts: f.opts}
	f.ActionType = types.ActionNote
	f.ActionDate = f.opts.now().Format(DateLayout)
}

// SetImages validates and replaces the pending images.
func (f *LogForm) SetImages(files []upload.File) error {
	if err := upload.ValidateImages(files); err != nil {
		return err
	}
	f.images = append([]upload.File(nil), files...)
	return nil
}

func (f *LogForm) readings() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"ph", f.PH}, {"ec", f.EC}, {"temp", f.Temp}, {"humidity", f.Humidity},
		{"wet_weight", f.WetWeight}, {"dry_weight", f.DryWeight}, {"trim_weight", f.TrimWeight},
	}
}

// Validate checks the action type, the date and every reading.
func (f *LogForm) Validate() error {
	if !types.ValidAction(f.ActionType) {
		return invalid(f.opts.lang, "action_type", msgActionInvalid)
	}
	if strings.TrimSpace(f.ActionDate) == "" {
		return invalid(f.opts.lang, "action_date", msgActionDateRequired)
	}
	for _, r := range f.readings() {
		if _, err := parseDecimal(r.name, r.value); err != nil {
			return err
		}
	}
	return nil
}

// Payload builds the multipart body. Empty values are omitted and images
// travel under "images".
func (f *LogForm) Payload() *api.Multipart {
	m := api.NewMultipart()
	add := func(name, value string) {
		if v := strings.TrimSpace(value); v != "" {
			m.Set(name, v)
		}
	}
	add("action_type", f.ActionType)
	add("title", f.Title)
	add("notes", f.Notes)
	add("action_date", f.ActionDate)
	for _, r := range f.readings() {
		add(r.name, r.value)
	}
	for _, img := range f.images {
		m.AddFile("images", img)
	}
	return m
}

// Submit validates and posts the entry. The draft resets on success.
func (f *LogForm) Submit(ctx context.Context) (types.TreeLog, error) {
	if err := f.Validate(); err != nil {
		return types.TreeLog{}, err
	}
	l, err := f.svc.CreateLog(ctx, f.treeID, f.Payload())
	if err != nil {
		return types.TreeLog{}, err
	}
	f.Reset()
	return l, nil
}
