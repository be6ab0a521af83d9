package form

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// fakeRegistry records every created and revoked preview URL.
type fakeRegistry struct {
	n       int
	live    map[string]bool
	revoked []string
	failOn  string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{live: make(map[string]bool)}
}

func (r *fakeRegistry) Create(f upload.File) (string, error) {
	if f.Name == r.failOn {
		return "", errors.New("preview failed")
	}
	r.n++
	url := fmt.Sprintf("blob:test/%d", r.n)
	r.live[url] = true
	return url, nil
}

func (r *fakeRegistry) Revoke(url string) {
	delete(r.live, url)
	r.revoked = append(r.revoked, url)
}

type fakeTreeService struct {
	created  []*api.Multipart
	updated  map[int64]*api.Multipart
	err      error
	returned types.Tree
}

func (s *fakeTreeService) CreateTree(_ context.Context, m *api.Multipart) (types.Tree, error) {
	s.created = append(s.created, m)
	return s.returned, s.err
}

func (s *fakeTreeService) UpdateTree(_ context.Context, id int64, m *api.Multipart) (types.Tree, error) {
	if s.updated == nil {
		s.updated = make(map[int64]*api.Multipart)
	}
	s.updated[id] = m
	return s.returned, s.err
}

var (
	fixedNow = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	strains  = []types.Strain{{ID: 3, Name: "Kush"}, {ID: 7, Name: "Haze"}}
)

func newForm(svc TreeService, reg *fakeRegistry, opts ...Option) *TreeForm {
	base := []Option{WithClock(fixedNow), WithLanguage(types.LanguageEnglish),
		WithStrains(func() []types.Strain { return strains })}
	return NewTreeForm(svc, reg, append(base, opts...)...)
}

func jpeg(name string) upload.File {
	return upload.FromBytes(name, "image/jpeg", []byte("jpeg"))
}

func TestResetDefaults(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry())
	assert.Equal(t, "2026-03-14", f.Draft.PlantDate)
	assert.Equal(t, types.StatusAlive, f.Draft.Status)
	assert.Equal(t, types.SexUnknown, f.Draft.Sex)
	assert.Equal(t, int64(0), f.EditingID())
	assert.Nil(t, f.Draft.YieldAmount)
}

func TestSetForEdit(t *testing.T) {
	y := types.Decimal(12.5)
	parent := int64(4)
	doc := "http://x/doc.pdf"
	tree := types.Tree{
		ID: 9, Nickname: "Ruby", Strain: &types.Strain{ID: 3, Name: "Kush"},
		Batch: &types.Batch{ID: 2, BatchCode: "B-2"}, PlantDate: "2025-01-01",
		YieldAmount: &y, ParentMale: &parent, Document: &doc,
	}

	reg := newFakeRegistry()
	f := newForm(&fakeTreeService{}, reg)
	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg")}))
	f.SetForEdit(tree)

	assert.Equal(t, int64(9), f.EditingID())
	assert.Equal(t, "Kush", f.Draft.Strain)
	require.NotNil(t, f.Draft.BatchID)
	assert.Equal(t, int64(2), *f.Draft.BatchID)
	assert.Equal(t, 12.5, *f.Draft.YieldAmount)
	assert.Equal(t, types.StatusAlive, f.Draft.Status, "empty status falls back")
	assert.Equal(t, types.SexUnknown, f.Draft.Sex)
	assert.Empty(t, f.Images(), "files are never pre-populated")
	_, hasDoc := f.Document()
	assert.False(t, hasDoc)
	assert.Empty(t, reg.live, "previous previews revoked")

	*f.Draft.ParentMale = 99
	assert.Equal(t, int64(4), parent, "draft does not alias the tree")
}

func TestHandleInputChange(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry())

	require.NoError(t, f.HandleInputChange("yield_amount", "3.5", "number"))
	require.NotNil(t, f.Draft.YieldAmount)
	assert.Equal(t, 3.5, *f.Draft.YieldAmount)

	require.NoError(t, f.HandleInputChange("yield_amount", "", "number"))
	assert.Nil(t, f.Draft.YieldAmount)

	require.NoError(t, f.HandleInputChange("seed_count", "12", "number"))
	assert.Equal(t, int64(12), *f.Draft.SeedCount)

	require.NoError(t, f.HandleInputChange("nickname", "Ruby", "text"))
	assert.Equal(t, "Ruby", f.Draft.Nickname)

	require.NoError(t, f.HandleInputChange("strain", "Haze", "select"))
	assert.Equal(t, "Haze", f.Draft.Strain)

	err := f.HandleInputChange("seed_count", "many", "number")
	assert.ErrorIs(t, err, types.ErrValidation)

	err = f.HandleInputChange("colour", "green", "text")
	assert.ErrorIs(t, err, types.ErrUnknownField)
}

func TestSetFieldValue(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry())

	require.NoError(t, f.SetFieldValue("batch_id", 5))
	assert.Equal(t, int64(5), *f.Draft.BatchID)
	require.NoError(t, f.SetFieldValue("batch_id", nil))
	assert.Nil(t, f.Draft.BatchID)
	require.NoError(t, f.SetFieldValue("yield_amount", 2.25))
	assert.Equal(t, 2.25, *f.Draft.YieldAmount)
	require.NoError(t, f.SetFieldValue("status", types.StatusDead))
	assert.Equal(t, types.StatusDead, f.Draft.Status)

	assert.Error(t, f.SetFieldValue("batch_id", true))
	assert.ErrorIs(t, f.SetFieldValue("nope", "x"), types.ErrUnknownField)
}

func TestSetImageFilesRejectsWholeBatch(t *testing.T) {
	reg := newFakeRegistry()
	f := newForm(&fakeTreeService{}, reg)

	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg"), jpeg("b.jpg")}))
	first := f.PreviewURLs()
	require.Len(t, first, 2)

	gif := upload.FromBytes("c.gif", "image/gif", []byte("gif"))
	err := f.SetImageFiles([]upload.File{jpeg("d.jpg"), gif})
	assert.ErrorIs(t, err, types.ErrFileType)
	assert.NotEmpty(t, f.Err())
	assert.Equal(t, first, f.PreviewURLs(), "previous list kept")
	assert.Empty(t, reg.revoked)

	big := upload.File{Name: "e.png", ContentType: "image/png", Size: upload.MaxFileSize + 1}
	assert.ErrorIs(t, f.AppendImageFiles([]upload.File{big}), types.ErrFileTooLarge)
	assert.Len(t, f.Images(), 2)

	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("f.jpg")}))
	assert.Equal(t, "", f.Err())
	assert.ElementsMatch(t, first, reg.revoked, "replaced previews revoked")
	assert.Len(t, reg.live, 1)
}

func TestAppendImageFiles(t *testing.T) {
	reg := newFakeRegistry()
	f := newForm(&fakeTreeService{}, reg)

	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg")}))
	require.NoError(t, f.AppendImageFiles([]upload.File{jpeg("b.jpg")}))

	imgs := f.Images()
	require.Len(t, imgs, 2)
	assert.Equal(t, "a.jpg", imgs[0].File.Name)
	assert.Equal(t, "b.jpg", imgs[1].File.Name)
	assert.Len(t, reg.live, 2)

	f.Close()
	assert.Empty(t, reg.live)
}

func TestPreviewFailureKeepsList(t *testing.T) {
	reg := newFakeRegistry()
	reg.failOn = "bad.jpg"
	f := newForm(&fakeTreeService{}, reg)

	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg")}))
	err := f.SetImageFiles([]upload.File{jpeg("ok.jpg"), jpeg("bad.jpg")})
	require.Error(t, err)
	assert.Len(t, f.Images(), 1)
	assert.Equal(t, "a.jpg", f.Images()[0].File.Name)
	assert.Len(t, reg.live, 1, "partial previews revoked")
}

func TestSetDocument(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry())

	pdf := upload.FromBytes("cert.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, f.SetDocument(pdf))

	err := f.SetDocument(upload.FromBytes("cert.doc", "application/msword", []byte("doc")))
	assert.ErrorIs(t, err, types.ErrFileType)
	assert.NotEmpty(t, f.Err())
	doc, ok := f.Document()
	require.True(t, ok)
	assert.Equal(t, "cert.pdf", doc.Name, "previous document kept")
}

func TestValidateOrder(t *testing.T) {
	neg := -1.0
	negSeeds := int64(-2)
	tests := []struct {
		name      string
		mutate    func(d *Draft)
		wantField string
	}{
		{name: "strain missing wins over everything", mutate: func(d *Draft) {
			d.Status, d.Sex, d.PlantDate = "", "", ""
		}, wantField: "strain"},
		{name: "unknown strain", mutate: func(d *Draft) { d.Strain = "Mango" }, wantField: "strain"},
		{name: "status", mutate: func(d *Draft) { d.Strain = "Kush"; d.Status = "" }, wantField: "status"},
		{name: "sex", mutate: func(d *Draft) { d.Strain = "Kush"; d.Sex = "" }, wantField: "sex"},
		{name: "plant date", mutate: func(d *Draft) { d.Strain = "Kush"; d.PlantDate = "" }, wantField: "plant_date"},
		{name: "negative yield", mutate: func(d *Draft) { d.Strain = "Kush"; d.YieldAmount = &neg }, wantField: "yield_amount"},
		{name: "negative seeds", mutate: func(d *Draft) { d.Strain = "Kush"; d.SeedCount = &negSeeds }, wantField: "seed_count"},
		{name: "valid", mutate: func(d *Draft) { d.Strain = "Kush" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm(&fakeTreeService{}, newFakeRegistry())
			tt.mutate(&f.Draft)
			err := f.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestValidationMessagesFollowLanguage(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry(), WithLanguage(types.LanguageThai))
	err := f.Validate()
	require.Error(t, err)
	assert.Equal(t, "กรุณาเลือกสายพันธุ์", err.Error())
}

func TestPayload(t *testing.T) {
	f := newForm(&fakeTreeService{}, newFakeRegistry())
	f.Draft.Strain = "Haze"
	f.Draft.Nickname = "Ruby"
	y := 4.5
	f.Draft.YieldAmount = &y
	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg"), jpeg("b.jpg")}))

	m := f.Payload()
	v, _ := m.Value("strain_id")
	assert.Equal(t, "7", v)
	v, _ = m.Value("yield_amount")
	assert.Equal(t, "4.5", v)
	v, ok := m.Value("seed_count")
	assert.True(t, ok)
	assert.Equal(t, "", v, "nil numbers travel as empty strings")
	v, _ = m.Value("harvest_date")
	assert.Equal(t, "", v)
	v, _ = m.Value("plant_date")
	assert.Equal(t, "2026-03-14", v)
	assert.Empty(t, m.Files("document"), "no document part without a file")
	assert.Len(t, m.Files("uploaded_images"), 2)
}

func TestSubmitValidationFailureSkipsService(t *testing.T) {
	svc := &fakeTreeService{}
	f := newForm(svc, newFakeRegistry())

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, svc.created)
	assert.Equal(t, "Please choose a strain", f.Err())
	assert.False(t, f.Submitting())
}

func TestSubmitCreateThenReset(t *testing.T) {
	svc := &fakeTreeService{returned: types.Tree{ID: 12}}
	reg := newFakeRegistry()
	var refreshed int64
	f := newForm(svc, reg, OnSuccess(func(_ context.Context, t types.Tree) error {
		refreshed = t.ID
		return nil
	}))
	f.Draft.Strain = "Kush"
	f.Draft.Nickname = "Ruby"
	require.NoError(t, f.SetImageFiles([]upload.File{jpeg("a.jpg")}))

	tree, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), tree.ID)
	require.Len(t, svc.created, 1)
	assert.Equal(t, int64(12), refreshed)
	assert.Equal(t, "", f.Draft.Nickname, "draft reset")
	assert.Empty(t, reg.live)
}

func TestSubmitUpdateFailureKeepsDraft(t *testing.T) {
	svc := &fakeTreeService{err: &api.Error{Status: 400, Message: "nickname too long"}}
	f := newForm(svc, newFakeRegistry())
	f.SetForEdit(types.Tree{ID: 5, Nickname: "Ruby", Strain: &types.Strain{ID: 3, Name: "Kush"}, PlantDate: "2025-01-01"})

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, svc.updated, int64(5))
	assert.Equal(t, "nickname too long", f.Err())
	assert.Equal(t, "Ruby", f.Draft.Nickname)
	assert.Equal(t, int64(5), f.EditingID())
}
