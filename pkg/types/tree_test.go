package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Decimal
		wantErr bool
	}{
		{name: "number", input: `{"yield_amount": 12.5}`, want: decPtr(12.5)},
		{name: "quoted decimal", input: `{"yield_amount": "40.00"}`, want: decPtr(40)},
		{name: "null", input: `{"yield_amount": null}`, want: nil},
		{name: "empty string", input: `{"yield_amount": ""}`, want: decPtr(0)},
		{name: "garbage", input: `{"yield_amount": "abc"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			err := json.Unmarshal([]byte(tt.input), &tree)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tree.YieldAmount)
		})
	}
}

func TestDecimalString(t *testing.T) {
	assert.Equal(t, "12.5", Decimal(12.5).String())
	assert.Equal(t, "40", Decimal(40).String())
}

func TestTreeCloneIsIndependent(t *testing.T) {
	parent := int64(3)
	orig := Tree{
		ID:         1,
		Strain:     &Strain{ID: 7, Name: "Kush"},
		ParentMale: &parent,
		Images:     []Image{{ID: 1}, {ID: 2}},
	}

	c := orig.Clone()
	c.Strain.Name = "Haze"
	*c.ParentMale = 99
	c.Images[0].ID = 100

	assert.Equal(t, "Kush", orig.Strain.Name)
	assert.Equal(t, int64(3), *orig.ParentMale)
	assert.Equal(t, int64(1), orig.Images[0].ID)
}

func TestTreeCoverImage(t *testing.T) {
	var empty Tree
	_, ok := empty.CoverImage()
	assert.False(t, ok)

	tree := Tree{Images: []Image{{ID: 1}, {ID: 2, IsCover: true}}}
	img, ok := tree.CoverImage()
	require.True(t, ok)
	assert.Equal(t, int64(2), img.ID)

	tree.Images[1].IsCover = false
	img, _ = tree.CoverImage()
	assert.Equal(t, int64(1), img.ID)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, IsActive(StatusAlive))
	assert.True(t, IsActive(StatusGrowing))
	assert.False(t, IsActive(StatusDead))

	assert.True(t, IsHarvested(StatusHarvested))
	assert.True(t, IsHarvested("Dry room"))
	assert.False(t, IsHarvested(StatusAlive))

	assert.True(t, IsFlowering("Flowering"))
	assert.True(t, IsVegetative("veg"))
	assert.True(t, IsVegetative(StageSeedling))
	assert.False(t, IsVegetative(StageFlowering))
}

func TestDuplicateStrainName(t *testing.T) {
	strains := []Strain{{ID: 1, Name: "Kush"}, {ID: 2, Name: " Haze "}}

	tests := []struct {
		name      string
		input     string
		excludeID int64
		want      bool
	}{
		{name: "exact duplicate", input: "Kush", want: true},
		{name: "trimmed duplicate", input: "  Haze", want: true},
		{name: "case sensitive", input: "kush", want: false},
		{name: "editing same record", input: "Kush", excludeID: 1, want: false},
		{name: "empty never duplicate", input: "   ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DuplicateStrainName(strains, tt.input, tt.excludeID))
		})
	}
}

func TestDuplicateBatchCode(t *testing.T) {
	batches := []Batch{{ID: 4, BatchCode: "B-01"}}
	assert.True(t, DuplicateBatchCode(batches, "B-01 ", 0))
	assert.False(t, DuplicateBatchCode(batches, "B-01", 4))
	assert.False(t, DuplicateBatchCode(batches, "B-02", 0))
}

func TestValidationErrorIs(t *testing.T) {
	var err error = &ValidationError{Field: "sex", Message: "select a sex"}
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "select a sex", err.Error())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Female", SexLabel(SexFemale, LanguageEnglish))
	assert.Equal(t, "ตัวผู้", SexLabel(SexMale, LanguageThai))
	assert.Equal(t, "-", SexLabel("alien", LanguageEnglish))
	assert.Equal(t, "Dead", StatusLabel(StatusDead, LanguageEnglish))
	assert.Equal(t, StatusDead, StatusLabel(StatusDead, LanguageThai))
	assert.Equal(t, "-", StatusLabel("", LanguageThai))
	assert.Equal(t, "Water", ActionLabel(ActionWater, LanguageEnglish))
	assert.Equal(t, "custom", ActionLabel("custom", LanguageEnglish))
	assert.True(t, ValidAction(ActionEnvironment))
	assert.False(t, ValidAction("dance"))
	assert.Equal(t, StatusAlive, ParseStatus("alive"))
	assert.Equal(t, StatusMoved, ParseStatus("Moved"))
	assert.Equal(t, StatusDead, ParseStatus(StatusDead))
	assert.Equal(t, "Flowering", ParseStatus("Flowering"))
}

func decPtr(f float64) *Decimal {
	d := Decimal(f)
	return &d
}
