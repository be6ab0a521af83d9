package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tree statuses are stored by the backend as display strings.
const (
	StatusAlive = "มีชีวิต"
	StatusDead  = "ตายแล้ว"
	StatusMoved = "ถูกย้าย"
	StatusOther = "อื่นๆ"

	// Legacy statuses still present in older records.
	StatusGrowing   = "กำลังปลูก"
	StatusHarvested = "เก็บเกี่ยว"
	StatusDry       = "Dry"
	StatusCure      = "Cure"
)

// StatusOptions lists the statuses offered when creating or editing a tree.
var StatusOptions = []string{StatusAlive, StatusDead, StatusMoved, StatusOther}

// Plant sex values.
const (
	SexBisexual   = "bisexual"
	SexMale       = "male"
	SexFemale     = "female"
	SexMonoecious = "monoecious"
	SexMixed      = "mixed"
	SexUnknown    = "unknown"
)

// SexOptions lists the recognized sex values in display order.
var SexOptions = []string{SexBisexual, SexMale, SexFemale, SexMonoecious, SexMixed, SexUnknown}

var validSexes = map[string]bool{
	SexBisexual:   true,
	SexMale:       true,
	SexFemale:     true,
	SexMonoecious: true,
	SexMixed:      true,
	SexUnknown:    true,
}

// ValidSex reports whether s is one of the recognized sex values.
func ValidSex(s string) bool {
	return validSexes[s]
}

// Growth stages used by the dashboard statistics.
const (
	StageSeedling   = "Seedling"
	StageVegetative = "Vegetative"
	StageFlowering  = "Flowering"
	StageHarvested  = "Harvested"
	StageCuring     = "Curing"
	StageDried      = "Dried"
)

// IsActive reports whether the status describes a living, growing tree.
func IsActive(status string) bool {
	return status == StatusGrowing || status == StatusAlive
}

// IsHarvested reports whether the status describes a harvested tree,
// including the drying and curing stages.
func IsHarvested(status string) bool {
	return strings.Contains(status, StatusHarvested) ||
		strings.Contains(status, StatusDry) ||
		strings.Contains(status, StatusCure)
}

// IsFlowering reports whether the growth stage is a flowering stage.
func IsFlowering(stage string) bool {
	return strings.Contains(strings.ToLower(stage), "flower")
}

// IsVegetative reports whether the growth stage is vegetative or seedling.
func IsVegetative(stage string) bool {
	s := strings.ToLower(stage)
	return strings.Contains(s, "veg") || strings.Contains(s, "seedling")
}

// Decimal is a nullable-friendly decimal quantity. The backend serializes
// decimal fields either as JSON numbers or as quoted strings.
type Decimal float64

// UnmarshalJSON accepts 12.5, "12.50" and "".
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing decimal %q: %w", s, err)
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

// String formats the decimal without trailing zeros.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// Image is a stored photo attached to a tree or a log entry.
type Image struct {
	ID         int64  `json:"id"`
	Image      string `json:"image"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	UploadedAt string `json:"uploaded_at"`
	IsCover    bool   `json:"is_cover,omitempty"`
}

// TreeParentRef is the expanded form of a lineage reference.
type TreeParentRef struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

// Tree is a single cultivation record.
type Tree struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code,omitempty"`
	Nickname string  `json:"nickname"`
	Strain   *Strain `json:"strain"`
	Variety  string  `json:"variety"`
	Batch    *Batch  `json:"batch"`
	Location string  `json:"location"`
	Status   string  `json:"status"`
	Sex      string  `json:"sex"`

	GerminationDate string `json:"germination_date"`
	PlantDate       string `json:"plant_date"`
	GrowthStage     string `json:"growth_stage"`
	HarvestDate     string `json:"harvest_date"`

	Genotype     string `json:"genotype"`
	Phenotype    string `json:"phenotype"`
	Generation   string `json:"generation,omitempty"`
	DiseaseNotes string `json:"disease_notes"`
	Notes        string `json:"notes"`

	ParentMale       *int64         `json:"parent_male"`
	ParentFemale     *int64         `json:"parent_female"`
	ParentMaleData   *TreeParentRef `json:"parent_male_data,omitempty"`
	ParentFemaleData *TreeParentRef `json:"parent_female_data,omitempty"`
	CloneSource      *int64         `json:"clone_source"`

	PollinationDate string `json:"pollination_date"`
	PollinatedBy    *int64 `json:"pollinated_by"`
	SeedCount       *int64 `json:"seed_count"`
	SeedHarvestDate string `json:"seed_harvest_date"`

	YieldAmount   *Decimal `json:"yield_amount"`
	FlowerQuality string   `json:"flower_quality"`

	Document  *string  `json:"document"`
	Images    []Image  `json:"images"`
	LatestLog *TreeLog `json:"latest_log,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StrainName returns the embedded strain's name or "".
func (t *Tree) StrainName() string {
	if t.Strain == nil {
		return ""
	}
	return t.Strain.Name
}

// BatchCode returns the embedded batch's code or "".
func (t *Tree) BatchCode() string {
	if t.Batch == nil {
		return ""
	}
	return t.Batch.BatchCode
}

// CoverImage returns the image flagged as cover, else the first image.
// The second result is false when the tree has no images.
func (t *Tree) CoverImage() (Image, bool) {
	if len(t.Images) == 0 {
		return Image{}, false
	}
	for _, img := range t.Images {
		if img.IsCover {
			return img, true
		}
	}
	return t.Images[0], true
}

// Clone returns a deep copy of the tree, so callers can read it without
// sharing slices or pointers with the owner.
func (t Tree) Clone() Tree {
	c := t
	if t.Strain != nil {
		s := *t.Strain
		c.Strain = &s
	}
	if t.Batch != nil {
		b := *t.Batch
		c.Batch = &b
	}
	c.ParentMale = cloneInt(t.ParentMale)
	c.ParentFemale = cloneInt(t.ParentFemale)
	c.CloneSource = cloneInt(t.CloneSource)
	c.PollinatedBy = cloneInt(t.PollinatedBy)
	c.SeedCount = cloneInt(t.SeedCount)
	if t.YieldAmount != nil {
		y := *t.YieldAmount
		c.YieldAmount = &y
	}
	if t.Document != nil {
		d := *t.Document
		c.Document = &d
	}
	if t.ParentMaleData != nil {
		p := *t.ParentMaleData
		c.ParentMaleData = &p
	}
	if t.ParentFemaleData != nil {
		p := *t.ParentFemaleData
		c.ParentFemaleData = &p
	}
	if t.Images != nil {
		c.Images = append([]Image(nil), t.Images...)
	}
	if t.LatestLog != nil {
		l := t.LatestLog.Clone()
		c.LatestLog = &l
	}
	return c
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
