// Package form holds draft state for the tree, strain, batch and log
// editors, validates it and turns it into service payloads.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// Draft is the editable shape of a tree. Relationships are flattened to
// selectors: Strain holds a strain name, BatchID and the lineage fields
// hold ids. Nil numbers mean "not set".
type Draft struct {
	Strain     string
	BatchID    *int64
	Variety    string
	Nickname   string
	Generation string
	Location   string
	Status     string
	Sex        string

	PlantDate       string
	GerminationDate string
	GrowthStage     string
	HarvestDate     string

	Phenotype    string
	Genotype     string
	DiseaseNotes string
	Notes        string

	ParentMale      *int64
	ParentFemale    *int64
	CloneSource     *int64
	PollinatedBy    *int64
	PollinationDate string

	YieldAmount     *float64
	FlowerQuality   string
	SeedCount       *int64
	SeedHarvestDate string
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindDate
	kindInt
	kindDecimal
)

// field binds a wire name to a Draft member.
type field struct {
	name string
	kind fieldKind
	text func(d *Draft) *string
	num  func(d *Draft) **int64
	dec  func(d *Draft) **float64
}

// fields lists the draft members in payload order. The strain selector is
// handled separately because it is sent as strain_id.
var fields = []field{
	{name: "batch_id", kind: kindInt, num: func(d *Draft) **int64 { return &d.BatchID }},
	{name: "variety", kind: kindText, text: func(d *Draft) *string { return &d.Variety }},
	{name: "nickname", kind: kindText, text: func(d *Draft) *string { return &d.Nickname }},
	{name: "generation", kind: kindText, text: func(d *Draft) *string { return &d.Generation }},
	{name: "location", kind: kindText, text: func(d *Draft) *string { return &d.Location }},
	{name: "status", kind: kindText, text: func(d *Draft) *string { return &d.Status }},
	{name: "sex", kind: kindText, text: func(d *Draft) *string { return &d.Sex }},
	{name: "plant_date", kind: kindDate, text: func(d *Draft) *string { return &d.PlantDate }},
	{name: "germination_date", kind: kindDate, text: func(d *Draft) *string { return &d.GerminationDate }},
	{name: "growth_stage", kind: kindText, text: func(d *Draft) *string { return &d.GrowthStage }},
	{name: "harvest_date", kind: kindDate, text: func(d *Draft) *string { return &d.HarvestDate }},
	{name: "phenotype", kind: kindText, text: func(d *Draft) *string { return &d.Phenotype }},
	{name: "genotype", kind: kindText, text: func(d *Draft) *string { return &d.Genotype }},
	{name: "disease_notes", kind: kindText, text: func(d *Draft) *string { return &d.DiseaseNotes }},
	{name: "notes", kind: kindText, text: func(d *Draft) *string { return &d.Notes }},
	{name: "parent_male", kind: kindInt, num: func(d *Draft) **int64 { return &d.ParentMale }},
	{name: "parent_female", kind: kindInt, num: func(d *Draft) **int64 { return &d.ParentFemale }},
	{name: "clone_source", kind: kindInt, num: func(d *Draft) **int64 { return &d.CloneSource }},
	{name: "pollinated_by", kind: kindInt, num: func(d *Draft) **int64 { return &d.PollinatedBy }},
	{name: "pollination_date", kind: kindDate, text: func(d *Draft) *string { return &d.PollinationDate }},
	{name: "yield_amount", kind: kindDecimal, dec: func(d *Draft) **float64 { return &d.YieldAmount }},
	{name: "flower_quality", kind: kindText, text: func(d *Draft) *string { return &d.FlowerQuality }},
	{name: "seed_count", kind: kindInt, num: func(d *Draft) **int64 { return &d.SeedCount }},
	{name: "seed_harvest_date", kind: kindDate, text: func(d *Draft) *string { return &d.SeedHarvestDate }},
}

// strainField is the wire-side name of the strain selector.
const strainField = "strain"

var fieldsByName = func() map[string]field {
	m := make(map[string]field, len(fields))
	for _, f := range fields {
		m[f.name] = f
	}
	return m
}()

// FieldNames lists every settable field, strain first.
func FieldNames() []string {
	names := make([]string, 0, len(fields)+1)
	names = append(names, strainField)
	for _, f := range fields {
		names = append(names, f.name)
	}
	return names
}

// IsNumeric reports whether name is a numeric draft field.
func IsNumeric(name string) bool {
	f, ok := fieldsByName[name]
	return ok && (f.kind == kindInt || f.kind == kindDecimal)
}

func lookup(name string) (field, error) {
	if name == strainField {
		return field{name: strainField, kind: kindText, text: func(d *Draft) *string { return &d.Strain }}, nil
	}
	f, ok := fieldsByName[name]
	if !ok {
		return field{}, fmt.Errorf("%w: %q", types.ErrUnknownField, name)
	}
	return f, nil
}

func parseInt(name, value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, &types.ValidationError{Field: name, Message: fmt.Sprintf("%s must be a whole number, got %q", name, value)}
	}
	return &n, nil
}

func parseDecimal(name, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, &types.ValidationError{Field: name, Message: fmt.Sprintf("%s must be a number, got %q", name, value)}
	}
	return &f, nil
}

// setString stores a raw string into the named field, parsing numeric
// fields. An empty string clears a numeric field.
func (d *Draft) setString(name, value string) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	switch f.kind {
	case kindInt:
		n, err := parseInt(name, value)
		if err != nil {
			return err
		}
		*f.num(d) = n
	case kindDecimal:
		v, err := parseDecimal(name, value)
		if err != nil {
			return err
		}
		*f.dec(d) = v
	default:
		*f.text(d) = value
	}
	return nil
}

// set stores a typed value. Accepted values are strings, integers, floats,
// their pointers and nil.
func (d *Draft) set(name string, value any) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok {
		return d.setString(name, s)
	}

	switch f.kind {
	case kindInt:
		switch v := value.(type) {
		case nil:
			*f.num(d) = nil
		case int:
			n := int64(v)
			*f.num(d) = &n
		case int64:
			*f.num(d) = &v
		case *int64:
			*f.num(d) = clonePtr(v)
		default:
			return fmt.Errorf("%s: cannot set %T on an integer field", name, value)
		}
	case kindDecimal:
		switch v := value.(type) {
		case nil:
			*f.dec(d) = nil
		case int:
			x := float64(v)
			*f.dec(d) = &x
		case float64:
			*f.dec(d) = &v
		case *float64:
			*f.dec(d) = clonePtr(v)
		default:
			return fmt.Errorf("%s: cannot set %T on a decimal field", name, value)
		}
	default:
		switch v := value.(type) {
		case nil:
			*f.text(d) = ""
		case fmt.Stringer:
			*f.text(d) = v.String()
		default:
			return fmt.Errorf("%s: cannot set %T on a text field", name, value)
		}
	}
	return nil
}

// Value returns the named field formatted as it travels on the wire: nil
// numbers and empty dates become "".
func (d *Draft) Value(name string) (string, error) {
	f, err := lookup(name)
	if err != nil {
		return "", err
	}
	switch f.kind {
	case kindInt:
		if p := *f.num(d); p != nil {
			return strconv.FormatInt(*p, 10), nil
		}
		return "", nil
	case kindDecimal:
		if p := *f.dec(d); p != nil {
			return strconv.FormatFloat(*p, 'f', -1, 64), nil
		}
		return "", nil
	default:
		return *f.text(d), nil
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// draftFromTree copies the editable parts of t. Missing status and sex fall
// back to the defaults.
func draftFromTree(t types.Tree) Draft {
	d := Draft{
		Strain:          t.StrainName(),
		Variety:         t.Variety,
		Nickname:        t.Nickname,
		Generation:      t.Generation,
		Location:        t.Location,
		Status:          t.Status,
		Sex:             t.Sex,
		PlantDate:       t.PlantDate,
		GerminationDate: t.GerminationDate,
		GrowthStage:     t.GrowthStage,
		HarvestDate:     t.HarvestDate,
		Phenotype:       t.Phenotype,
		Genotype:        t.Genotype,
		DiseaseNotes:    t.DiseaseNotes,
		Notes:           t.Notes,
		ParentMale:      clonePtr(t.ParentMale),
		ParentFemale:    clonePtr(t.ParentFemale),
		CloneSource:     clonePtr(t.CloneSource),
		PollinatedBy:    clonePtr(t.PollinatedBy),
		PollinationDate: t.PollinationDate,
		FlowerQuality:   t.FlowerQuality,
		SeedCount:       clonePtr(t.SeedCount),
		SeedHarvestDate: t.SeedHarvestDate,
	}
	if t.Batch != nil {
		id := t.Batch.ID
		d.BatchID = &id
	}
	if t.YieldAmount != nil {
		y := float64(*t.YieldAmount)
		d.YieldAmount = &y
	}
	if d.Status == "" {
		d.Status = types.StatusAlive
	}
	if d.Sex == "" {
		d.Sex = types.SexUnknown
	}
	return d
}
