// Package snapshot flattens the loaded collections into the tabular layout
// shared by the SQLite, JSONL and spreadsheet exports.
package snapshot

import (
	"sort"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// Table names, in insertion order.
const (
	TableStrains    = "strains"
	TableBatches    = "batches"
	TableImages     = "images"
	TableTrees      = "trees"
	TableTreeImages = "tree_images"
)

// Snapshot is one consistent copy of the backend's collections.
type Snapshot struct {
	Strains []types.Strain
	Batches []types.Batch
	Trees   []types.Tree
}

// Table is one flattened collection. Rows hold int64, float64, string or
// nil values in Columns order.
type Table struct {
	Name    string
	Sheet   string
	Columns []string
	Rows    [][]any
}

// File returns the JSONL file name for the table.
func (t Table) File() string { return t.Name + ".jsonl" }

// Layout describes a table without rows.
type Layout struct {
	Name    string
	Sheet   string
	Columns []string
}

// Layouts lists every table in dependency order.
var Layouts = []Layout{
	{TableStrains, "Strains", []string{"id", "name", "description"}},
	{TableBatches, "Batches", []string{"id", "batch_code", "description", "started_date"}},
	{TableImages, "Images", []string{"id", "image", "thumbnail", "uploaded_at"}},
	{TableTrees, "Trees", []string{
		"id", "nickname", "strain_id", "variety", "generation", "batch_id",
		"location", "status", "created_at", "updated_at", "germination_date",
		"plant_date", "growth_stage", "harvest_date", "sex", "genotype",
		"phenotype", "parent_male_id", "parent_female_id", "clone_source_id",
		"pollination_date", "pollinated_by_id", "yield_amount", "flower_quality",
		"seed_count", "seed_harvest_date", "disease_notes", "document", "notes",
	}},
	{TableTreeImages, "TreeImages", []string{"tree_id", "image_id"}},
}

// LayoutOf returns the layout named name.
func LayoutOf(name string) (Layout, bool) {
	for _, l := range Layouts {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}

// Counts returns the number of rows per table.
func (s Snapshot) Counts() map[string]int {
	out := make(map[string]int, len(Layouts))
	for _, t := range s.Tables() {
		out[t.Name] = len(t.Rows)
	}
	return out
}

// Tables flattens the snapshot. Images shared by several trees appear once
// in the images table and once per tree in tree_images.
func (s Snapshot) Tables() []Table {
	tables := make([]Table, len(Layouts))
	for i, l := range Layouts {
		tables[i] = Table{Name: l.Name, Sheet: l.Sheet, Columns: l.Columns}
	}

	for _, st := range s.Strains {
		tables[0].Rows = append(tables[0].Rows, []any{st.ID, st.Name, st.Description})
	}
	for _, b := range s.Batches {
		tables[1].Rows = append(tables[1].Rows, []any{b.ID, b.BatchCode, b.Description, b.StartedDate})
	}

	images := make(map[int64]types.Image)
	for _, t := range s.Trees {
		tables[3].Rows = append(tables[3].Rows, treeRow(t))
		for _, img := range t.Images {
			images[img.ID] = img
			tables[4].Rows = append(tables[4].Rows, []any{t.ID, img.ID})
		}
	}
	ids := make([]int64, 0, len(images))
	for id := range images {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		img := images[id]
		tables[2].Rows = append(tables[2].Rows, []any{img.ID, img.Image, img.Thumbnail, img.UploadedAt})
	}
	return tables
}

func treeRow(t types.Tree) []any {
	var strainID, batchID any
	if t.Strain != nil {
		strainID = t.Strain.ID
	}
	if t.Batch != nil {
		batchID = t.Batch.ID
	}
	var yield any
	if t.YieldAmount != nil {
		yield = float64(*t.YieldAmount)
	}
	var doc any
	if t.Document != nil {
		doc = *t.Document
	}
	return []any{
		t.ID, t.Nickname, strainID, t.Variety, t.Generation, batchID,
		t.Location, t.Status, t.CreatedAt, t.UpdatedAt, t.GerminationDate,
		t.PlantDate, t.GrowthStage, t.HarvestDate, t.Sex, t.Genotype,
		t.Phenotype, opt(t.ParentMale), opt(t.ParentFemale), opt(t.CloneSource),
		t.PollinationDate, opt(t.PollinatedBy), yield, t.FlowerQuality,
		opt(t.SeedCount), t.SeedHarvestDate, t.DiseaseNotes, doc, t.Notes,
	}
}

func opt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
