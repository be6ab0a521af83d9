// Package render formats trees, catalogs, logs and statistics for the
// terminal.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/notify"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("36")).Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
)

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// TreeTableOptions tunes TreeTable.
type TreeTableOptions struct {
	Language string
	AgeUnit  dashboard.AgeUnit
	Now      time.Time
	// Selected marks rows; nil hides the selection column.
	Selected func(id int64) bool
	// Cursor highlights the row with this index; -1 disables it.
	Cursor int
}

// TreeTable renders one row per tree.
func TreeTable(trees []types.Tree, opts TreeTableOptions) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.AgeUnit == "" {
		opts.AgeUnit = dashboard.AgeDays
	}
	headers := []string{"ID", "Nickname", "Strain", "Batch", "Status", "Sex", "Planted", "Age (" + string(opts.AgeUnit) + ")", "Images"}
	if opts.Selected != nil {
		headers = append([]string{" "}, headers...)
	}
	t := newTable(headers...)
	for _, tr := range trees {
		row := []string{
			strconv.FormatInt(tr.ID, 10),
			dash(tr.Nickname),
			dash(tr.StrainName()),
			dash(tr.BatchCode()),
			types.StatusLabel(tr.Status, opts.Language),
			types.SexLabel(tr.Sex, opts.Language),
			dash(tr.PlantDate),
			dashboard.Age(tr, opts.AgeUnit, opts.Now),
			strconv.Itoa(len(tr.Images)),
		}
		if opts.Selected != nil {
			mark := "[ ]"
			if opts.Selected(tr.ID) {
				mark = "[x]"
			}
			row = append([]string{mark}, row...)
		}
		t.Row(row...)
	}
	if opts.Cursor >= 0 && opts.Cursor < len(trees) {
		cursor := opts.Cursor
		t.StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case cursor:
				return cursorStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	return t.Render()
}

// StrainTable renders the strain catalog.
func StrainTable(strains []types.Strain) string {
	t := newTable("ID", "Name", "Description")
	for _, s := range strains {
		t.Row(strconv.FormatInt(s.ID, 10), s.Name, dash(s.Description))
	}
	return t.Render()
}

// BatchTable renders the batches.
func BatchTable(batches []types.Batch) string {
	t := newTable("ID", "Code", "Started", "Description")
	for _, b := range batches {
		t.Row(strconv.FormatInt(b.ID, 10), b.BatchCode, dash(b.StartedDate), dash(b.Description))
	}
	return t.Render()
}

func optInt(p *int64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatInt(*p, 10)
}

func parentLabel(id *int64, ref *types.TreeParentRef) string {
	if ref != nil && ref.Nickname != "" {
		return fmt.Sprintf("#%d %s", ref.ID, ref.Nickname)
	}
	if id == nil {
		return "-"
	}
	return "#" + strconv.FormatInt(*id, 10)
}

// TreeCard renders every field of one tree.
func TreeCard(t types.Tree, lang string, now time.Time) string {
	yield := "-"
	if t.YieldAmount != nil {
		yield = t.YieldAmount.String() + " g"
	}
	doc := "-"
	if t.Document != nil && *t.Document != "" {
		doc = *t.Document
	}
	rows := [][2]string{
		{"Strain", dash(t.StrainName())},
		{"Batch", dash(t.BatchCode())},
		{"Variety", dash(t.Variety)},
		{"Generation", dash(t.Generation)},
		{"Location", dash(t.Location)},
		{"Status", types.StatusLabel(t.Status, lang)},
		{"Sex", types.SexLabel(t.Sex, lang)},
		{"Growth stage", dash(t.GrowthStage)},
		{"Germinated", dash(t.GerminationDate)},
		{"Planted", dash(t.PlantDate)},
		{"Age (days)", dashboard.Age(t, dashboard.AgeDays, now)},
		{"Harvested", dash(t.HarvestDate)},
		{"Genotype", dash(t.Genotype)},
		{"Phenotype", dash(t.Phenotype)},
		{"Male parent", parentLabel(t.ParentMale, t.ParentMaleData)},
		{"Female parent", parentLabel(t.ParentFemale, t.ParentFemaleData)},
		{"Clone source", optInt(t.CloneSource)},
		{"Pollinated by", optInt(t.PollinatedBy)},
		{"Pollinated on", dash(t.PollinationDate)},
		{"Yield", yield},
		{"Flower quality", dash(t.FlowerQuality)},
		{"Seeds", optInt(t.SeedCount)},
		{"Seeds harvested", dash(t.SeedHarvestDate)},
		{"Disease notes", dash(t.DiseaseNotes)},
		{"Notes", dash(t.Notes)},
		{"Document", doc},
		{"Images", strconv.Itoa(len(t.Images))},
	}
	var b strings.Builder
	name := t.Nickname
	if name == "" {
		name = "(no nickname)"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", t.ID, name)))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	return cardStyle.Render(b.String())
}

var actionIcons = map[string]string{
	types.ActionWater:       "💧",
	types.ActionFeed:        "🍼",
	types.ActionFlush:       "🚿",
	types.ActionPrune:       "✂",
	types.ActionTrain:       "➰",
	types.ActionFlip:        "⚡",
	types.ActionHarvest:     "✂️",
	types.ActionDry:         "🍂",
	types.ActionCure:        "🏺",
	types.ActionPhoto:       "📷",
	types.ActionIssue:       "🐛",
	types.ActionEnvironment: "🌡️",
	types.ActionNote:        "✎",
	types.ActionOther:       "📌",
}

// ActionIcon returns the marker for an action type.
func ActionIcon(action string) string {
	if icon, ok := actionIcons[action]; ok {
		return icon
	}
	return actionIcons[types.ActionOther]
}

// Timeline renders logs grouped by action date, newest first.
func Timeline(logs []types.TreeLog, lang string, now time.Time) string {
	if len(logs) == 0 {
		return mutedStyle.Render("No log entries.")
	}
	sorted := append([]types.TreeLog(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ActionDate != sorted[j].ActionDate {
			return sorted[i].ActionDate > sorted[j].ActionDate
		}
		return sorted[i].ID > sorted[j].ID
	})

	var b strings.Builder
	current := "\x00"
	for _, l := range sorted {
		if l.ActionDate != current {
			current = l.ActionDate
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			heading := dash(current)
			if d, ok := dashboard.ParseDate(current); ok {
				heading += " " + mutedStyle.Render("("+humanize.RelTime(d, now, "ago", "from now")+")")
			}
			b.WriteString(headerStyle.Render(heading))
			b.WriteString("\n")
		}
		line := fmt.Sprintf("  %s %s", ActionIcon(l.ActionType), types.ActionLabel(l.ActionType, lang))
		if l.Title != "" {
			line += ": " + l.Title
		}
		line += mutedStyle.Render(fmt.Sprintf("  [#%d]", l.ID))
		b.WriteString(line)
		b.WriteString("\n")
		if readings := logReadings(l); readings != "" {
			b.WriteString("    " + mutedStyle.Render(readings) + "\n")
		}
		if l.Notes != "" {
			for _, n := range strings.Split(l.Notes, "\n") {
				b.WriteString("    " + n + "\n")
			}
		}
		if len(l.Images) > 0 {
			b.WriteString("    " + mutedStyle.Render(humanize.Comma(int64(len(l.Images)))+" image(s)") + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func logReadings(l types.TreeLog) string {
	var parts []string
	add := func(label string, v *types.Decimal, unit string) {
		if v != nil {
			parts = append(parts, label+" "+v.String()+unit)
		}
	}
	add("pH", l.PH, "")
	add("EC", l.EC, "")
	add("temp", l.Temp, "°C")
	add("RH", l.Humidity, "%")
	add("wet", l.WetWeight, " g")
	add("dry", l.DryWeight, " g")
	add("trim", l.TrimWeight, " g")
	return strings.Join(parts, " · ")
}

// StatsBlock renders the headline counts and yield summary.
func StatsBlock(s dashboard.Stats, y dashboard.YieldStats) string {
	counts := newTable("Total", "Active", "Vegetative", "Flowering", "Harvested")
	counts.Row(strconv.Itoa(s.Total), strconv.Itoa(s.Active), strconv.Itoa(s.Vegetative),
		strconv.Itoa(s.Flowering), strconv.Itoa(s.Harvested))

	yields := newTable("Finished", "Total yield", "Avg / plant", "Best strain")
	yields.Row(strconv.Itoa(y.HarvestedCount),
		humanize.FormatFloat("#,###.##", y.TotalYield)+" g",
		strconv.FormatFloat(y.AverageYield, 'f', 1, 64)+" g",
		y.BestStrain)

	return lipgloss.JoinVertical(lipgloss.Left, counts.Render(), yields.Render())
}

// Toast renders a status message.
func Toast(t notify.Toast) string {
	if t.Kind == notify.Error {
		return errorStyle.Render("✗ " + t.Text)
	}
	return successStyle.Render("✓ " + t.Text)
}

var (
	certStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("42")).Padding(1, 3)
	certTitle = lipgloss.NewStyle().Bold(true)
)

// HarvestDate returns the action date of the first harvest entry in logs,
// or "" when the tree has none.
func HarvestDate(logs []types.TreeLog) string {
	for _, l := range logs {
		if l.ActionType == types.ActionHarvest {
			return l.ActionDate
		}
	}
	return ""
}

// CertificateName is the name printed on a certificate: the nickname, or
// the strain name when the tree has none.
func CertificateName(t types.Tree) string {
	if t.Nickname != "" {
		return t.Nickname
	}
	return t.StrainName()
}

// CertificateImage is the first image's thumbnail, falling back to the full
// image, or "" when the tree has no images.
func CertificateImage(t types.Tree) string {
	if len(t.Images) == 0 {
		return ""
	}
	if t.Images[0].Thumbnail != "" {
		return t.Images[0].Thumbnail
	}
	return t.Images[0].Image
}

// Certificate renders the certificate of origin for t and its journal.
func Certificate(t types.Tree, logs []types.TreeLog) string {
	image := CertificateImage(t)
	if image == "" {
		image = "No Image"
	}
	rows := [][2]string{
		{"Strain Name", dash(CertificateName(t))},
		{"Batch ID", dash(t.BatchCode())},
		{"Planted", dash(t.PlantDate)},
		{"Harvest Date", dash(HarvestDate(logs))},
		{"Quality", "Premium Organic"},
		{"Image", image},
	}
	var b strings.Builder
	b.WriteString(certTitle.Render("CERTIFICATE OF ORIGIN"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Mytree Journal Verified"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("ID: %d", t.ID)))
	return certStyle.Render(b.String())
}
