package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/render"
)

// Loader is the store as seen by the browser.
type Loader interface {
	Load(ctx context.Context) error
	Err() string
	Splicer
}

type loadedMsg struct{ err error }

type searchAppliedMsg struct{}

type bulkDoneMsg struct {
	res dashboard.BulkResult
	err error
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeConfirmBulk
	modeViewer
)

var (
	browserTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	browserMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	browserErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Browser is the interactive tree list.
type Browser struct {
	ctx     context.Context
	store   Loader
	dash    *dashboard.Dashboard
	images  ImageDeleter
	lang    string
	ageUnit dashboard.AgeUnit
	now     func() time.Time

	// applied receives a signal whenever a debounced search lands.
	applied chan struct{}

	mode    mode
	input   textinput.Model
	cursor  int
	loading bool
	viewer  *Viewer
}

// SearchNotifier returns a callback for dashboard.Config.OnSearch that
// wakes the browser when a debounced search is applied. Pass the same
// channel to NewBrowser.
func SearchNotifier(ch chan struct{}) func(string) {
	return func(string) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// NewBrowser wires a browser over store and dash. applied must be the
// channel given to SearchNotifier.
func NewBrowser(ctx context.Context, store Loader, dash *dashboard.Dashboard, images ImageDeleter, applied chan struct{}, lang string) *Browser {
	ti := textinput.New()
	ti.Placeholder = "strain, nickname, location or batch"
	ti.Prompt = "/ "
	return &Browser{
		ctx:     ctx,
		store:   store,
		dash:    dash,
		images:  images,
		lang:    lang,
		ageUnit: dashboard.AgeDays,
		now:     time.Now,
		applied: applied,
		input:   ti,
		loading: true,
	}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return tea.Batch(b.load(), b.waitSearch())
}

func (b *Browser) load() tea.Cmd {
	ctx, store := b.ctx, b.store
	return func() tea.Msg { return loadedMsg{err: store.Load(ctx)} }
}

func (b *Browser) waitSearch() tea.Cmd {
	if b.applied == nil {
		return nil
	}
	ch, ctx := b.applied, b.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return searchAppliedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Searching reports whether the search box has focus.
func (b *Browser) Searching() bool { return b.mode == modeSearch }

// Confirming reports whether a bulk delete awaits confirmation.
func (b *Browser) Confirming() bool { return b.mode == modeConfirmBulk }

// ViewerOpen reports whether the image viewer is showing.
func (b *Browser) ViewerOpen() bool { return b.mode == modeViewer }

// Cursor returns the highlighted row on the current page.
func (b *Browser) Cursor() int { return b.cursor }

// Loading reports whether the initial load is still running.
func (b *Browser) Loading() bool { return b.loading }

// Viewer returns the open image viewer, or nil.
func (b *Browser) Viewer() *Viewer { return b.viewer }

// SearchText returns the text typed into the search box.
func (b *Browser) SearchText() string { return b.input.Value() }

func (b *Browser) page() dashboard.Page { return b.dash.CurrentPage() }

func (b *Browser) clampCursor() {
	n := len(b.page().Trees)
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case loadedMsg:
		b.loading = false
		b.clampCursor()
		return b, nil
	case searchAppliedMsg:
		b.cursor = 0
		return b, b.waitSearch()
	case bulkDoneMsg:
		b.clampCursor()
		return b, expireToast(b.dash.Toasts().TTL())
	case ClosedMsg:
		b.mode = modeList
		b.viewer = nil
		b.clampCursor()
		return b, nil
	case treesRefreshedMsg:
		b.clampCursor()
		if b.viewer != nil {
			_, cmd := b.viewer.Update(msg)
			return b, cmd
		}
		return b, nil
	}

	if b.mode == modeViewer && b.viewer != nil {
		_, cmd := b.viewer.Update(msg)
		return b, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return b, b.handleKey(key)
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch b.mode {
	case modeSearch:
		switch key {
		case "enter", "esc":
			b.mode = modeList
			b.input.Blur()
			b.dash.SetSearchNow(b.input.Value())
			b.cursor = 0
			return nil
		}
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		b.dash.SetSearch(b.input.Value())
		return cmd

	case modeConfirmBulk:
		switch key {
		case "y", "Y":
			b.mode = modeList
			ctx, dash := b.ctx, b.dash
			return func() tea.Msg {
				res, err := dash.BulkDelete(ctx)
				return bulkDoneMsg{res: res, err: err}
			}
		case "n", "N", "esc":
			b.mode = modeList
		}
		return nil
	}

	p := b.page()
	switch key {
	case "q", "esc":
		return tea.Quit
	case "/":
		b.mode = modeSearch
		return b.input.Focus()
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(p.Trees)-1 {
			b.cursor++
		}
	case "s":
		key, _ := b.dash.Order()
		b.dash.SetOrder(nextSortKey(key), dashboard.Desc)
	case "r":
		b.dash.Sort(b.currentKey())
	case " ":
		if b.cursor < len(p.Trees) {
			b.dash.Toggle(p.Trees[b.cursor].ID)
		}
	case "a":
		ids := p.IDs()
		b.dash.SelectAll(!allSelected(b.dash, ids), ids)
	case "D":
		if len(b.dash.Selected()) > 0 {
			b.mode = modeConfirmBulk
		}
	case "n":
		b.dash.NextPage()
		b.cursor = 0
	case "p":
		b.dash.PrevPage()
		b.cursor = 0
	case "u":
		switch b.ageUnit {
		case dashboard.AgeDays:
			b.ageUnit = dashboard.AgeMonths
		case dashboard.AgeMonths:
			b.ageUnit = dashboard.AgeYears
		default:
			b.ageUnit = dashboard.AgeDays
		}
	case "R":
		b.loading = true
		return b.load()
	case "enter":
		if b.cursor < len(p.Trees) {
			b.viewer = NewViewer(b.ctx, p.Trees[b.cursor], b.images, b.store, 0,
				Embedded(), WithToasts(b.dash.Toasts()), WithNow(b.now))
			b.mode = modeViewer
		}
	}
	return nil
}

func (b *Browser) currentKey() dashboard.SortKey {
	key, _ := b.dash.Order()
	return key
}

func nextSortKey(k dashboard.SortKey) dashboard.SortKey {
	for i, key := range dashboard.SortKeys {
		if key == k {
			return dashboard.SortKeys[(i+1)%len(dashboard.SortKeys)]
		}
	}
	return dashboard.SortID
}

func allSelected(d *dashboard.Dashboard, ids []int64) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !d.IsSelected(id) {
			return false
		}
	}
	return true
}

// View implements tea.Model.
func (b *Browser) View() string {
	if b.mode == modeViewer && b.viewer != nil {
		return b.viewer.View()
	}

	var s strings.Builder
	s.WriteString(browserTitle.Render("mytree"))
	key, dir := b.dash.Order()
	p := b.page()
	s.WriteString(browserMuted.Render(fmt.Sprintf("  %d trees · sort %s %s · page %d/%d · %d selected",
		p.Total, key, dir, p.Number, p.Count, len(b.dash.Selected()))))
	s.WriteString("\n")

	if b.mode == modeSearch {
		s.WriteString(b.input.View())
		s.WriteString("\n")
	} else if _, applied := b.dash.Search(); applied != "" {
		s.WriteString(browserMuted.Render("search: " + applied))
		s.WriteString("\n")
	}

	switch {
	case b.loading:
		s.WriteString(browserMuted.Render("Loading…"))
	case b.store.Err() != "":
		s.WriteString(browserErr.Render(b.store.Err()))
	case len(p.Trees) == 0:
		s.WriteString(browserMuted.Render("No trees."))
	default:
		s.WriteString(render.TreeTable(p.Trees, render.TreeTableOptions{
			Language: b.lang,
			AgeUnit:  b.ageUnit,
			Now:      b.now(),
			Selected: b.dash.IsSelected,
			Cursor:   b.cursor,
		}))
	}
	s.WriteString("\n")

	if b.mode == modeConfirmBulk {
		s.WriteString(warnStyle.Render(fmt.Sprintf("Delete %d selected trees? (y/n)", len(b.dash.Selected()))))
		s.WriteString("\n")
	}
	if t, ok := b.dash.Toasts().Latest(); ok {
		s.WriteString(render.Toast(t))
		s.WriteString("\n")
	}
	s.WriteString(browserMuted.Render("/ search · s sort · r reverse · space select · a all · D delete · n/p page · u age · enter images · q quit"))
	return s.String()
}
