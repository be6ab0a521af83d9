package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mesh-intelligence/mytree/internal/debounce"
	"github.com/mesh-intelligence/mytree/internal/notify"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// DefaultPageSize is the number of trees per page.
const DefaultPageSize = 20

// Source is the owner of the tree list.
type Source interface {
	Trees() []types.Tree
	RefreshTrees(ctx context.Context) error
}

// Deleter removes trees on the backend.
type Deleter interface {
	DeleteTree(ctx context.Context, id int64) error
	BulkDeleteTrees(ctx context.Context, ids []int64) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Config carries the optional collaborators of a Dashboard.
type Config struct {
	Toasts    *notify.Center
	Confirmer Confirmer
	Logger    *slog.Logger
	Clock     debounce.Clock
	Delay     time.Duration
	PageSize  int
	Language  string
	// OnSearch runs after a debounced search is applied.
	OnSearch func(query string)
}

// Dashboard is the list page state: the applied search, sort, page and
// selection over the store's trees.
type Dashboard struct {
	src     Source
	svc     Deleter
	cfg     Config
	search  *debounce.Debouncer[string]
	confirm Confirmer

	mu       sync.Mutex
	query    string
	typed    string
	key      SortKey
	dir      Direction
	page     int
	selected map[int64]bool
	deleting bool
}

// New returns a dashboard sorted by id, newest first.
func New(src Source, svc Deleter, cfg Config) *Dashboard {
	if cfg.Toasts == nil {
		cfg.Toasts = notify.NewCenter(0, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Language == "" {
		cfg.Language = types.DefaultLanguage
	}
	d := &Dashboard{
		src:      src,
		svc:      svc,
		cfg:      cfg,
		confirm:  cfg.Confirmer,
		key:      SortID,
		dir:      Desc,
		page:     1,
		selected: make(map[int64]bool),
	}
	d.search = debounce.New(cfg.Delay, cfg.Clock, d.applySearch)
	return d
}

// Toasts returns the notification center.
func (d *Dashboard) Toasts() *notify.Center { return d.cfg.Toasts }

// SetSearch records typed text; the filter follows after the quiet delay.
func (d *Dashboard) SetSearch(text string) {
	d.mu.Lock()
	d.typed = text
	d.mu.Unlock()
	d.search.Trigger(text)
}

// SetSearchNow applies text immediately, dropping any pending search.
func (d *Dashboard) SetSearchNow(text string) {
	d.search.Stop()
	d.mu.Lock()
	d.typed = text
	d.mu.Unlock()
	d.applySearch(text)
}

func (d *Dashboard) applySearch(text string) {
	d.mu.Lock()
	d.query = text
	d.page = 1
	d.mu.Unlock()
	if d.cfg.OnSearch != nil {
		d.cfg.OnSearch(text)
	}
}

// Search returns the typed and the applied search text.
func (d *Dashboard) Search() (typed, applied string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.typed, d.query
}

// Close cancels a pending search.
func (d *Dashboard) Close() { d.search.Stop() }

// Sort applies key. The same key flips the direction; a new key starts
// descending.
func (d *Dashboard) Sort(key SortKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if key == d.key {
		if d.dir == Asc {
			d.dir = Desc
		} else {
			d.dir = Asc
		}
		return
	}
	d.key, d.dir = key, Desc
}

// SetOrder sets key and direction directly.
func (d *Dashboard) SetOrder(key SortKey, dir Direction) {
	d.mu.Lock()
	d.key, d.dir = key, dir
	d.mu.Unlock()
}

// Order returns the current sort key and direction.
func (d *Dashboard) Order() (SortKey, Direction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key, d.dir
}

// Visible returns every tree passing the applied search, sorted.
func (d *Dashboard) Visible() []types.Tree {
	d.mu.Lock()
	query, key, dir := d.query, d.key, d.dir
	d.mu.Unlock()

	trees := Filter(d.src.Trees(), query)
	Sort(trees, key, dir)
	return trees
}

// Page is one page of the visible list.
type Page struct {
	Trees  []types.Tree
	Number int
	Count  int
	Total  int
}

// IDs returns the ids on the page in display order.
func (p Page) IDs() []int64 {
	out := make([]int64, len(p.Trees))
	for i, t := range p.Trees {
		out[i] = t.ID
	}
	return out
}

// SetPage moves to page n; it is clamped when the page is read.
func (d *Dashboard) SetPage(n int) {
	d.mu.Lock()
	d.page = n
	d.mu.Unlock()
}

// SetPageSize changes the page length.
func (d *Dashboard) SetPageSize(n int) {
	d.mu.Lock()
	if n > 0 {
		d.cfg.PageSize = n
	}
	d.mu.Unlock()
}

// CurrentPage returns the visible trees on the current page.
func (d *Dashboard) CurrentPage() Page {
	visible := d.Visible()
	d.mu.Lock()
	defer d.mu.Unlock()
	trees, n, count := Paginate(visible, d.page, d.cfg.PageSize)
	d.page = n
	return Page{Trees: trees, Number: n, Count: count, Total: len(visible)}
}

// NextPage moves forward one page.
func (d *Dashboard) NextPage() { d.stepPage(1) }

// PrevPage moves back one page.
func (d *Dashboard) PrevPage() { d.stepPage(-1) }

func (d *Dashboard) stepPage(delta int) {
	p := d.CurrentPage()
	d.SetPage(p.Number + delta)
}

// Select adds or removes id from the selection.
func (d *Dashboard) Select(id int64, checked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if checked {
		d.selected[id] = true
	} else {
		delete(d.selected, id)
	}
}

// Toggle flips the selection of id.
func (d *Dashboard) Toggle(id int64) {
	d.Select(id, !d.IsSelected(id))
}

// SelectAll selects or deselects exactly the given visible ids. Ids outside
// the list are left as they are.
func (d *Dashboard) SelectAll(checked bool, visibleIDs []int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range visibleIDs {
		if checked {
			d.selected[id] = true
		} else {
			delete(d.selected, id)
		}
	}
}

// ClearSelection empties the selection.
func (d *Dashboard) ClearSelection() {
	d.mu.Lock()
	d.selected = make(map[int64]bool)
	d.mu.Unlock()
}

// IsSelected reports whether id is selected.
func (d *Dashboard) IsSelected(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected[id]
}

// Selected returns the selected ids in ascending order.
func (d *Dashboard) Selected() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int64, 0, len(d.selected))
	for id := range d.selected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Deleting reports whether a delete is in flight.
func (d *Dashboard) Deleting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleting
}

func (d *Dashboard) ask(prompt string) error {
	if d.confirm == nil {
		return nil
	}
	ok, err := d.confirm.Confirm(prompt)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrDeclined
	}
	return nil
}

func (d *Dashboard) begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleting {
		return types.ErrSubmitInProgress
	}
	d.deleting = true
	return nil
}

func (d *Dashboard) end() {
	d.mu.Lock()
	d.deleting = false
	d.mu.Unlock()
}

// DeleteTree confirms, deletes one tree, refreshes and drops it from the
// selection.
func (d *Dashboard) DeleteTree(ctx context.Context, id int64) error {
	if err := d.ask(fmt.Sprintf(d.text(msgConfirmDeleteOne), id)); err != nil {
		return err
	}
	if err := d.begin(); err != nil {
		return err
	}
	defer d.end()

	if err := d.svc.DeleteTree(ctx, id); err != nil {
		d.cfg.Toasts.PushError(err.Error())
		return fmt.Errorf("deleting tree %d: %w", id, err)
	}
	d.Select(id, false)
	d.cfg.Toasts.PushSuccess(fmt.Sprintf(d.text(msgDeletedOne), id))
	return d.refresh(ctx)
}

// BulkResult reports the outcome of a bulk delete.
type BulkResult struct {
	Requested int
	Deleted   []int64
	Failed    map[int64]error
}

// BulkDelete deletes every selected tree, one call per id in ascending id
// order. A failure does not stop the remaining deletes. Afterwards the list
// is refreshed, the selection cleared and one summary toast pushed. The
// returned error joins every per-id failure.
func (d *Dashboard) BulkDelete(ctx context.Context) (BulkResult, error) {
	return d.bulkDelete(ctx, false)
}

// BulkDeleteServer deletes the selection with the backend's bulk endpoint in
// a single call.
func (d *Dashboard) BulkDeleteServer(ctx context.Context) (BulkResult, error) {
	return d.bulkDelete(ctx, true)
}

func (d *Dashboard) bulkDelete(ctx context.Context, server bool) (BulkResult, error) {
	ids := d.Selected()
	res := BulkResult{Requested: len(ids), Failed: make(map[int64]error)}
	if len(ids) == 0 {
		return res, types.ErrEmptySelection
	}
	if err := d.ask(fmt.Sprintf(d.text(msgConfirmDeleteMany), len(ids))); err != nil {
		return res, err
	}
	if err := d.begin(); err != nil {
		return res, err
	}
	defer d.end()

	var errs []error
	if server {
		if err := d.svc.BulkDeleteTrees(ctx, ids); err != nil {
			for _, id := range ids {
				res.Failed[id] = err
			}
			errs = append(errs, err)
		} else {
			res.Deleted = ids
		}
	} else {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				res.Failed[id] = err
				errs = append(errs, err)
				continue
			}
			if err := d.svc.DeleteTree(ctx, id); err != nil {
				d.cfg.Logger.Warn("delete tree failed", "id", id, "err", err)
				res.Failed[id] = err
				errs = append(errs, fmt.Errorf("tree %d: %w", id, err))
				continue
			}
			res.Deleted = append(res.Deleted, id)
		}
	}

	refreshErr := d.refresh(ctx)
	d.ClearSelection()

	if len(errs) == 0 {
		d.cfg.Toasts.PushSuccess(fmt.Sprintf(d.text(msgDeletedMany), len(res.Deleted)))
		return res, refreshErr
	}
	d.cfg.Toasts.PushError(fmt.Sprintf(d.text(msgDeletedPartial), len(res.Deleted), len(ids)))
	return res, errors.Join(append(errs, refreshErr)...)
}

func (d *Dashboard) refresh(ctx context.Context) error {
	if err := d.src.RefreshTrees(ctx); err != nil {
		d.cfg.Toasts.PushError(err.Error())
		return err
	}
	return nil
}
