// Package viewer holds the interactive terminal screens: the image viewer
// for one tree and the tree browser that embeds it.
package viewer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/notify"
	"github.com/mesh-intelligence/mytree/internal/render"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// ImageDeleter removes a stored image.
type ImageDeleter interface {
	DeleteImage(ctx context.Context, imageID int64) error
}

// Splicer drops a deleted image from local state and refetches trees.
type Splicer interface {
	SpliceImage(treeID, imageID int64) bool
	RefreshTrees(ctx context.Context) error
}

// ClosedMsg is emitted when an embedded viewer is dismissed.
type ClosedMsg struct{}

type imageDeletedMsg struct {
	imageID int64
	err     error
}

type treesRefreshedMsg struct{ err error }

type toastExpiredMsg struct{}

var (
	viewerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	viewerMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	thumbActive = lipgloss.NewStyle().Reverse(true).Padding(0, 1)
	thumbIdle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// Viewer is a full-screen pager over one tree's images.
type Viewer struct {
	ctx      context.Context
	svc      ImageDeleter
	store    Splicer
	toasts   *notify.Center
	embedded bool
	now      func() time.Time

	tree       types.Tree
	index      int
	jump       string
	confirming bool
	deleting   bool
	closed     bool
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// Embedded makes Esc emit ClosedMsg instead of quitting the program.
func Embedded() ViewerOption {
	return func(v *Viewer) { v.embedded = true }
}

// WithToasts shares a notification center with the caller.
func WithToasts(c *notify.Center) ViewerOption {
	return func(v *Viewer) { v.toasts = c }
}

// WithNow overrides the clock used for relative upload times.
func WithNow(now func() time.Time) ViewerOption {
	return func(v *Viewer) { v.now = now }
}

// NewViewer opens tree's images at index start.
func NewViewer(ctx context.Context, tree types.Tree, svc ImageDeleter, store Splicer, start int, opts ...ViewerOption) *Viewer {
	v := &Viewer{ctx: ctx, svc: svc, store: store, tree: tree.Clone(), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	if v.toasts == nil {
		v.toasts = notify.NewCenter(0, nil)
	}
	if start >= 0 && start < len(v.tree.Images) {
		v.index = start
	}
	return v
}

// Index returns the image shown in the main view.
func (v *Viewer) Index() int { return v.index }

// Images returns the images still attached.
func (v *Viewer) Images() []types.Image { return append([]types.Image(nil), v.tree.Images...) }

// Confirming reports whether a delete awaits confirmation.
func (v *Viewer) Confirming() bool { return v.confirming }

// Closed reports whether the viewer was dismissed.
func (v *Viewer) Closed() bool { return v.closed }

// Init implements tea.Model.
func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) close() tea.Cmd {
	v.closed = true
	if v.embedded {
		return func() tea.Msg { return ClosedMsg{} }
	}
	return tea.Quit
}

func (v *Viewer) step(delta int) {
	n := len(v.tree.Images)
	if n == 0 {
		return
	}
	v.index = ((v.index+delta)%n + n) % n
}

// Update implements tea.Model.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	case imageDeletedMsg:
		return v, v.handleDeleted(msg)
	case treesRefreshedMsg:
		if msg.err != nil {
			v.toasts.PushError(fmt.Sprintf("Refresh failed: %v", msg.err))
			return v, expireToast(v.toasts.TTL())
		}
		return v, nil
	case toastExpiredMsg:
		return v, nil
	}
	return v, nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if v.confirming {
		switch key {
		case "y", "Y":
			v.confirming = false
			return v.deleteCurrent()
		case "n", "N", "esc":
			v.confirming = false
		}
		return nil
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		v.jumpTo(key)
		return nil
	}
	v.jump = ""

	switch key {
	case "esc", "q":
		return v.close()
	case "ctrl+c":
		return tea.Quit
	case "left", "h":
		v.step(-1)
	case "right", "l":
		v.step(1)
	case "d":
		if len(v.tree.Images) > 0 && !v.deleting {
			v.confirming = true
		}
	}
	return nil
}

// jumpTo extends the typed thumbnail number with digit and moves to it. A
// number past the last image starts over from digit alone.
func (v *Viewer) jumpTo(digit string) {
	for _, s := range []string{v.jump + digit, digit} {
		n, err := strconv.Atoi(s)
		if err == nil && n >= 1 && n <= len(v.tree.Images) {
			v.index, v.jump = n-1, s
			return
		}
	}
	v.jump = ""
}

func (v *Viewer) deleteCurrent() tea.Cmd {
	if len(v.tree.Images) == 0 {
		return nil
	}
	v.deleting = true
	id := v.tree.Images[v.index].ID
	ctx, svc := v.ctx, v.svc
	return func() tea.Msg {
		return imageDeletedMsg{imageID: id, err: svc.DeleteImage(ctx, id)}
	}
}

func (v *Viewer) handleDeleted(msg imageDeletedMsg) tea.Cmd {
	v.deleting = false
	if msg.err != nil {
		v.toasts.PushError(fmt.Sprintf("Delete image failed: %v", msg.err))
		return expireToast(v.toasts.TTL())
	}
	var refresh tea.Cmd
	if v.store != nil {
		v.store.SpliceImage(v.tree.ID, msg.imageID)
		ctx, store := v.ctx, v.store
		refresh = func() tea.Msg { return treesRefreshedMsg{err: store.RefreshTrees(ctx)} }
	}
	for i, img := range v.tree.Images {
		if img.ID == msg.imageID {
			v.tree.Images = append(v.tree.Images[:i:i], v.tree.Images[i+1:]...)
			break
		}
	}
	if v.index >= len(v.tree.Images) {
		v.index = len(v.tree.Images) - 1
	}
	if v.index < 0 {
		v.index = 0
	}
	v.toasts.PushSuccess("Image deleted")
	return tea.Batch(refresh, expireToast(v.toasts.TTL()))
}

func expireToast(ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

// View implements tea.Model.
func (v *Viewer) View() string {
	var b strings.Builder
	name := v.tree.Nickname
	if name == "" {
		name = v.tree.StrainName()
	}
	b.WriteString(viewerTitle.Render(fmt.Sprintf("#%d %s", v.tree.ID, name)))
	b.WriteString("\n\n")

	if len(v.tree.Images) == 0 {
		b.WriteString(viewerMuted.Render("No images."))
	} else {
		img := v.tree.Images[v.index]
		b.WriteString(fmt.Sprintf("[%d/%d] %s\n", v.index+1, len(v.tree.Images), img.Image))
		if t, ok := dashboard.ParseDate(img.UploadedAt); ok {
			b.WriteString(viewerMuted.Render("uploaded " + humanize.RelTime(t, v.now(), "ago", "from now")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		thumbs := make([]string, len(v.tree.Images))
		for i := range v.tree.Images {
			style := thumbIdle
			if i == v.index {
				style = thumbActive
			}
			thumbs[i] = style.Render(fmt.Sprintf("%d", i+1))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, thumbs...))
	}
	b.WriteString("\n\n")

	if v.confirming {
		b.WriteString(warnStyle.Render("Delete this image? (y/n)"))
		b.WriteString("\n")
	}
	if t, ok := v.toasts.Latest(); ok {
		b.WriteString(render.Toast(t))
		b.WriteString("\n")
	}
	b.WriteString(viewerMuted.Render("←/→ navigate · number jump · d delete · esc close"))
	return b.String()
}
