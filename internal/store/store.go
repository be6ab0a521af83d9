// Package store owns the client-side copy of trees, strains and batches.
// It is the single writer of that state; readers get copies.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// Service lists the collections the store mirrors.
type Service interface {
	ListTrees(ctx context.Context) ([]types.Tree, error)
	ListStrains(ctx context.Context) ([]types.Strain, error)
	ListBatches(ctx context.Context) ([]types.Batch, error)
}

// Store holds the last successfully loaded collections.
type Store struct {
	svc    Service
	logger *slog.Logger

	mu      sync.RWMutex
	trees   []types.Tree
	strains []types.Strain
	batches []types.Batch
	loading bool
	err     string

	gen    uint64
	cancel context.CancelFunc

	// treeSeq numbers every tree fetch; treeApplied is the newest one
	// whose result is in trees.
	treeSeq     uint64
	treeApplied uint64
}

// New returns an empty store over svc. A nil logger discards output.
func New(svc Service, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{svc: svc, logger: logger}
}

// Load fetches all three collections concurrently. On success they replace
// the current state together. On failure Err is set and the previous state
// stays. A load superseded by a newer Load, or whose context is canceled,
// changes nothing and records no error.
func (s *Store) Load(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.treeSeq++
	seq := s.treeSeq
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()

	var (
		trees   []types.Tree
		strains []types.Strain
		batches []types.Batch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trees, err = s.svc.ListTrees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		strains, err = s.svc.ListStrains(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		batches, err = s.svc.ListBatches(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.loading = false
	s.cancel = nil
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	if err != nil {
		s.err = fmt.Sprintf("Failed to load data: %v", err)
		s.logger.Warn("load failed", "err", err)
		return fmt.Errorf("loading data: %w", err)
	}

	sortTrees(trees)
	s.applyTrees(seq, trees)
	s.strains, s.batches = strains, batches
	s.err = ""
	return nil
}

// RefreshTrees refetches trees only. Failures are logged and returned; the
// current trees stay in place. A result older than the trees already held,
// from this call or a concurrent Load, is dropped.
func (s *Store) RefreshTrees(ctx context.Context) error {
	s.mu.Lock()
	s.treeSeq++
	seq := s.treeSeq
	s.mu.Unlock()

	trees, err := s.svc.ListTrees(ctx)
	if err != nil {
		s.logger.Warn("refresh trees failed", "err", err)
		return fmt.Errorf("refreshing trees: %w", err)
	}
	sortTrees(trees)

	s.mu.Lock()
	s.applyTrees(seq, trees)
	s.mu.Unlock()
	return nil
}

// applyTrees stores trees fetched by fetch seq unless a later fetch already
// landed. s.mu must be held.
func (s *Store) applyTrees(seq uint64, trees []types.Tree) {
	if seq <= s.treeApplied {
		s.logger.Debug("dropping stale tree list", "fetch", seq, "applied", s.treeApplied)
		return
	}
	s.trees, s.treeApplied = trees, seq
}

func sortTrees(trees []types.Tree) {
	sort.SliceStable(trees, func(i, j int) bool { return trees[i].ID > trees[j].ID })
}

// Trees returns a copy of the trees, newest id first.
func (s *Store) Trees() []types.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Tree, len(s.trees))
	for i, t := range s.trees {
		out[i] = t.Clone()
	}
	return out
}

// Strains returns a copy of the strain catalog.
func (s *Store) Strains() []types.Strain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Strain(nil), s.strains...)
}

// Batches returns a copy of the batches.
func (s *Store) Batches() []types.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Batch(nil), s.batches...)
}

// Loading reports whether a Load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the last failed Load, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// FindTree returns a copy of the tree with id.
func (s *Store) FindTree(id int64) (types.Tree, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trees {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return types.Tree{}, false
}

// SpliceImage removes imageID from tree treeID ahead of the next refetch.
// It reports whether anything was removed.
func (s *Store) SpliceImage(treeID, imageID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.trees {
		if s.trees[i].ID != treeID {
			continue
		}
		imgs := s.trees[i].Images
		for j, img := range imgs {
			if img.ID == imageID {
				next := make([]types.Image, 0, len(imgs)-1)
				next = append(next, imgs[:j]...)
				s.trees[i].Images = append(next, imgs[j+1:]...)
				return true
			}
		}
		return false
	}
	return false
}
