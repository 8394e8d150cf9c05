package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AdrienGannerie/gridboard/pkg/grid"

	"github.com/AdrienGannerie/gridboard/pkg/errors"
)

// File persists one dashboard's layout as a JSON document on disk. It is the
// default backend for the CLI.
type File struct {
	mu        sync.Mutex
	path      string
	dashboard string
}

// document is the on-disk format: the slot count the layout was last saved
// for, plus every item keyed by id.
type document struct {
	SlotCount int                        `json:"slot_count"`
	Items     map[string]grid.ItemLayout `json:"items"`
}

// NewFile creates a file-backed store for the named dashboard.
// If baseDir is empty, defaults to ~/.config/gridboard/dashboards/
func NewFile(baseDir, dashboard string) (*File, error) {
	if err := errors.ValidateDashboardName(dashboard); err != nil {
		return nil, err
	}
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "gridboard", "dashboards")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create dashboard dir: %w", err)
	}
	return &File{
		path:      filepath.Join(baseDir, dashboard+".json"),
		dashboard: dashboard,
	}, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// LoadAll reads the dashboard document. A missing file is an empty layout,
// not an error.
func (f *File) LoadAll(_ context.Context, _ int) ([]grid.ItemLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make([]grid.ItemLayout, 0, len(doc.Items))
	for _, it := range doc.Items {
		out = append(out, it)
	}
	return out, nil
}

// OnItemsAdded stores the new items.
func (f *File) OnItemsAdded(_ context.Context, items []grid.ItemLayout, slots int) error {
	return f.update(slots, func(doc *document) {
		for _, it := range items {
			doc.Items[it.ID] = it
		}
	})
}

// OnItemsUpdated overwrites the stored layout of each item.
func (f *File) OnItemsUpdated(_ context.Context, items []grid.ItemLayout, slots int) error {
	return f.update(slots, func(doc *document) {
		for _, it := range items {
			doc.Items[it.ID] = it
		}
	})
}

// OnItemsDeleted removes the items.
func (f *File) OnItemsDeleted(_ context.Context, items []grid.ItemLayout, slots int) error {
	return f.update(slots, func(doc *document) {
		for _, it := range items {
			delete(doc.Items, it.ID)
		}
	})
}

func (f *File) read() (*document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Items: make(map[string]grid.ItemLayout)}, nil
		}
		return nil, fmt.Errorf("read dashboard file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dashboard file: %w", err)
	}
	if doc.Items == nil {
		doc.Items = make(map[string]grid.ItemLayout)
	}
	return &doc, nil
}

// update applies fn under the lock and rewrites the whole document. Layout
// documents are small, so read-modify-write keeps the format trivially
// recoverable by hand.
func (f *File) update(slots int, fn func(*document)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.SlotCount = slots
	fn(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write dashboard file: %w", err)
	}
	return nil
}
