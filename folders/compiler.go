// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package folders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Compiler validates, persists and executes smart folder specs. A smart
// folder is a named, saved filter query re-evaluated on demand; it never
// materializes results.
type Compiler struct {
	store  storage.FolderStore
	files  storage.FileStore
	logger *slog.Logger
}

// NewCompiler creates a Compiler over the given stores.
func NewCompiler(store storage.FolderStore, files storage.FileStore) *Compiler {
	return &Compiler{
		store:  store,
		files:  files,
		logger: slog.Default().With("component", "folders"),
	}
}

// ValidateFilters parses raw filter JSON against the closed filter key
// set. Unknown keys and type mismatches are rejected before anything is
// persisted.
func ValidateFilters(raw []byte) (*core.Filters, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var filters core.Filters
	if err := decoder.Decode(&filters); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFilter, err)
	}
	if filters.MinSize < 0 || filters.MaxSize < 0 {
		return nil, fmt.Errorf("%w: sizes must be non-negative", core.ErrInvalidFilter)
	}
	if filters.MinSize > 0 && filters.MaxSize > 0 && filters.MinSize > filters.MaxSize {
		return nil, fmt.Errorf("%w: min_size exceeds max_size", core.ErrInvalidFilter)
	}
	if !filters.DateFrom.IsZero() && !filters.DateTo.IsZero() && filters.DateFrom.After(filters.DateTo) {
		return nil, fmt.Errorf("%w: date_from after date_to", core.ErrInvalidFilter)
	}
	return &filters, nil
}

// Create validates and persists a named smart folder.
func (c *Compiler) Create(ctx context.Context, name, description string, rawFilters []byte) (*core.SmartFolderSpec, error) {
	if name == "" {
		return nil, core.ErrEmptyFolderName
	}
	filters, err := ValidateFilters(rawFilters)
	if err != nil {
		return nil, err
	}

	spec := &core.SmartFolderSpec{
		Name:        name,
		Description: description,
		Filters:     *filters,
	}
	if err := c.store.Put(ctx, spec); err != nil {
		return nil, err
	}
	c.logger.Info("created smart folder", "name", name)
	return spec, nil
}

// Execute evaluates a folder's filters over the live file records and
// bumps its use counter. All present filters combine conjunctively; a
// spec with no filters matches nothing.
func (c *Compiler) Execute(ctx context.Context, id core.ID) ([]*core.FileRecord, error) {
	spec, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.IncrementUse(ctx, id); err != nil {
		return nil, err
	}

	if spec.Filters.IsEmpty() {
		return []*core.FileRecord{}, nil
	}

	records, err := c.files.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*core.FileRecord
	for _, record := range records {
		if Matches(&spec.Filters, record) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// List returns all saved folders, most used first.
func (c *Compiler) List(ctx context.Context) ([]*core.SmartFolderSpec, error) {
	return c.store.List(ctx)
}

// Delete removes a saved folder.
func (c *Compiler) Delete(ctx context.Context, id core.ID) error {
	return c.store.Delete(ctx, id)
}

// Matches reports whether a record satisfies every present filter.
func Matches(f *core.Filters, record *core.FileRecord) bool {
	if len(f.Extensions) > 0 && !slices.Contains(f.Extensions, record.Extension) {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(record.Tags, tag) {
			return false
		}
	}
	if f.Project != "" && record.Project != f.Project {
		return false
	}
	if !f.DateFrom.IsZero() && record.ModifiedAt.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && record.ModifiedAt.After(f.DateTo) {
		return false
	}
	if f.MinSize > 0 && record.Size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && record.Size > f.MaxSize {
		return false
	}
	if f.Contains != "" {
		needle := strings.ToLower(f.Contains)
		if !strings.Contains(strings.ToLower(record.SearchText()), needle) {
			return false
		}
	}
	if f.FolderPrefix != "" && !strings.HasPrefix(record.Path, f.FolderPrefix) {
		return false
	}
	if f.Screenshots && !record.IsScreenshot() {
		return false
	}
	if f.Duplicates && !record.IsDuplicate {
		return false
	}
	return true
}
