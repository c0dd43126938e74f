package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_staffing/internal/engine"
	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
	"github.com/anatolykoptev/go_staffing/internal/enrich"
)

// Catalog record files, by name prefix: resources*.json holds person rows
// (any supported shape), projects*.json project rows, affinity*.json
// precomputed pairing rows. Every JSON file is an array. profiles*.html
// files are single-person HTML profile exports.
const (
	resourcesPrefix = "resources"
	projectsPrefix  = "projects"
	affinityPrefix  = "affinity"
	profilesPrefix  = "profiles"
)

// LoadMeta describes one load pass: what was read and what was skipped.
type LoadMeta struct {
	Dir           string    `json:"dir"`
	LoadedFiles   []string  `json:"loaded_files,omitempty"`
	ResourceCount int       `json:"resource_count"`
	ProjectCount  int       `json:"project_count"`
	AffinityCount int       `json:"affinity_count"`
	Errors        []string  `json:"errors,omitempty"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// Snapshot is one immutable load result.
type Snapshot struct {
	Catalog  *staffing.Catalog
	Affinity []staffing.AffinityRow
	Meta     LoadMeta
}

func emptySnapshot(dir string, errs ...string) *Snapshot {
	return &Snapshot{
		Catalog: staffing.NewCatalog(nil, nil),
		Meta: LoadMeta{
			Dir:      dir,
			Errors:   errs,
			LoadedAt: time.Now().UTC(),
		},
	}
}

// Load reads every catalog file under dir. It never fails: a missing
// directory or broken file yields an empty (or partial) snapshot with
// error markers in the metadata.
func Load(dir string) *Snapshot {
	engine.IncrCatalogLoads()
	entries, err := os.ReadDir(dir)
	if err != nil {
		engine.IncrCatalogErrors()
		slog.Warn("catalog dir unreadable", slog.String("dir", dir), slog.Any("error", err))
		return emptySnapshot(dir, fmt.Sprintf("read catalog dir: %v", err))
	}

	var meta LoadMeta
	meta.Dir = dir
	var resourceRows, projectRows, affinityRows []staffing.RawRow
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(name, profilesPrefix) && strings.HasSuffix(name, ".html") {
			row, err := readProfile(filepath.Join(dir, name))
			if err != nil {
				engine.IncrCatalogErrors()
				meta.Errors = append(meta.Errors, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			meta.LoadedFiles = append(meta.LoadedFiles, name)
			resourceRows = append(resourceRows, staffing.RawRow{File: name, Data: row})
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		var dst *[]staffing.RawRow
		switch {
		case strings.HasPrefix(name, resourcesPrefix):
			dst = &resourceRows
		case strings.HasPrefix(name, projectsPrefix):
			dst = &projectRows
		case strings.HasPrefix(name, affinityPrefix):
			dst = &affinityRows
		default:
			continue
		}
		rows, err := readRows(filepath.Join(dir, name))
		if err != nil {
			engine.IncrCatalogErrors()
			meta.Errors = append(meta.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		meta.LoadedFiles = append(meta.LoadedFiles, name)
		for i, row := range rows {
			*dst = append(*dst, staffing.RawRow{File: name, Index: i, Data: row})
		}
	}

	cat, affinity, rowErrs := staffing.NormalizeCatalog(resourceRows, projectRows)
	meta.Errors = append(meta.Errors, rowErrs...)

	for _, row := range affinityRows {
		a, err := staffing.DecodeAffinity(row.Data)
		if err != nil {
			meta.Errors = append(meta.Errors, fmt.Sprintf("%s[%d]: %v", row.File, row.Index, err))
			continue
		}
		affinity = append(affinity, a)
	}

	meta.ResourceCount = len(cat.Resources)
	meta.ProjectCount = len(cat.Projects)
	meta.AffinityCount = len(affinity)
	meta.LoadedAt = time.Now().UTC()
	if len(meta.Errors) > 0 {
		engine.IncrCatalogErrors()
	}

	slog.Info("catalog loaded",
		slog.String("dir", dir),
		slog.Int("resources", meta.ResourceCount),
		slog.Int("projects", meta.ProjectCount),
		slog.Int("affinity_rows", meta.AffinityCount),
		slog.Int("skipped", len(meta.Errors)))
	return &Snapshot{Catalog: cat, Affinity: affinity, Meta: meta}
}

// readProfile parses one HTML profile export into an enriched person row.
func readProfile(path string) (json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()
	export, err := enrich.ParseProfileHTML(f)
	if err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return export.Row()
}

func readRows(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode row array: %w", err)
	}
	return rows, nil
}

// Holder serves the current snapshot and swaps it whole on refresh.
type Holder struct {
	dir  string
	mu   sync.RWMutex
	snap *Snapshot
}

// NewHolder returns a holder over the given catalog directory. No load
// happens until Refresh.
func NewHolder(dir string) *Holder {
	return &Holder{dir: dir}
}

// Refresh reloads the catalog and publishes the new snapshot.
func (h *Holder) Refresh() *Snapshot {
	snap := Load(h.dir)
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
	return snap
}

// Get returns the current snapshot, or an empty one before the first refresh.
func (h *Holder) Get() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.snap == nil {
		return emptySnapshot(h.dir, "catalog not loaded yet")
	}
	return h.snap
}
