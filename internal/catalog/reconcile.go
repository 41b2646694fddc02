package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// mediaExts is the fixed allow-list of clip extensions.
var mediaExts = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".mpeg": true,
	".avi":  true,
	".wmv":  true,
}

// sidecarMeta is an optional <fileName>.json next to the clip. It seeds
// title/description at first discovery only; afterwards the catalog owns them.
type sidecarMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Reconciler synchronizes the persisted catalog with the media directory:
// it prunes records whose file is gone, refreshes stats for changed files,
// and creates records with fresh stable IDs for new files.
type Reconciler struct {
	store *Store
	dir   string
	log   zerolog.Logger
}

func NewReconciler(store *Store, mediaRoot string, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, dir: mediaRoot, log: log}
}

// Reconcile runs one scan-and-merge pass and returns the catalog ordered by
// savedAt descending (fileName ascending on ties). Running it twice against
// an unchanged directory yields identical results, IDs included.
//
// An unreadable media directory returns the last persisted catalog untouched;
// a transient mount failure must not wipe saved metadata.
func (r *Reconciler) Reconcile() ([]ClipRecord, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", r.dir).Msg("media dir unreadable, keeping persisted catalog")
		return r.store.Load(), nil
	}

	var files []fileStat
	var degraded []string
	sidecars := map[string]sidecarMeta{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".json" {
			if meta, ok := r.readSidecar(name); ok {
				sidecars[strings.TrimSuffix(name, ".json")] = meta
			}
			continue
		}
		if !mediaExts[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			r.log.Warn().Err(err).Str("file", name).Msg("stat failed, keeping prior record")
			degraded = append(degraded, name)
			continue
		}
		files = append(files, fileStat{name: name, size: info.Size(), savedAt: info.ModTime().UnixMilli()})
	}

	return r.store.Update(func(records []ClipRecord) ([]ClipRecord, bool, error) {
		return merge(records, files, degraded, sidecars)
	})
}

// fileStat is one listed media file with the stats the catalog tracks.
type fileStat struct {
	name    string
	size    int64
	savedAt int64
}

// merge rebuilds the catalog from one directory listing. Pruning is strictly
// by listing membership: a file that is still listed but could not be statted
// keeps its record untouched, stats and all, so a transient I/O failure never
// costs a clip its ID or metadata. New files that fail to stat wait for a
// scan that can read them.
func merge(records []ClipRecord, files []fileStat, degraded []string, sidecars map[string]sidecarMeta) ([]ClipRecord, bool, error) {
	byName := make(map[string]ClipRecord, len(records))
	takenIDs := make(map[string]bool, len(records))
	for _, rec := range records {
		byName[rec.FileName] = rec
		takenIDs[rec.ID] = true
	}

	out := make([]ClipRecord, 0, len(files)+len(degraded))
	for _, f := range files {
		if rec, ok := byName[f.name]; ok {
			if rec.SizeBytes != f.size || rec.SavedAt != f.savedAt {
				// File overwritten in place: refresh stats, keep the ID
				// and every user-set field.
				rec.SizeBytes = f.size
				rec.SavedAt = f.savedAt
			}
			rec.refreshDisplayName()
			out = append(out, rec)
			continue
		}

		id, err := newClipID(takenIDs)
		if err != nil {
			return nil, false, err
		}
		takenIDs[id] = true
		rec := ClipRecord{
			ID:        id,
			FileName:  f.name,
			SizeBytes: f.size,
			SavedAt:   f.savedAt,
			CreatedAt: time.Now().UnixMilli(),
		}
		if meta, ok := sidecars[f.name]; ok {
			rec.Title = meta.Title
			rec.Description = meta.Description
		}
		rec.refreshDisplayName()
		out = append(out, rec)
	}
	for _, name := range degraded {
		if rec, ok := byName[name]; ok {
			rec.refreshDisplayName()
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SavedAt != out[j].SavedAt {
			return out[i].SavedAt > out[j].SavedAt
		}
		return out[i].FileName < out[j].FileName
	})
	return out, true, nil
}

func (r *Reconciler) readSidecar(name string) (sidecarMeta, bool) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return sidecarMeta{}, false
	}
	var meta sidecarMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		r.log.Debug().Err(err).Str("file", name).Msg("unparsable sidecar metadata")
		return sidecarMeta{}, false
	}
	return meta, true
}

// FindByID scans a record list for the given clip ID.
func FindByID(records []ClipRecord, id string) (ClipRecord, bool) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return ClipRecord{}, false
}
