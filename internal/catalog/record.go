package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound means no catalog record matches the requested clip ID.
var ErrNotFound = errors.New("clip not found")

// ClipRecord is one catalog entry per discovered media file. The filesystem
// owns FileName/SizeBytes/SavedAt/CreatedAt; the catalog owns the ID and all
// user-set metadata.
type ClipRecord struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	DisplayName string `json:"displayName"`
	SizeBytes   int64  `json:"sizeBytes"`
	SavedAt     int64  `json:"savedAt"`   // file mtime, unix milliseconds
	CreatedAt   int64  `json:"createdAt"` // first observed, unix milliseconds
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	RequireAuth bool   `json:"requireAuth"`
	IsFavorite  bool   `json:"isFavorite"`
}

// refreshDisplayName recomputes the derived display name: the title override
// when present, otherwise the file name without its extension.
func (c *ClipRecord) refreshDisplayName() {
	if c.Title != "" {
		c.DisplayName = c.Title
		return
	}
	c.DisplayName = strings.TrimSuffix(c.FileName, filepath.Ext(c.FileName))
}

// ApplyUpdate merges a partial user edit onto the record. Nil fields are
// left alone; the derived display name follows the title.
func (c *ClipRecord) ApplyUpdate(title, description *string, requireAuth, isFavorite *bool) {
	if title != nil {
		c.Title = *title
	}
	if description != nil {
		c.Description = *description
	}
	if requireAuth != nil {
		c.RequireAuth = *requireAuth
	}
	if isFavorite != nil {
		c.IsFavorite = *isFavorite
	}
	c.refreshDisplayName()
}

// recordDocument is the persisted wire shape, loose enough to read documents
// written by older versions. Early catalogs used name/clipName for the file
// name and size/saved/created for stats; the timestamps were floats.
type recordDocument struct {
	ID          string   `json:"id"`
	FileName    string   `json:"fileName"`
	Name        string   `json:"name"`
	ClipName    string   `json:"clipName"`
	DisplayName string   `json:"displayName"`
	SizeBytes   *int64   `json:"sizeBytes"`
	Size        *int64   `json:"size"`
	SavedAt     *float64 `json:"savedAt"`
	Saved       *float64 `json:"saved"`
	CreatedAt   *float64 `json:"createdAt"`
	Created     *float64 `json:"created"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	RequireAuth bool     `json:"requireAuth"`
	IsFavorite  bool     `json:"isFavorite"`
}

func (d recordDocument) normalize() (ClipRecord, bool) {
	rec := ClipRecord{
		ID:          d.ID,
		FileName:    d.FileName,
		DisplayName: d.DisplayName,
		RequireAuth: d.RequireAuth,
		IsFavorite:  d.IsFavorite,
	}
	if rec.FileName == "" {
		rec.FileName = d.ClipName
	}
	if rec.FileName == "" {
		rec.FileName = d.Name
	}
	if rec.ID == "" || rec.FileName == "" {
		return ClipRecord{}, false
	}
	if d.SizeBytes != nil {
		rec.SizeBytes = *d.SizeBytes
	} else if d.Size != nil {
		rec.SizeBytes = *d.Size
	}
	rec.SavedAt = pickMillis(d.SavedAt, d.Saved)
	rec.CreatedAt = pickMillis(d.CreatedAt, d.Created)
	if d.Title != nil {
		rec.Title = *d.Title
	}
	if d.Description != nil {
		rec.Description = *d.Description
	}
	rec.refreshDisplayName()
	return rec, true
}

func pickMillis(vals ...*float64) int64 {
	for _, v := range vals {
		if v != nil {
			return int64(*v)
		}
	}
	return 0
}

// newClipID returns a fresh random clip identifier: 4 bytes of entropy as
// hex. IDs are assigned once at first discovery and never regenerated, so
// public links stay valid across rescans and password changes.
func newClipID(taken map[string]bool) (string, error) {
	for i := 0; i < 32; i++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate clip id: %w", err)
		}
		id := hex.EncodeToString(buf)
		if !taken[id] {
			return id, nil
		}
	}
	return "", errors.New("clip id space exhausted")
}
