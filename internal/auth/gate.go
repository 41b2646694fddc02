package auth

import "clipvault/internal/catalog"

// CanAccess is the per-clip decision: public clips are reachable by anyone,
// protected clips only by authenticated callers.
//
//	requireAuth  authenticated  result
//	false        any            allow
//	true         true           allow
//	true         false          deny
func CanAccess(clip catalog.ClipRecord, authenticated bool) bool {
	return !clip.RequireAuth || authenticated
}

// FilterList applies the catalog-listing policy. In private-list mode an
// unauthenticated caller sees only public clips; in public-list mode the
// whole catalog is listed and the per-clip gate still applies on fetch.
func FilterList(records []catalog.ClipRecord, authenticated, privateList bool) []catalog.ClipRecord {
	if authenticated || !privateList {
		return records
	}
	out := make([]catalog.ClipRecord, 0, len(records))
	for _, rec := range records {
		if !rec.RequireAuth {
			out = append(out, rec)
		}
	}
	return out
}
