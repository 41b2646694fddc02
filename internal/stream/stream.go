package stream

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// contentTypes maps clip extensions to MIME types. Unknown extensions fall
// back to application/octet-stream.
var contentTypes = map[string]string{
	".mkv":  "video/x-matroska",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mpeg": "video/mpeg",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

const copyBufSize = 64 * 1024

// ServeFile streams path as an HTTP response honoring a single-range Range
// header. Existence and authorization are the caller's problem; this only
// turns an open file into bytes on the wire.
//
// Only the first range of a multi-range header is honored. Malformed range
// syntax degrades to a full 200 response; a syntactically valid but
// unsatisfiable range gets 416.
func ServeFile(w http.ResponseWriter, r *http.Request, path string, log zerolog.Logger) {
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		http.NotFound(w, r)
		return
	}
	size := st.Size()
	w.Header().Set("Content-Type", ContentType(st.Name()))
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, ok := parseRange(r.Header.Get("Range"), size)
	if !ok {
		// No Range header or unparsable syntax: serve the whole file.
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		copyChunk(w, f, size, log)
		return
	}
	if start < 0 {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	length := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		log.Error().Err(err).Str("path", path).Msg("seek failed mid-response")
		return
	}
	copyChunk(w, f, length, log)
}

// parseRange interprets a Range header against the file size.
// Returns ok=false for an absent or malformed header (caller serves the full
// file), and start=-1 with ok=true for a well-formed but unsatisfiable range
// (caller answers 416).
func parseRange(header string, size int64) (start, end int64, ok bool) {
	if header == "" {
		return 0, 0, false
	}
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return 0, 0, false
	}
	// Multi-range requests are not supported; honor the first range only.
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}
	startStr, endStr, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return 0, 0, false
	}
	// The start offset is required; suffix ranges ("-500") count as malformed
	// and fall back to the full file.
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}
	end = size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		if end > size-1 {
			end = size - 1
		}
	}
	if start >= size || start > end {
		return -1, 0, true
	}
	return start, end, true
}

func copyChunk(w http.ResponseWriter, f *os.File, length int64, log zerolog.Logger) {
	buf := make([]byte, copyBufSize)
	if _, err := io.CopyBuffer(w, io.LimitReader(f, length), buf); err != nil {
		// Usually the client went away mid-stream; nothing to retry.
		log.Debug().Err(err).Msg("stream aborted")
	}
}
