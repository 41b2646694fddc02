package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"clipvault/internal/auth"
	"clipvault/internal/catalog"
	"clipvault/internal/config"
	"clipvault/internal/stream"
	"clipvault/internal/thumbs"
	"clipvault/pkg/logger"
)

var buildVersion = envDefault("BUILD_VERSION", "dev")

func main() {
	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	authSvc, err := auth.NewService(cfg.AppSecret, cfg.UserPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("auth init failed")
	}
	store := catalog.NewStore(cfg.StatePath())
	reconciler := catalog.NewReconciler(store, cfg.MediaRoot, log)
	gen := thumbs.NewGenerator(cfg.ThumbDir(), cfg.ThumbSize, log)

	go func() {
		ticker := time.NewTicker(cfg.ScanInterval)
		defer ticker.Stop()
		for {
			records, err := reconciler.Reconcile()
			if err != nil {
				log.Error().Err(err).Msg("background reconcile failed")
			} else {
				gen.Sync(context.Background(), records, func(fileName string) string {
					return filepath.Join(cfg.MediaRoot, fileName)
				})
			}
			<-ticker.C
		}
	}()

	r := newRouter(cfg, log, authSvc, store, reconciler, gen)
	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("media_root", cfg.MediaRoot).Bool("auth", authSvc.Enabled()).Msg("api listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newRouter(cfg config.Config, log zerolog.Logger, authSvc *auth.Service, store *catalog.Store, reconciler *catalog.Reconciler, gen *thumbs.Generator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", serveUI(authSvc))

	r.Post("/auth/login", handleLogin(authSvc))
	r.Post("/auth/logout", handleLogout(authSvc))

	r.Route("/clips", func(r chi.Router) {
		r.Get("/", handleListClips(cfg, reconciler, authSvc))
		r.With(authSvc.RequireAuth).Put("/{id}", handleUpdateClip(store))
		r.Get("/{id}/media", handleClipMedia(cfg, store, authSvc, log))
		r.Get("/{id}/thumbnail", handleClipThumbnail(cfg, store, authSvc, gen, log))
	})
	return r
}

func envDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleLogin(authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authSvc.Enabled() {
			errorJSON(w, http.StatusBadRequest, "authentication not configured")
			return
		}
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid body")
			return
		}
		token, err := authSvc.Login(req.Password)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "invalid password")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleLogout(authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
			authSvc.Logout(c.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleListClips(cfg config.Config, reconciler *catalog.Reconciler, authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := reconciler.Reconcile()
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		records = auth.FilterList(records, authSvc.Authenticated(r), cfg.PrivateList)
		writeJSON(w, http.StatusOK, records)
	}
}

func handleUpdateClip(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			RequireAuth *bool   `json:"requireAuth"`
			IsFavorite  *bool   `json:"isFavorite"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid body")
			return
		}
		var updated catalog.ClipRecord
		_, err := store.Update(func(records []catalog.ClipRecord) ([]catalog.ClipRecord, bool, error) {
			for i := range records {
				if records[i].ID != id {
					continue
				}
				records[i].ApplyUpdate(req.Title, req.Description, req.RequireAuth, req.IsFavorite)
				updated = records[i]
				return records, true, nil
			}
			return records, false, catalog.ErrNotFound
		})
		if errors.Is(err, catalog.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "error updating clip")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleClipMedia(cfg config.Config, store *catalog.Store, authSvc *auth.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, status := lookupClip(store, authSvc, r)
		if status != 0 {
			errorJSON(w, status, http.StatusText(status))
			return
		}
		path, err := resolveClipPath(cfg.MediaRoot, clip.FileName)
		if err != nil {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		if _, err := os.Stat(path); err != nil {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		stream.ServeFile(w, r, path, log)
	}
}

func handleClipThumbnail(cfg config.Config, store *catalog.Store, authSvc *auth.Service, gen *thumbs.Generator, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, status := lookupClip(store, authSvc, r)
		if status != 0 {
			errorJSON(w, status, http.StatusText(status))
			return
		}
		thumbPath := gen.Path(clip.ID)
		if _, err := os.Stat(thumbPath); err != nil {
			if mediaPath, perr := resolveClipPath(cfg.MediaRoot, clip.FileName); perr == nil {
				if gerr := gen.Ensure(r.Context(), clip.ID, mediaPath); gerr != nil {
					log.Debug().Err(gerr).Str("clip", clip.ID).Msg("on-demand thumbnail failed")
				}
			}
		}
		if _, err := os.Stat(thumbPath); err != nil {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		stream.ServeFile(w, r, thumbPath, log)
	}
}

// lookupClip resolves {id} against the catalog and runs the per-clip gate.
// A zero status means the clip may be served.
func lookupClip(store *catalog.Store, authSvc *auth.Service, r *http.Request) (catalog.ClipRecord, int) {
	id := chi.URLParam(r, "id")
	// Direct links may carry an extension ("abc123.mp4"); the ID is the stem.
	id = strings.TrimSuffix(id, filepath.Ext(id))
	clip, ok := catalog.FindByID(store.Load(), id)
	if !ok {
		return catalog.ClipRecord{}, http.StatusNotFound
	}
	if !auth.CanAccess(clip, authSvc.Authenticated(r)) {
		return catalog.ClipRecord{}, http.StatusUnauthorized
	}
	return clip, 0
}

// resolveClipPath joins a catalog file name onto the media root and rejects
// anything escaping it.
func resolveClipPath(root, fileName string) (string, error) {
	full := filepath.Clean(filepath.Join(root, fileName))
	rootClean := filepath.Clean(root)
	if full != rootClean && !strings.HasPrefix(full, rootClean+string(os.PathSeparator)) {
		return "", errors.New("path not allowed")
	}
	if full == rootClean {
		return "", errors.New("path not allowed")
	}
	return full, nil
}
