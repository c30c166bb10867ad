package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GoodbyePlanet/vimark/internal/editor"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
	"github.com/GoodbyePlanet/vimark/internal/state"
	"github.com/GoodbyePlanet/vimark/internal/theme"
)

//go:embed index.html
var indexHTML []byte

// clientCookie identifies a browser for its stored preferences.
const clientCookie = "vimark_client"

// maxBodyBytes bounds request bodies of the JSON endpoints.
const maxBodyBytes = 4 << 20

// RegisterRoutes mounts the page and the JSON API onto r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.serveIndex)
	r.Get("/theme.css", s.handleStylesheet)
	r.Post("/api/render", s.handleRender)
	r.Get("/api/decode", s.handleDecode)
	r.Get("/api/prefs", s.handleGetPrefs)
	r.Put("/api/prefs", s.handlePutPrefs)
}

// htmlOpen is the page's root tag; a stored theme is added to it as
// data-theme so the page can paint it before connecting.
const htmlOpen = `<html lang="en" class="light-theme">`

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	page := indexHTML
	if mode, ok := s.storedTheme(r); ok {
		tag := `<html lang="en" class="light-theme" data-theme="` + string(mode) + `">`
		page = bytes.Replace(indexHTML, []byte(htmlOpen), []byte(tag), 1)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// storedTheme reads the theme saved for the requesting browser, without
// issuing a client cookie.
func (s *Server) storedTheme(r *http.Request) (theme.Mode, bool) {
	c, err := r.Cookie(clientCookie)
	if err != nil || !prefs.ValidClientID(c.Value) {
		return "", false
	}
	v, ok, err := s.prefs.ForClient(c.Value).Get(r.Context(), prefs.KeyTheme)
	if err != nil {
		log.Printf("server: reading theme: %v", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	return theme.ParseMode(v)
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	mode, ok := theme.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		mode = theme.Light
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(s.stylesheets[mode]))
}

type renderRequest struct {
	Text string `json:"text"`
}

type renderResponse struct {
	HTML     string `json:"html"`
	Token    string `json:"token"`
	TooLarge bool   `json:"too_large,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	html, err := s.renderer.HTML(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rendering failed")
		return
	}

	resp := renderResponse{HTML: html}
	var addr tokenAddress
	if err := s.documentStore(&addr).Save(req.Text); err != nil {
		if !errors.Is(err, state.ErrTooLarge) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.TooLarge = true
	}
	resp.Token = string(addr)
	writeJSON(w, http.StatusOK, resp)
}

type decodeResponse struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	addr := tokenAddress(r.URL.Query().Get("token"))
	store := s.documentStore(&addr)

	text, err := store.LoadStrict()
	fallback := addr == ""
	if err != nil {
		text = store.DefaultDocument()
		fallback = true
	}
	writeJSON(w, http.StatusOK, decodeResponse{Text: text, Fallback: fallback})
}

func (s *Server) documentStore(addr state.Address) *state.Store {
	opts := []state.Option{state.WithMaxTokenLength(s.cfg.MaxTokenLength)}
	if s.cfg.DefaultDocument != "" {
		opts = append(opts, state.WithDefaultDocument(s.cfg.DefaultDocument))
	}
	return state.NewStore(addr, opts...)
}

// tokenAddress is an Address holding a bare token.
type tokenAddress string

func (a *tokenAddress) Fragment() string            { return string(*a) }
func (a *tokenAddress) ReplaceFragment(token string) { *a = tokenAddress(token) }

type prefsResponse struct {
	Theme      string `json:"theme"`
	EscBinding string `json:"vim_binding"`
}

type prefsRequest struct {
	Theme      *string `json:"theme"`
	EscBinding *string `json:"vim_binding"`
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	store := s.prefs.ForClient(s.clientID(w, r))
	resp, err := readPrefs(r, store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var req prefsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store := s.prefs.ForClient(s.clientID(w, r))
	ctx := r.Context()

	if req.Theme != nil {
		mode, ok := theme.ParseMode(*req.Theme)
		if !ok {
			writeError(w, http.StatusBadRequest, "theme must be light or dark")
			return
		}
		if err := store.Set(ctx, prefs.KeyTheme, string(mode)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if req.EscBinding != nil {
		binding, err := editor.ParseEscBinding(*req.EscBinding)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.Set(ctx, prefs.KeyEscBinding, string(binding)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	resp, err := readPrefs(r, store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func readPrefs(r *http.Request, store *prefs.Store) (prefsResponse, error) {
	all, err := store.All(r.Context())
	if err != nil {
		return prefsResponse{}, err
	}
	resp := prefsResponse{Theme: all[prefs.KeyTheme], EscBinding: all[prefs.KeyEscBinding]}
	if resp.EscBinding == "" {
		resp.EscBinding = string(editor.DefaultEscBinding)
	}
	return resp, nil
}

// clientID returns the browser's id from its cookie, issuing a new one when
// the cookie is missing or malformed.
func (s *Server) clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookie); err == nil && prefs.ValidClientID(c.Value) {
		return c.Value
	}
	id := prefs.NewClientID()
	http.SetCookie(w, newClientCookie(id))
	return id
}

func newClientCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
