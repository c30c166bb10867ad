package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GoodbyePlanet/vimark/internal/app"
	"github.com/GoodbyePlanet/vimark/internal/editor"
	"github.com/GoodbyePlanet/vimark/internal/export"
	"github.com/GoodbyePlanet/vimark/internal/menu"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/state"
	"github.com/GoodbyePlanet/vimark/internal/theme"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clipboardTimeout bounds how long a share waits for the page to confirm
// the clipboard write.
const clipboardTimeout = 10 * time.Second

// maxMessageBytes bounds a single message from the page.
const maxMessageBytes = 4 << 20

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type     string `json:"type"` // init, change, menu, key, action, esc_binding, clipboard_result
	Fragment string `json:"fragment,omitempty"`
	OSDark   bool   `json:"os_dark,omitempty"`
	Text     string `json:"text,omitempty"`
	Event    string `json:"event,omitempty"` // menu: trigger or outside
	Key      string `json:"key,omitempty"`
	Action   string `json:"action,omitempty"`
	Value    string `json:"value,omitempty"`
	OK       bool   `json:"ok,omitempty"`
	Error    string `json:"error,omitempty"`
}

// hostMessage is the outgoing WebSocket message format.
type hostMessage struct {
	Type       string             `json:"type"`
	HTML       string             `json:"html,omitempty"`
	Token      *string            `json:"token,omitempty"`
	Text       *string            `json:"text,omitempty"`
	Mode       string             `json:"mode,omitempty"`
	Classes    []string           `json:"classes,omitempty"`
	Extensions []editor.Extension `json:"extensions,omitempty"`
	Mappings   []editor.Mapping   `json:"mappings,omitempty"`
	Binding    string             `json:"binding,omitempty"`
	Visible    *bool              `json:"visible,omitempty"`
	State      string             `json:"state,omitempty"`
	URL        string             `json:"url,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// session is one editor page connected over a WebSocket. Messages are read
// on a single goroutine; writes are serialized on writeMu.
type session struct {
	srv  *Server
	conn *websocket.Conn

	writeMu sync.Mutex

	ctx      context.Context
	clientID string
	baseURL  string

	editor  *editor.Buffer
	page    *theme.ClassList
	menu    *menu.Menu
	app     *app.App
	fromCli atomic.Bool

	clipMu     sync.Mutex
	clipResult chan error
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	clientID := ""
	if c, err := r.Cookie(clientCookie); err == nil && prefs.ValidClientID(c.Value) {
		clientID = c.Value
	} else {
		clientID = prefs.NewClientID()
		header.Add("Set-Cookie", newClientCookie(clientID).String())
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := &session{
		srv:      s,
		conn:     conn,
		ctx:      ctx,
		clientID: clientID,
		baseURL:  requestBaseURL(r),
		editor:   editor.NewBuffer(""),
		page:     &theme.ClassList{},
		menu:     &menu.Menu{},
	}
	defer sess.close(cancel)

	sess.run()
}

// requestBaseURL is the page address the browser used, without fragment.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (s *session) run() {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var m clientMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			s.sendError("invalid message format")
			continue
		}
		if err := s.handle(m); err != nil {
			s.sendError(err.Error())
		}
	}
}

func (s *session) handle(m clientMessage) error {
	if m.Type == "init" {
		if s.app != nil {
			return errors.New("session already initialised")
		}
		return s.init(m)
	}
	if m.Type == "clipboard_result" {
		s.deliverClipboard(m)
		return nil
	}
	if s.app == nil {
		return errors.New("session not initialised")
	}

	switch m.Type {
	case "change":
		s.fromCli.Store(true)
		s.editor.SetText(m.Text)
		s.fromCli.Store(false)
		return nil
	case "menu":
		switch m.Event {
		case "trigger":
			s.menu.Trigger()
		case "outside":
			s.menu.OutsideClick()
		default:
			return fmt.Errorf("unknown menu event %q", m.Event)
		}
		return nil
	case "key":
		_, err := s.app.HandleKey(s.ctx, m.Key)
		return err
	case "action":
		action, ok := menu.ParseAction(m.Action)
		if !ok {
			return fmt.Errorf("unknown action %q", m.Action)
		}
		return s.app.Dispatch(s.ctx, action)
	case "esc_binding":
		_, err := s.app.SetEscBinding(s.ctx, m.Value)
		return err
	default:
		return fmt.Errorf("unknown message type: %s", m.Type)
	}
}

// init builds the session's orchestrator from the page's address and colour
// scheme.
func (s *session) init(m clientMessage) error {
	loc, err := state.ParseLocation(s.baseURL)
	if err != nil {
		return err
	}
	loc.ReplaceFragment(m.Fragment)

	store := s.srv.prefs.ForClient(s.clientID)
	mode := theme.Resolve(s.ctx, store, m.OSDark)

	s.editor.OnReconfigure(s.sendTheme)
	s.editor.OnFocus(func() { s.send(hostMessage{Type: "focus"}) })
	s.editor.OnKeymap(s.sendKeymap)
	s.menu.OnChange(func(st menu.State) { s.send(hostMessage{Type: "menu", State: st.String()}) })

	pipeline := render.NewPipeline(render.SurfaceFunc(func(html string) {
		s.send(hostMessage{Type: "render", HTML: html})
	}), s.srv.cfg.Markdown)

	a, err := app.New(s.ctx, app.Deps{
		Editor:    s.editor,
		Location:  &sessionLocation{Location: loc, s: s},
		Pipeline:  pipeline,
		Theme:     theme.NewController(mode, store, s.editor, s.page),
		Prefs:     store,
		Menu:      s.menu,
		Clipboard: s,
		Notifier:  s,
		Printer:   s,
		Opener:    s,
	}, app.Config{
		DefaultDocument: s.srv.cfg.DefaultDocument,
		MaxTokenLength:  s.srv.cfg.MaxTokenLength,
		AckDelay:        s.srv.cfg.AckDelay,
		ProjectURL:      s.srv.cfg.ProjectURL,
	})
	if err != nil {
		return err
	}
	s.app = a

	text := s.editor.Text()
	s.send(hostMessage{Type: "text", Text: &text})

	// Changes the page did not originate (new note) are pushed back to it.
	s.editor.OnChange(func(text string) {
		if !s.fromCli.Load() {
			s.send(hostMessage{Type: "text", Text: &text})
		}
	})
	return nil
}

func (s *session) close(cancel context.CancelFunc) {
	cancel()
	if s.app != nil {
		s.app.Wait()
		s.app.Close()
	}
}

func (s *session) send(msg hostMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *session) sendError(message string) {
	s.send(hostMessage{Type: "error", Message: message})
}

func (s *session) sendTheme(exts []editor.Extension) {
	mode := theme.Light
	if s.page.Has(theme.ClassDark) {
		mode = theme.Dark
	}
	s.send(hostMessage{Type: "theme", Mode: string(mode), Classes: s.page.Names(), Extensions: exts})
}

func (s *session) sendKeymap(mappings []editor.Mapping) {
	binding := string(editor.DefaultEscBinding)
	if len(mappings) > 0 {
		binding = mappings[0].Keys
	}
	s.send(hostMessage{Type: "keymap", Binding: binding, Mappings: mappings})
}

// sessionLocation forwards fragment replacements to the page so its
// address bar follows the document.
type sessionLocation struct {
	*state.Location
	s *session
}

func (l *sessionLocation) ReplaceFragment(token string) {
	l.Location.ReplaceFragment(token)
	l.s.send(hostMessage{Type: "fragment", Token: &token})
}

// WriteText asks the page to copy text and waits for its answer.
func (s *session) WriteText(ctx context.Context, text string) error {
	result := make(chan error, 1)
	s.clipMu.Lock()
	s.clipResult = result
	s.clipMu.Unlock()

	s.send(hostMessage{Type: "clipboard", Text: &text})

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(clipboardTimeout):
		return errors.New("clipboard write timed out")
	}
}

func (s *session) deliverClipboard(m clientMessage) {
	s.clipMu.Lock()
	result := s.clipResult
	s.clipResult = nil
	s.clipMu.Unlock()

	if result == nil {
		return
	}
	if m.OK {
		result <- nil
		return
	}
	result <- fmt.Errorf("page clipboard: %s", m.Error)
}

func (s *session) ShowAck() {
	visible := true
	s.send(hostMessage{Type: "ack", Visible: &visible})
}

func (s *session) HideAck() {
	visible := false
	s.send(hostMessage{Type: "ack", Visible: &visible})
}

func (s *session) Warn(message string) {
	s.sendError(message)
}

// Print sends a printable page; the browser opens it and starts printing.
// Printed pages always use the light highlight style.
func (s *session) Print(html string) error {
	var buf bytes.Buffer
	err := export.Page(&buf, export.PageData{
		Title:      export.Title(s.editor.Text(), "vimark"),
		Content:    template.HTML(html),
		Stylesheet: template.CSS(s.srv.stylesheets[theme.Light]),
		AutoPrint:  true,
	})
	if err != nil {
		return err
	}
	s.send(hostMessage{Type: "print", HTML: buf.String()})
	return nil
}

func (s *session) Open(url string) error {
	s.send(hostMessage{Type: "open", URL: url})
	return nil
}
