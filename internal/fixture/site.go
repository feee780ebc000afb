// internal/fixture/site.go
package fixture

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Demo credentials accepted by a Site built with NewSite and no overrides.
const (
	DefaultUsername = "demo@webharness.local"
	DefaultPassword = "harness"
)

const sessionCookie = "wh_session"

// Site is a small web app with a login form, an app launcher behind it and a widgets page
// exercising dialogs, selects, frames and visibility. It is what the acceptance tests and the
// fixture command drive.
type Site struct {
	username string
	password string
	logger   *zap.Logger
	router   *mux.Router

	mu       sync.RWMutex
	sessions map[string]string
}

// NewSite builds the site. Empty credentials fall back to the demo ones.
func NewSite(username, password string, logger *zap.Logger) *Site {
	if username == "" {
		username = DefaultUsername
	}
	if password == "" {
		password = DefaultPassword
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Site{
		username: username,
		password: password,
		logger:   logger.Named("fixture"),
		sessions: make(map[string]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.serveLogin).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost, http.MethodGet)
	r.HandleFunc("/home", s.serveHome).Methods(http.MethodGet)
	r.HandleFunc("/widgets", s.render(widgetsPage, nil)).Methods(http.MethodGet)
	r.HandleFunc("/frame", s.render(framePage, nil)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions reports how many users are logged in.
func (s *Site) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Site) render(t *template.Template, data interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.write(w, http.StatusOK, t, data)
	}
}

func (s *Site) write(w http.ResponseWriter, status int, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.Execute(w, data); err != nil {
		s.logger.Error("Failed to render page.", zap.String("template", t.Name()), zap.Error(err))
	}
}

func (s *Site) serveLogin(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, loginPage, loginData{})
}

func (s *Site) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user, pass := r.PostFormValue("username"), r.PostFormValue("password")
	if user != s.username || pass != s.password {
		s.logger.Info("Rejected login.", zap.String("username", user))
		s.write(w, http.StatusUnauthorized, loginPage, loginData{Error: "Invalid username or password.", Username: user})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = user
	s.mu.Unlock()

	s.logger.Info("Accepted login.", zap.String("username", user))
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Site) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Site) serveHome(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.mu.RLock()
	user, ok := s.sessions[c.Value]
	s.mu.RUnlock()
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.write(w, http.StatusOK, homePage, homeData{Username: user})
}

// Serve runs the site on addr until ctx is done, then shuts down gracefully. ready, when not
// nil, receives the bound address once the listener is open.
func Serve(ctx context.Context, addr string, site *Site, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: site, ReadHeaderTimeout: 10 * time.Second}
	site.logger.Info("Fixture site listening.", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
