package rest

import (
	"context"
	"crypto/rand"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pershin-daniil/SchoolAdmin/pkg/eventform"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates
var templatesFS embed.FS

type App interface {
	GetClasses(ctx context.Context) ([]models.Class, error)
	GetEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int) (models.Event, error)
	CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error)
	UpdateEvent(ctx context.Context, id int, in models.EventInput) (models.Event, error)
	DeleteEvent(ctx context.Context, id int) (models.Event, error)
}

// Actions are the form-facing operations reporting a two-flag result.
type Actions interface {
	eventform.Actions
	DeleteEvent(ctx context.Context, id int) models.Result
}

// Auth configures admin access. An empty PasswordHash disables authentication.
type Auth struct {
	PasswordHash string
	Secret       []byte
	TTL          time.Duration
}

type Server struct {
	log       *logrus.Entry
	rawLog    *logrus.Logger
	app       App
	actions   Actions
	schema    *eventform.Schema
	templates *template.Template
	auth      Auth
	address   string
	version   string
	domain    string
}

func NewServer(log *logrus.Logger, app App, actions Actions, auth Auth, address, version string) *Server {
	if auth.TTL == 0 {
		auth.TTL = 12 * time.Hour
	}
	s := Server{
		log:       log.WithField("component", "rest"),
		rawLog:    log,
		app:       app,
		actions:   actions,
		schema:    eventform.NewSchema(),
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")),
		auth:      auth,
		address:   address,
		version:   version,
		domain:    "schooladmin.local",
	}
	switch {
	case auth.PasswordHash == "":
		s.log.Warn("admin password is not configured, authentication is disabled")
	case len(auth.Secret) == 0:
		s.auth.Secret = make([]byte, 32)
		if _, err := rand.Read(s.auth.Secret); err != nil {
			s.log.Panicf("err generating session secret: %v", err)
		}
		s.log.Warn("session secret is not configured, using a random one; sessions end on restart")
	}
	return &s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/version", s.versionHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/login", s.loginPage)
	r.Post("/login", s.loginHandler)
	r.Post("/logout", s.logoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.adminAuth)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, eventsPath, http.StatusFound)
		})
		r.Get("/calendar.ics", s.icsHandler)
		r.Route(eventsPath, func(r chi.Router) {
			r.Get("/", s.eventsPage)
			r.Post("/", s.createEventSubmit)
			r.Get("/new", s.newEventPage)
			r.Post("/update", s.updateEventSubmit)
			r.Get("/{id}/edit", s.editEventPage)
			r.Post("/{id}/delete", s.deleteEventSubmit)
		})
		r.Route("/api", func(r chi.Router) {
			r.Route("/v1", func(r chi.Router) {
				r.Get("/classes", s.getClassesHandler)
				r.Route("/events", func(r chi.Router) {
					r.Get("/", s.getEventsHandler)
					r.Post("/", s.createEventHandler)
					r.Get("/{id}", s.getEventHandler)
					r.Put("/{id}", s.updateEventHandler)
					r.Delete("/{id}", s.deleteEventHandler)
				})
			})
		})
	})
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("err during shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("err serving http: %w", err)
	}
	return nil
}

func (s *Server) versionHandler(w http.ResponseWriter, _ *http.Request) {
	_, err := fmt.Fprintf(w, "%s\n", s.version)
	if err != nil {
		s.log.Warnf("err during writing to connection: %v", err)
	}
}
