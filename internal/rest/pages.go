package rest

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pershin-daniil/SchoolAdmin/pkg/eventform"
	"github.com/pershin-daniil/SchoolAdmin/pkg/icalfeed"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/pershin-daniil/SchoolAdmin/pkg/pgstore"
)

const eventsPath = "/events"

type formData struct {
	View   *eventform.View
	Action string
}

var templateFuncs = template.FuncMap{
	"displayTime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	},
	"formData": func(view *eventform.View, action string) formData {
		return formData{View: view, Action: action}
	},
}

type eventsPage struct {
	Version    string
	SignedIn   bool
	Events     []models.Event
	Toast      *Toast
	Error      string
	Form       *eventform.View
	FormAction string
}

func (s *Server) renderEvents(w http.ResponseWriter, r *http.Request, status int, page eventsPage) {
	events, err := s.app.GetEvents(r.Context())
	if err != nil {
		s.log.Warnf("err during getting events: %v", err)
		page.Error = "Events could not be loaded."
		status = http.StatusInternalServerError
	}
	page.Events = events
	page.Version = s.version
	page.SignedIn = s.getClaims(r.Context()) != nil
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err = s.templates.ExecuteTemplate(w, "events", page); err != nil {
		s.log.Warnf("err during rendering events page: %v", err)
	}
}

func (s *Server) eventsPage(w http.ResponseWriter, r *http.Request) {
	s.renderEvents(w, r, http.StatusOK, eventsPage{Toast: popToast(w, r)})
}

func (s *Server) newForm(r *http.Request, mode eventform.Mode, data *models.Event) (*eventform.Form, error) {
	classes, err := s.app.GetClasses(r.Context())
	if err != nil {
		return nil, err
	}
	props := eventform.Props{Mode: mode, Data: data, Classes: classes}
	return eventform.New(s.rawLog, props, s.schema, s.actions), nil
}

func formAction(mode eventform.Mode) string {
	if mode == eventform.ModeUpdate {
		return eventsPath + "/update"
	}
	return eventsPath
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request, mode eventform.Mode, data *models.Event) {
	form, err := s.newForm(r, mode, data)
	if err != nil {
		s.log.Warnf("err during getting classes: %v", err)
		http.Error(w, "Something went wrong!", http.StatusInternalServerError)
		return
	}
	view := form.View()
	s.renderEvents(w, r, http.StatusOK, eventsPage{Form: &view, FormAction: formAction(mode)})
}

func (s *Server) newEventPage(w http.ResponseWriter, r *http.Request) {
	s.showForm(w, r, eventform.ModeCreate, nil)
}

func (s *Server) editEventPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	event, err := s.app.GetEvent(r.Context(), id)
	switch {
	case errors.Is(err, pgstore.ErrEventNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.log.Warnf("err during getting event: %v", err)
		http.Error(w, "Something went wrong!", http.StatusInternalServerError)
		return
	}
	s.showForm(w, r, eventform.ModeUpdate, &event)
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, mode eventform.Mode) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	form, err := s.newForm(r, mode, nil)
	if err != nil {
		s.log.Warnf("err during getting classes: %v", err)
		http.Error(w, "Something went wrong!", http.StatusInternalServerError)
		return
	}
	effects := &pageEffects{}
	view := form.Submit(r.Context(), r.PostForm, effects)
	if effects.apply(w, r) {
		return
	}
	status := http.StatusOK
	if view.HasErrors() {
		status = http.StatusUnprocessableEntity
	}
	s.renderEvents(w, r, status, eventsPage{Form: &view, FormAction: formAction(mode)})
}

func (s *Server) createEventSubmit(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, eventform.ModeCreate)
}

func (s *Server) updateEventSubmit(w http.ResponseWriter, r *http.Request) {
	s.submitForm(w, r, eventform.ModeUpdate)
}

func (s *Server) deleteEventSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	if res := s.actions.DeleteEvent(r.Context(), id); res.Error {
		s.renderEvents(w, r, http.StatusOK, eventsPage{Error: eventform.MsgSomethingWentWrong})
		return
	}
	setToast(w, "success", "Event has been deleted!")
	http.Redirect(w, r, eventsPath, http.StatusSeeOther)
}

func (s *Server) icsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.GetEvents(r.Context())
	if err != nil {
		s.log.Warnf("err during getting events: %v", err)
		http.Error(w, "Something went wrong!", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if _, err = w.Write([]byte(icalfeed.Encode(events, s.domain, time.Now()))); err != nil {
		s.log.Warnf("err during writing to connection: %v", err)
	}
}
