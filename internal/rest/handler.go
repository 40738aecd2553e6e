package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pershin-daniil/SchoolAdmin/pkg/eventform"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/pershin-daniil/SchoolAdmin/pkg/pgstore"
)

func (s *Server) getClassesHandler(w http.ResponseWriter, r *http.Request) {
	classes, err := s.app.GetClasses(r.Context())
	if err != nil {
		s.log.Warnf("err during getting classes: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusOK, classes)
}

func (s *Server) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.GetEvents(r.Context())
	if err != nil {
		s.log.Warnf("err during getting events: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusOK, events)
}

func (s *Server) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	in.ID = nil
	if errs := s.schema.Validate(in); errs != nil {
		s.writeResponse(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return
	}
	created, err := s.app.CreateEvent(r.Context(), in)
	if err != nil {
		s.log.Warnf("err during creating event: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusCreated, created)
}

func (s *Server) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	event, err := s.app.GetEvent(r.Context(), id)
	switch {
	case errors.Is(err, pgstore.ErrEventNotFound):
		s.writeResponse(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.log.Warnf("err during getting event: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusOK, event)
}

func (s *Server) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	var in models.EventInput
	if err = json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	in.ID = &id
	if errs := s.schema.Validate(in); errs != nil {
		s.writeResponse(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return
	}
	updated, err := s.app.UpdateEvent(r.Context(), id, in)
	switch {
	case errors.Is(err, pgstore.ErrEventNotFound):
		s.writeResponse(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.log.Warnf("err during updating event: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusOK, updated)
}

func (s *Server) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	deleted, err := s.app.DeleteEvent(r.Context(), id)
	switch {
	case errors.Is(err, pgstore.ErrEventNotFound):
		s.writeResponse(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.log.Warnf("err during deleting event: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.writeResponse(w, http.StatusOK, deleted)
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if x, ok := data.(error); ok {
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: x.Error()}); err != nil {
			s.log.Warnf("err during encoding error: %v", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warnf("err during encoding responce: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationResponse struct {
	Errors eventform.FieldErrors `json:"errors"`
}
