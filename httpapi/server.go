// Package httpapi exposes the room over HTTP with JSON bodies. The acting
// identity travels in the "User" header; everything else is semantics owned
// by the service layer.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"room-lab/domain"
	apperrors "room-lab/errors"
	"room-lab/services"
)

// userHeader carries the self-asserted identity of the caller.
const userHeader = "User"

type Server struct {
	service services.IRoomService
	log     *slog.Logger
}

func NewServer(service services.IRoomService, log *slog.Logger) *Server {
	return &Server{service: service, log: log}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/participants", s.handleListParticipants).Methods(http.MethodGet)
	router.HandleFunc("/participants", s.handleJoin).Methods(http.MethodPost)
	router.HandleFunc("/status", s.handleHeartbeat).Methods(http.MethodPost)
	router.HandleFunc("/messages/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/messages", s.handleListMessages).Methods(http.MethodGet)
	router.HandleFunc("/messages", s.handlePostMessage).Methods(http.MethodPost)
	router.HandleFunc("/messages/{id}", s.handleEditMessage).Methods(http.MethodPut)
	router.HandleFunc("/messages/{id}", s.handleDeleteMessage).Methods(http.MethodDelete)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "ok")
}

func (s *Server) handleListParticipants(w http.ResponseWriter, _ *http.Request) {
	participants, err := s.service.Participants()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toParticipantResponses(participants))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.service.Join(req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Heartbeat(r.Header.Get(userHeader)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.service.Messages(domain.ListMessagesQuery{
		Viewer: r.Header.Get(userHeader),
		Limit:  parseLimit(r.URL.Query().Get("limit")),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	stored, err := s.service.Post(domain.PostMessageCommand{
		From: r.Header.Get(userHeader),
		To:   req.To,
		Text: req.Text,
		Kind: req.Kind,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMessageResponse(stored))
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	updated, err := s.service.Edit(domain.EditMessageCommand{
		ID:    id,
		Actor: r.Header.Get(userHeader),
		To:    req.To,
		Text:  req.Text,
		Kind:  req.Kind,
	})
	if err != nil {
		// On edit a missing recipient is an input problem, not a conflict.
		if errors.Is(err, apperrors.ErrRecipientNotFound) {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponse(updated))
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}
	if err := s.service.Delete(r.Header.Get(userHeader), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if parsed := parseLimit(r.URL.Query().Get("limit")); parsed != nil {
		limit = *parsed
	}
	messages, err := s.service.SearchMessages(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// parseLimit turns the limit query value into an optional bound. Absent or
// non-numeric values mean unbounded.
func parseLimit(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// messageID parses the path id. Ids are opaque, so anything unparseable is
// simply a message that cannot exist.
func (s *Server) messageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperrors.ErrMessageNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, violationsResponse{
			Errors: []string{"request body must be valid JSON"},
		})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	if ve, ok := apperrors.AsValidation(err); ok {
		s.writeJSON(w, status, violationsResponse{Errors: ve.Violations})
		return
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response failed", "error", err)
	}
}
