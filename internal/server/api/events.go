package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/heropose/internal/store"
)

// DefaultEventLimit is used when the request has no limit parameter.
const DefaultEventLimit = 50

// EventsHandler serves the label change history.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates an EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Previous  string `json:"previous"`
	Theme     string `json:"theme"`
	Hands     int    `json:"hands"`
	CreatedAt string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

func toResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Label:     e.Label,
		Previous:  e.Previous,
		Theme:     e.Theme,
		Hands:     e.Hands,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ServeHTTP routes /api/events, /api/events/stats and /api/events/{id}.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case path == "stats":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stats(w)
	default:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, path)
	}
}

// list handles GET /api/events?limit=N, newest first.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	resp := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EventsHandler) get(w http.ResponseWriter, id string) {
	e, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(e))
}

func (h *EventsHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().Counts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, statsResponse{Total: total, Counts: counts})
}

func (h *EventsHandler) clear(w http.ResponseWriter) {
	n, err := h.store.Events().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear events")
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: n})
}
