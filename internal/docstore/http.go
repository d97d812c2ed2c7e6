package docstore

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reelviewapp/reelview-server/internal/errors"
)

// Handler exposes a Store over HTTP with the wire shapes the metrics
// client speaks. Routes follow the document-store convention:
//
//	GET    /v1/databases/{db}/collections/{col}/documents
//	POST   /v1/databases/{db}/collections/{col}/documents
//	GET    /v1/databases/{db}/collections/{col}/documents/{id}
//	PATCH  /v1/databases/{db}/collections/{col}/documents/{id}
//	DELETE /v1/databases/{db}/collections/{col}/documents/{id}
type Handler struct {
	store  *Store
	logger *slog.Logger
	// apiKey, when set, must match the X-Appwrite-Key request header.
	apiKey string
}

// NewHandler creates the HTTP surface for a store.
func NewHandler(store *Store, apiKey string, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger, apiKey: apiKey}
}

// Router builds the chi router with the standard middleware chain.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/databases/{databaseID}/collections/{collectionID}/documents", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/", h.listDocuments)
		r.Post("/", h.createDocument)
		r.Get("/{documentID}", h.getDocument)
		r.Patch("/{documentID}", h.updateDocument)
		r.Delete("/{documentID}", h.deleteDocument)
	})

	return r
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Appwrite-Project") == "" {
			h.writeError(w, http.StatusUnauthorized, "missing project header")
			return
		}
		if h.apiKey != "" && r.Header.Get("X-Appwrite-Key") != h.apiKey {
			h.writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type listResponse struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

type documentPayload struct {
	DocumentID string         `json:"documentId"`
	Data       map[string]any `json:"data"`
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	queries, err := ParseQueries(r.URL.Query()["queries[]"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, docs, err := h.store.List(r.Context(),
		chi.URLParam(r, "databaseID"), chi.URLParam(r, "collectionID"), queries)
	if err != nil {
		h.serveError(w, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	h.writeJSON(w, http.StatusOK, listResponse{Total: total, Documents: docs})
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var payload documentPayload
	if err := json.UnmarshalRead(r.Body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	doc, err := h.store.Create(r.Context(),
		chi.URLParam(r, "databaseID"), chi.URLParam(r, "collectionID"),
		payload.DocumentID, payload.Data)
	if err != nil {
		h.serveError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(),
		chi.URLParam(r, "databaseID"), chi.URLParam(r, "collectionID"),
		chi.URLParam(r, "documentID"))
	if err != nil {
		h.serveError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	var payload documentPayload
	if err := json.UnmarshalRead(r.Body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	doc, err := h.store.Update(r.Context(),
		chi.URLParam(r, "databaseID"), chi.URLParam(r, "collectionID"),
		chi.URLParam(r, "documentID"), payload.Data)
	if err != nil {
		h.serveError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(),
		chi.URLParam(r, "databaseID"), chi.URLParam(r, "collectionID"),
		chi.URLParam(r, "documentID"))
	if err != nil {
		h.serveError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveError(w http.ResponseWriter, err error) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		h.writeError(w, domainErr.HTTPStatus(), domainErr.Message)
		return
	}
	h.logger.Error("document store request failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{
		"message": message,
		"code":    status,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
