package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hirelab/vacancyload/internal/model"
	"github.com/hirelab/vacancyload/internal/session"
	"github.com/hirelab/vacancyload/internal/store"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	store     *store.Store
	sessions  *session.Registry
	logger    *slog.Logger
	startedAt time.Time
	version   string
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(st *store.Store, sessions *session.Registry, logger *slog.Logger, version string) *Handlers {
	return &Handlers{
		store:     st,
		sessions:  sessions,
		logger:    logger,
		startedAt: time.Now(),
		version:   version,
	}
}

// HandleSignIn handles POST /auth/signin. The token returned is the one
// minted for the identity at startup.
func (h *Handlers) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	token, err := h.sessions.SignIn(req.Identity, req.Secret)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			// The mock reports unknown users as not-found, matching the
			// service it stands in for.
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "user not found")
			return
		}
		h.logger.Error("sign-in failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, model.SignInResponse{Token: token})
}

// HandleSignUp handles POST /auth/signup. Registration is not part of the
// mock; the route exists so the gate's anonymous-entry rule is observable.
func (h *Handlers) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotImplemented, model.ErrCodeUnimplemented, "sign-up is not supported by the mock server")
}

// HandleCreateVacancy handles POST /v1/vacancies.
func (h *Handlers) HandleCreateVacancy(w http.ResponseWriter, r *http.Request) {
	var req model.CreateVacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if err := model.ValidateCreate(req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	v, err := h.store.Create(req.Title, req.Description, req.Division, req.Country)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, v)
}

// HandleGetVacancy handles GET /v1/vacancies/{id}.
func (h *Handlers) HandleGetVacancy(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// HandleListVacancies handles GET /v1/vacancies?page=&limit=.
//
// The response is newline-delimited JSON, one vacancy per line, flushed
// after every record so the client observes incremental delivery. An
// out-of-range page is an empty 200 response, never an error.
func (h *Handlers) HandleListVacancies(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	for v := range h.store.List(page, limit) {
		if err := enc.Encode(v); err != nil {
			// Client went away mid-stream; nothing useful left to do.
			h.logger.Debug("list stream aborted", "error", err, "request_id", RequestIDFromContext(r.Context()))
			return
		}
		_ = rc.Flush()
	}
}

// HandleUpdateVacancy handles PUT /v1/vacancies/{id}.
func (h *Handlers) HandleUpdateVacancy(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateVacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if err := model.ValidateUpdate(req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	v, err := h.store.Update(r.PathValue("id"), req.Title, req.Description, req.Division, req.Country, req.Views)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// HandleDeleteVacancy handles DELETE /v1/vacancies/{id}.
func (h *Handlers) HandleDeleteVacancy(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, model.DeleteVacancyResponse{Success: ok})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Vacancies: h.store.Len(),
		Uptime:    int64(time.Since(h.startedAt).Seconds()),
	})
}

// writeStoreError maps store failures to their HTTP representations. The
// store error text carries the offending identifier, so it is forwarded
// verbatim.
func (h *Handlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, err.Error())
	case errors.Is(err, store.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, model.ErrCodeAlreadyExists, err.Error())
	default:
		h.logger.Error("store error", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
