package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// FormSessions is the session store seen by the form endpoints.
type FormSessions interface {
	Open() (string, *usecase.FormController)
	Get(id string) (*usecase.FormController, error)
}

type FormHandler struct {
	Sessions    FormSessions
	DownloadURL string
}

func NewFormHandler(sessions FormSessions, downloadURL string) *FormHandler {
	return &FormHandler{Sessions: sessions, DownloadURL: downloadURL}
}

type FormResponse struct {
	SessionID string `json:"session_id"`
	usecase.FormView
	DownloadURL string `json:"download_url,omitempty"`
}

type UpdateFieldsRequest struct {
	Fields map[string]any `json:"fields"`
}

type SubmitResponse struct {
	Success     bool   `json:"success"`
	ID          string `json:"id,omitempty"`
	DownloadURL string `json:"download_url"`
}

func (h *FormHandler) Routes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.UpdateFields)
	r.Post("/{id}/validate", h.ValidateStep)
	r.Post("/{id}/next", h.Next)
	r.Post("/{id}/back", h.Back)
	r.Post("/{id}/submit", h.Submit)
}

// Open handles POST /forms.
func (h *FormHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, c := h.Sessions.Open()
	writeJSON(w, http.StatusCreated, h.response(id, c))
}

// Get handles GET /forms/{id}.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.response(id, c))
}

// UpdateFields handles PATCH /forms/{id}. Fields are applied in name order
// and the first rejected one stops the batch.
func (h *FormHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var req UpdateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}
	if len(req.Fields) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "fields is required")
		return
	}

	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.UpdateField(name, fieldValue(req.Fields[name])); err != nil {
			writeUsecaseError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.response(id, c))
}

// ValidateStep handles POST /forms/{id}/validate?step=N.
func (h *FormHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}

	n, err := strconv.Atoi(r.URL.Query().Get("step"))
	step := entity.Step(n)
	if err != nil || !step.Valid() {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_STEP", "step deve ser 1 ou 2")
		return
	}

	writeJSON(w, http.StatusOK, c.ValidateStep(step))
}

// Next handles POST /forms/{id}/next.
func (h *FormHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := c.AdvanceStep()
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	if !result.Valid {
		writeValidationError(w, result)
		return
	}
	writeJSON(w, http.StatusOK, h.response(id, c))
}

// Back handles POST /forms/{id}/back.
func (h *FormHandler) Back(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := c.RetreatStep(); err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response(id, c))
}

// Submit handles POST /forms/{id}/submit.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := c.Submit(r.Context())
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	if !result.Valid {
		writeValidationError(w, result)
		return
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		Success:     true,
		ID:          c.Snapshot().ID,
		DownloadURL: h.DownloadURL,
	})
}

func (h *FormHandler) controller(w http.ResponseWriter, r *http.Request) (string, *usecase.FormController, bool) {
	id := chi.URLParam(r, "id")
	c, err := h.Sessions.Get(id)
	if err != nil {
		writeUsecaseError(w, err)
		return "", nil, false
	}
	return id, c, true
}

func (h *FormHandler) response(id string, c *usecase.FormController) FormResponse {
	resp := FormResponse{SessionID: id, FormView: c.View()}
	if resp.State == usecase.StateSuccess {
		resp.DownloadURL = h.DownloadURL
	}
	return resp
}

// fieldValue turns a JSON value into the string form the controller parses.
func fieldValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
