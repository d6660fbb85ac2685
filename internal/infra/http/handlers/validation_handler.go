package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// ValidationHandler checks a posted lead without storing it, so the
// single-page form can show field errors before the final POST /leads.
type ValidationHandler struct{}

func NewValidationHandler() *ValidationHandler {
	return &ValidationHandler{}
}

// Handle serves POST /leads/validate. The body is the flat capture payload;
// step=1 or step=2 limits the rules to one step.
func (h *ValidationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CaptureLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	lead, err := usecase.DraftFromInput(input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	var result usecase.ValidationResult
	switch r.URL.Query().Get("step") {
	case "":
		result = usecase.ValidateLead(lead)
	case "1":
		result = usecase.ValidateStep(lead, entity.StepContact)
	case "2":
		result = usecase.ValidateStep(lead, entity.StepProfile)
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_STEP", "step deve ser 1 ou 2")
		return
	}

	if !result.Valid {
		writeValidationError(w, result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
