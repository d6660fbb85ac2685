package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("⚠️ erro ao escrever resposta", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, result usecase.ValidationResult) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   usecase.CodeValidation,
		Message: "Verifique os campos destacados",
		Fields:  result.Errors,
	})
}

// writeUsecaseError maps domain and technical errors to HTTP statuses.
func writeUsecaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeSessionNotFound:
			status = http.StatusNotFound
		case usecase.CodeFormCompleted:
			status = http.StatusConflict
		case usecase.CodeValidation:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		slog.Error("❌ erro técnico", "code", te.Code, "error", te.Err)
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, "Erro interno, tente novamente")
		return
	}

	slog.Error("❌ erro inesperado", "error", err)
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno, tente novamente")
}
