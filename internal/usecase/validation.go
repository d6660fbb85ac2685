package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// Field names accepted by the form, as sent by the browser.
const (
	FieldName           = "name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldScore          = "score"
	FieldScoreComment   = "score_comment"
	FieldRole           = "role"
	FieldChallenges     = "challenges"
	FieldQuestion       = "question"
	FieldConsent        = "consent"
	FieldMarketingOptIn = "marketing_opt_in"
)

const (
	minNameLen  = 3
	minTextLen  = 10
	minPhoneLen = 14 // (XX) XXXX-XXXX, fixo
	maxPhoneLen = 15 // (XX) XXXXX-XXXX, celular
	minScore    = 0
	maxScore    = 10
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the outcome of validating a step or the whole form.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ErrorFor returns the error reported for field, if any.
func (r ValidationResult) ErrorFor(field string) (ValidationError, bool) {
	for _, e := range r.Errors {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}

func newResult(errs []ValidationError) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateStep applies the rules of a single step.
// Step 1: contact data, score and consent. Step 2: profile questions.
func ValidateStep(lead *entity.LeadDraft, step entity.Step) ValidationResult {
	switch step {
	case entity.StepContact:
		return newResult(validateContact(lead))
	case entity.StepProfile:
		return newResult(validateProfile(lead))
	default:
		return newResult([]ValidationError{{Field: "step", Code: "invalid", Message: "etapa inválida"}})
	}
}

// ValidateLead runs the full schema, used on submit.
func ValidateLead(lead *entity.LeadDraft) ValidationResult {
	errs := validateContact(lead)
	errs = append(errs, validateProfile(lead)...)
	return newResult(errs)
}

func validateContact(lead *entity.LeadDraft) []ValidationError {
	var errors []ValidationError

	if utf8.RuneCountInString(strings.TrimSpace(lead.Name)) < minNameLen {
		errors = append(errors, ValidationError{FieldName, "too_short", "Nome deve ter pelo menos 3 caracteres"})
	}

	if !isValidEmail(lead.Email) {
		errors = append(errors, ValidationError{FieldEmail, "invalid", "Email inválido"})
	}

	if n := utf8.RuneCountInString(lead.Phone); n < minPhoneLen || n > maxPhoneLen {
		errors = append(errors, ValidationError{FieldPhone, "invalid", "WhatsApp inválido"})
	}

	if lead.Score == nil {
		errors = append(errors, ValidationError{FieldScore, "required", "Por favor, selecione uma nota"})
	} else if *lead.Score < minScore || *lead.Score > maxScore {
		errors = append(errors, ValidationError{FieldScore, "out_of_range", "A nota deve estar entre 0 e 10"})
	}

	if !lead.Consent {
		errors = append(errors, ValidationError{FieldConsent, "required", "Você deve aceitar os termos de LGPD"})
	}

	return errors
}

func validateProfile(lead *entity.LeadDraft) []ValidationError {
	var errors []ValidationError

	if lead.Role == "" {
		errors = append(errors, ValidationError{FieldRole, "required", "Área de atuação é obrigatória"})
	} else if !lead.Role.Valid() {
		errors = append(errors, ValidationError{FieldRole, "invalid", "Área de atuação inválida"})
	}

	if utf8.RuneCountInString(strings.TrimSpace(lead.Challenges)) < minTextLen {
		errors = append(errors, ValidationError{FieldChallenges, "too_short", "Descreva seus principais desafios"})
	}

	if utf8.RuneCountInString(strings.TrimSpace(lead.Question)) < minTextLen {
		errors = append(errors, ValidationError{FieldQuestion, "too_short", "Descreva suas perguntas"})
	}

	return errors
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// rejeita "Nome <email>": só o endereço puro é aceito
	if addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
