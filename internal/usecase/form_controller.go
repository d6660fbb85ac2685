package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type FormState string

const (
	StateStep1   FormState = "STEP_1"
	StateStep2   FormState = "STEP_2"
	StateSuccess FormState = "SUCCESS"
)

const (
	DefaultAutosaveDelay = 2 * time.Second
	DefaultSaveTimeout   = 10 * time.Second
)

// campos que disparam o auto-save
var autosaveFields = map[string]bool{
	FieldName:       true,
	FieldEmail:      true,
	FieldPhone:      true,
	FieldScore:      true,
	FieldRole:       true,
	FieldChallenges: true,
	FieldQuestion:   true,
}

type ControllerOptions struct {
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	AfterFunc     AfterFunc
	Now           func() time.Time
}

// FormController owns one two-step form: field values, current step, the
// last validation result and the pending auto-save.
type FormController struct {
	mu          sync.Mutex
	draft       entity.LeadDraft
	state       FormState
	lastResult  ValidationResult
	persister   Autosaver
	debounce    *Debouncer
	saveTimeout time.Duration
	now         func() time.Time
}

// FormView is a read-only copy of the controller state.
type FormView struct {
	State           FormState         `json:"state"`
	Step            entity.Step       `json:"step"`
	Lead            entity.LeadDraft  `json:"lead"`
	Errors          []ValidationError `json:"errors,omitempty"`
	AutosavePending bool              `json:"autosave_pending"`
}

func NewFormController(persister Autosaver, opts ControllerOptions) *FormController {
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now().UTC()
	return &FormController{
		draft: entity.LeadDraft{
			Step:      entity.StepContact,
			Status:    entity.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		state:       StateStep1,
		lastResult:  ValidationResult{Valid: true},
		persister:   persister,
		debounce:    NewDebouncer(opts.AutosaveDelay, opts.AfterFunc),
		saveTimeout: opts.SaveTimeout,
		now:         opts.Now,
	}
}

// UpdateField sets one field. The stored validation result is left alone
// until a step is validated again.
func (c *FormController) UpdateField(field, value string) error {
	c.mu.Lock()
	if c.state == StateSuccess {
		c.mu.Unlock()
		return ErrFormCompleted
	}
	if err := c.setField(field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.draft.UpdatedAt = c.now().UTC()
	c.mu.Unlock()

	if autosaveFields[field] {
		c.scheduleAutosave()
	}
	return nil
}

func (c *FormController) setField(field, value string) error {
	d := &c.draft
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = strings.TrimSpace(value)
	case FieldPhone:
		d.Phone = entity.FormatPhone(value)
	case FieldScore:
		if strings.TrimSpace(value) == "" {
			d.Score = nil
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < minScore || n > maxScore {
			return invalidValue(field, value)
		}
		d.Score = &n
	case FieldScoreComment:
		d.ScoreComment = value
	case FieldRole:
		role, _ := entity.ParseRole(value)
		d.Role = role
	case FieldChallenges:
		d.Challenges = value
	case FieldQuestion:
		d.Question = value
	case FieldConsent:
		b, err := parseFlag(value)
		if err != nil {
			return invalidValue(field, value)
		}
		d.Consent = b
	case FieldMarketingOptIn:
		b, err := parseFlag(value)
		if err != nil {
			return invalidValue(field, value)
		}
		d.MarketingOptIn = b
	default:
		return &DomainError{
			Code:    CodeUnknownField,
			Message: fmt.Sprintf("campo desconhecido: %s", field),
		}
	}
	return nil
}

// ValidateStep runs the rules of step and keeps the result as the one
// surfaced to the user.
func (c *FormController) ValidateStep(step entity.Step) ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastResult = ValidateStep(&c.draft, step)
	return c.lastResult
}

// AdvanceStep moves to step 2 only when the step-1 fields validate.
func (c *FormController) AdvanceStep() (ValidationResult, error) {
	c.mu.Lock()
	if c.state == StateSuccess {
		c.mu.Unlock()
		return ValidationResult{}, ErrFormCompleted
	}

	result := ValidateStep(&c.draft, entity.StepContact)
	c.lastResult = result
	if result.Valid {
		c.draft.Step = entity.StepProfile
		c.state = StateStep2
		c.draft.UpdatedAt = c.now().UTC()
	}
	c.mu.Unlock()

	if result.Valid {
		c.scheduleAutosave()
	}
	return result, nil
}

// RetreatStep always goes back to step 1.
func (c *FormController) RetreatStep() error {
	c.mu.Lock()
	if c.state == StateSuccess {
		c.mu.Unlock()
		return ErrFormCompleted
	}
	c.draft.Step = entity.StepContact
	c.state = StateStep1
	c.draft.UpdatedAt = c.now().UTC()
	c.mu.Unlock()

	c.scheduleAutosave()
	return nil
}

// Submit validates the whole form and, when it passes, finalizes the record
// and moves to Success. A failed save does not keep the lead from Success.
// Persistence runs outside the lock, bounded by the save timeout.
func (c *FormController) Submit(ctx context.Context) (ValidationResult, error) {
	c.mu.Lock()
	if c.state == StateSuccess {
		c.mu.Unlock()
		return ValidationResult{}, ErrFormCompleted
	}

	result := ValidateLead(&c.draft)
	c.lastResult = result
	if !result.Valid {
		c.mu.Unlock()
		return result, nil
	}

	pending := c.debounce.Cancel()
	draft := c.snapshotLocked()

	now := c.now().UTC()
	c.draft.Completed = true
	c.draft.CompletedAt = &now
	c.draft.UpdatedAt = now
	c.draft.Status = entity.StatusCompleted
	final := c.draft.Clone()

	// Success já aqui: auto-saves atrasados e novos envios param no estado
	c.state = StateSuccess
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.saveTimeout)
	defer cancel()

	// primeiro auto-save ainda no debounce: cria o registro antes de finalizar
	if pending && c.persister.RecordID() == "" {
		c.persister.Autosave(ctx, draft)
	}
	c.persister.Finalize(ctx, final)

	c.mu.Lock()
	c.draft.ID = c.persister.RecordID()
	c.mu.Unlock()
	return result, nil
}

func (c *FormController) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the draft with the current record id.
func (c *FormController) Snapshot() entity.LeadDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *FormController) snapshotLocked() entity.LeadDraft {
	s := c.draft.Clone()
	s.ID = c.persister.RecordID()
	return s
}

func (c *FormController) View() FormView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return FormView{
		State:           c.state,
		Step:            c.draft.Step,
		Lead:            c.snapshotLocked(),
		Errors:          c.lastResult.Errors,
		AutosavePending: c.debounce.Pending(),
	}
}

// FlushAutosave runs a pending auto-save right away, e.g. on shutdown.
func (c *FormController) FlushAutosave() {
	if c.debounce.Cancel() {
		c.autosave()
	}
}

// Close drops a pending auto-save without running it.
func (c *FormController) Close() {
	c.debounce.Cancel()
}

func (c *FormController) scheduleAutosave() {
	c.debounce.Trigger(c.autosave)
}

func (c *FormController) autosave() {
	c.mu.Lock()
	if c.state == StateSuccess {
		c.mu.Unlock()
		return
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()
	c.persister.Autosave(ctx, snapshot)
}

func invalidValue(field, value string) error {
	return &DomainError{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("valor inválido para %s: %q", field, value),
	}
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes", "sim":
		return true, nil
	case "", "off", "no", "nao", "não":
		return false, nil
	}
	return strconv.ParseBool(value)
}
