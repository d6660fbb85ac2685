package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrLeadNotFound = errors.New("lead not found")

// Step do formulário: só existem as etapas 1 e 2.
type Step int

const (
	StepContact Step = 1
	StepProfile Step = 2
)

func (s Step) Valid() bool {
	return s == StepContact || s == StepProfile
}

const (
	StatusDraft     = "DRAFT"
	StatusCompleted = "COMPLETED"
	StatusAbandoned = "ABANDONED"
)

type Role string

const (
	RoleAccounting       Role = "accounting"
	RoleTaxLaw           Role = "tax-law"
	RoleFiscalManagement Role = "fiscal-management"
	RoleRealEstate       Role = "real-estate"
	RoleFinance          Role = "finance"
	RoleBusinessOwner    Role = "business-owner"
	RoleStudent          Role = "student"
	RoleOther            Role = "other"
)

// Roles lists the accepted roles in display order.
var Roles = []Role{
	RoleAccounting,
	RoleTaxLaw,
	RoleFiscalManagement,
	RoleRealEstate,
	RoleFinance,
	RoleBusinessOwner,
	RoleStudent,
	RoleOther,
}

// slugs usados pela landing page original
var legacyRoles = map[string]Role{
	"contabilidade":      RoleAccounting,
	"direito-tributario": RoleTaxLaw,
	"gestao-fiscal":      RoleFiscalManagement,
	"imobiliario":        RoleRealEstate,
	"financeiro":         RoleFinance,
	"empresario":         RoleBusinessOwner,
	"estudante":          RoleStudent,
	"outro":              RoleOther,
}

// ParseRole normalizes s to a known Role. Unknown values are returned as-is
// with ok=false so the caller can still keep what the user typed.
func ParseRole(s string) (Role, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if r, ok := legacyRoles[v]; ok {
		return r, true
	}
	r := Role(v)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// LeadDraft is the in-progress lead record mirrored to the store.
type LeadDraft struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Score          *int       `json:"score"`
	ScoreComment   string     `json:"score_comment,omitempty"`
	Role           Role       `json:"role"`
	Challenges     string     `json:"challenges"`
	Question       string     `json:"question"`
	Consent        bool       `json:"consent"`
	MarketingOptIn bool       `json:"marketing_opt_in"`
	Step           Step       `json:"step"`
	Status         string     `json:"status"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasContact reports whether any of the contact fields was filled in.
// Drafts without contact data are never persisted.
func (l *LeadDraft) HasContact() bool {
	return l.Name != "" || l.Email != "" || l.Phone != ""
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (l LeadDraft) Clone() LeadDraft {
	if l.Score != nil {
		s := *l.Score
		l.Score = &s
	}
	if l.CompletedAt != nil {
		t := *l.CompletedAt
		l.CompletedAt = &t
	}
	return l
}

// LeadRepository is the remote record store: create assigns the id,
// update addresses an existing record by id.
type LeadRepository interface {
	Create(ctx context.Context, lead *LeadDraft) (string, error)
	Update(ctx context.Context, id string, lead *LeadDraft) error
}

// DraftAbandoner marks drafts that stopped receiving updates.
type DraftAbandoner interface {
	MarkAbandoned(ctx context.Context, idleSince time.Time) (int, error)
}
