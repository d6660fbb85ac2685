package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"accounting", RoleAccounting, true},
		{"  Tax-Law ", RoleTaxLaw, true},
		{"contabilidade", RoleAccounting, true},
		{"direito-tributario", RoleTaxLaw, true},
		{"gestao-fiscal", RoleFiscalManagement, true},
		{"empresario", RoleBusinessOwner, true},
		{"outro", RoleOther, true},
		{"", Role(""), false},
		{"astronaut", Role("astronaut"), false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
	}
}

func TestStepValid(t *testing.T) {
	assert.True(t, StepContact.Valid())
	assert.True(t, StepProfile.Valid())
	assert.False(t, Step(0).Valid())
	assert.False(t, Step(3).Valid())
}

func TestLeadDraftHasContact(t *testing.T) {
	assert.False(t, (&LeadDraft{}).HasContact())
	assert.True(t, (&LeadDraft{Phone: "(11"}).HasContact())
	assert.True(t, (&LeadDraft{Email: "a"}).HasContact())
	assert.False(t, (&LeadDraft{Role: RoleOther, Challenges: "x"}).HasContact())
}

// TestLeadDraftClone - o clone não compartilha ponteiros com o original
func TestLeadDraftClone(t *testing.T) {
	score := 7
	now := time.Now()
	orig := LeadDraft{Name: "Ana", Score: &score, CompletedAt: &now}

	c := orig.Clone()
	*c.Score = 3
	*c.CompletedAt = now.Add(time.Hour)

	assert.Equal(t, 7, *orig.Score)
	assert.Equal(t, now, *orig.CompletedAt)
	assert.Equal(t, "Ana", c.Name)
}
