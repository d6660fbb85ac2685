package sheets

import (
	"strconv"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// RowPayload is the flat object the Apps Script appends as one row:
// Timestamp, Name, Email, WhatsApp, NPS, NPS Reason, Role, Challenges,
// Question, LGPD.
type RowPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	WhatsApp   string `json:"whatsapp"`
	NPS        string `json:"nps"`
	NPSReason  string `json:"npsReason"`
	Role       string `json:"role"`
	Challenges string `json:"challenges"`
	Question   string `json:"question"`
	LGPD       bool   `json:"lgpd"`
}

func NewRowPayload(lead *entity.LeadDraft) RowPayload {
	nps := ""
	if lead.Score != nil {
		nps = strconv.Itoa(*lead.Score)
	}
	return RowPayload{
		Name:       lead.Name,
		Email:      lead.Email,
		WhatsApp:   lead.Phone,
		NPS:        nps,
		NPSReason:  lead.ScoreComment,
		Role:       string(lead.Role),
		Challenges: lead.Challenges,
		Question:   lead.Question,
		LGPD:       lead.Consent,
	}
}
