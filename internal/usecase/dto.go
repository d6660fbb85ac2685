package usecase

// CaptureLeadInput is the flat payload posted by the single-page form, the
// same shape the spreadsheet webhook receives.
type CaptureLeadInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	WhatsApp       string `json:"whatsapp"`
	NPS            any    `json:"nps"` // número ou string ("9")
	NPSReason      string `json:"npsReason"`
	Role           string `json:"role"`
	Challenges     string `json:"challenges"`
	Question       string `json:"question"`
	LGPD           bool   `json:"lgpd"`
	MarketingOptIn bool   `json:"marketingOptIn"`
}

type CaptureLeadOutput struct {
	ID          string `json:"id"`
	Success     bool   `json:"success"`
	DownloadURL string `json:"download_url,omitempty"`
	Msg         string `json:"msg"`
}
