package contact

// Reasons a visitor can pick on the contact form
const (
	ReasonHire          = "hire"
	ReasonCollaboration = "collaboration"
	ReasonQuestion      = "question"
	ReasonHello         = "hello"
)

var reasonLabels = map[string]string{
	ReasonHire:          "Hiring / Job Opportunity",
	ReasonCollaboration: "Project Collaboration",
	ReasonQuestion:      "General Question",
	ReasonHello:         "Just Saying Hello",
}

// ReasonLabel returns the human readable label for a reason code.
func ReasonLabel(reason string) string {
	if label, ok := reasonLabels[reason]; ok {
		return label
	}
	return reason
}

// ContactRequest represents a raw contact form submission
type ContactRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=50,personname"`
	Email          string `json:"email" validate:"required,max=100,email"`
	Reason         string `json:"reason" validate:"required,oneof=hire collaboration question hello"`
	Message        string `json:"message" validate:"required,min=10,max=1000"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// ContactResponse represents the response after submitting a contact form
type ContactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	EmailID   string `json:"emailId,omitempty"`
	ETA       string `json:"eta"`
}

// StatusResponse is returned by the liveness probe on the contact route
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
