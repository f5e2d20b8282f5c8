package contract

// SendRequest starts or continues a conversation. NewThread selects the
// new-conversation flow, which prepends a job-context message when Job is
// set.
type SendRequest struct {
	To        string `json:"to"`
	Text      string `json:"text"`
	Job       string `json:"job,omitempty"`
	NewThread bool   `json:"new_thread,omitempty"`
}

type SendResponse struct {
	MessageIDs []string `json:"message_ids"`
}

type AssessmentRequest struct {
	Skill string `json:"skill"`
}

type AssessmentResponse struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}
