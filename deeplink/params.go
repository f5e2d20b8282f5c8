package deeplink

import "net/url"

const (
	referenceParam = "reference"
	jobParam       = "job"
)

// Intent is a pending "open new conversation" request carried on a job
// application deep link. Parameter values are treated as plain strings.
type Intent struct {
	Recipient string
	JobTitle  string
}

// FromURL reads the recipient identity and job title query parameters.
// Returns nil when the link carries no recipient.
func FromURL(u *url.URL) *Intent {
	params := u.Query()
	recipient := params.Get(referenceParam)
	if recipient == "" {
		return nil
	}
	return &Intent{
		Recipient: recipient,
		JobTitle:  params.Get(jobParam),
	}
}
