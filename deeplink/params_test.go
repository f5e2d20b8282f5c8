package deeplink

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURL(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		expected *Intent
	}{
		{
			name:     "recipient and encoded job title",
			rawURL:   "https://app.example.com/dashboard/chat?reference=recruiter%40x.com&job=Software%20Engineer",
			expected: &Intent{Recipient: "recruiter@x.com", JobTitle: "Software Engineer"},
		},
		{
			name:     "recipient without job title",
			rawURL:   "https://app.example.com/dashboard/chat?reference=recruiter%40x.com",
			expected: &Intent{Recipient: "recruiter@x.com"},
		},
		{
			name:     "no recipient means no intent",
			rawURL:   "https://app.example.com/dashboard/chat?job=Engineer",
			expected: nil,
		},
		{
			name:     "no parameters",
			rawURL:   "https://app.example.com/dashboard/chat",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FromURL(u))
		})
	}
}
