package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexRepairer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]any
	}{
		{
			name:     "strips markdown code fences",
			input:    "```json\n{\"skill\": \"go\"}\n```",
			expected: map[string]any{"skill": "go"},
		},
		{
			name:     "unescapes literal escape sequences",
			input:    `{\"skill\":\t\"go\"}`,
			expected: map[string]any{"skill": "go"},
		},
		{
			name:     "normalizes windows and old mac line breaks",
			input:    "{\r\n\"skill\": \"go\"\r}",
			expected: map[string]any{"skill": "go"},
		},
		{
			name:     "quotes bareword object keys",
			input:    `{skill: "go", level: "senior"}`,
			expected: map[string]any{"skill": "go", "level": "senior"},
		},
		{
			name:     "quotes single-quoted object keys",
			input:    `{'skill': "go"}`,
			expected: map[string]any{"skill": "go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := RegexRepairer{}.Repair(tt.input)
			var parsed map[string]any
			require.NoError(t, json.Unmarshal([]byte(repaired), &parsed), "repaired text: %q", repaired)
			assert.Equal(t, tt.expected, parsed)
		})
	}
}

func TestRepairIsIdempotentOnWellFormedJSON(t *testing.T) {
	valid := `{"questions": [{"question": "What does a goroutine run on", "options": ["thread", "green thread"], "correctAnswer": "green thread"}]}`

	var direct, repaired any
	require.NoError(t, json.Unmarshal([]byte(valid), &direct))
	require.NoError(t, json.Unmarshal([]byte(RegexRepairer{}.Repair(valid)), &repaired))
	assert.Equal(t, direct, repaired)
}
