package quiz

import (
	"context"
	"errors"
	"testing"
	"text/template"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quizPrompt = template.Must(template.New("quiz").Parse(
	"Generate 10 multiple choice questions related to {{.Skill}}.",
))

const threeQuestions = `{"questions": [
  {"question": "Q1", "options": ["A", "B"], "correctAnswer": "A"},
  {"question": "Q2", "options": ["A", "B"], "correctAnswer": "B"},
  {"question": "Q3", "options": ["C", "D"], "correctAnswer": "C"}
]}`

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.text, g.err
}

func readyPipeline(t *testing.T, st store.Store, raw string) *Pipeline {
	t.Helper()
	p := NewPipeline(&fakeGenerator{text: raw}, st, quizPrompt)
	require.NoError(t, p.Generate(context.Background(), "golang"))
	require.Equal(t, Ready, p.State())
	return p
}

func storedAssessment(t *testing.T, st *store.Memory, id string) contract.Assessment {
	t.Helper()
	docs, err := st.Documents(context.Background(), store.Query{Collection: contract.AssessmentCollection})
	require.NoError(t, err)
	for _, doc := range docs {
		if doc.ID() == id {
			var a contract.Assessment
			require.NoError(t, doc.DataTo(&a))
			return a
		}
	}
	t.Fatalf("assessment %s not found", id)
	return contract.Assessment{}
}

func TestGenerateParsesAndPersists(t *testing.T) {
	st := store.NewMemory()
	p := readyPipeline(t, st, threeQuestions)

	require.Len(t, p.Questions(), 3)
	require.NotEmpty(t, p.ID())
	assert.Equal(t, "golang", p.Skill())

	saved := storedAssessment(t, st, p.ID())
	assert.Equal(t, "golang", saved.Skill)
	assert.Len(t, saved.Questions, 3)
	assert.Equal(t, "A", saved.Questions[0].CorrectAnswer)
}

func TestGenerateRunsExactlyOnce(t *testing.T) {
	gen := &fakeGenerator{text: threeQuestions}
	p := NewPipeline(gen, store.NewMemory(), quizPrompt)

	require.NoError(t, p.Generate(context.Background(), "golang"))
	require.NoError(t, p.Generate(context.Background(), "golang"))
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateRepairsFencedOutput(t *testing.T) {
	st := store.NewMemory()
	p := readyPipeline(t, st, "```json\n"+threeQuestions+"\n```")
	assert.Len(t, p.Questions(), 3)
}

func TestGenerateFailureTransitions(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{
			name: "network failure",
			gen:  &fakeGenerator{err: errors.New("connection refused")},
		},
		{
			name: "unparseable even after repair",
			gen:  &fakeGenerator{text: "I cannot produce a quiz for that topic."},
		},
		{
			name: "correct answer not among options",
			gen:  &fakeGenerator{text: `{"questions": [{"question": "Q1", "options": ["A", "B"], "correctAnswer": "Z"}]}`},
		},
		{
			name: "too few options",
			gen:  &fakeGenerator{text: `{"questions": [{"question": "Q1", "options": ["A"], "correctAnswer": "A"}]}`},
		},
		{
			name: "no questions",
			gen:  &fakeGenerator{text: `{"questions": []}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemory()
			p := NewPipeline(tt.gen, st, quizPrompt)
			require.Error(t, p.Generate(context.Background(), "golang"))
			assert.Equal(t, Failed, p.State())

			// nothing half-parsed is persisted
			docs, err := st.Documents(context.Background(), store.Query{Collection: contract.AssessmentCollection})
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestIsAllAnswered(t *testing.T) {
	p := readyPipeline(t, store.NewMemory(), `{"questions": [
	  {"question": "Q1", "options": ["A", "B"], "correctAnswer": "A"},
	  {"question": "Q2", "options": ["A", "B"], "correctAnswer": "B"}
	]}`)

	assert.False(t, p.IsAllAnswered())
	p.Answer(0, "A")
	assert.False(t, p.IsAllAnswered())
	p.Answer(1, "B")
	assert.True(t, p.IsAllAnswered())
}

func TestAnswerIgnoresOutOfRangeIndexes(t *testing.T) {
	p := readyPipeline(t, store.NewMemory(), threeQuestions)
	p.Answer(-1, "A")
	p.Answer(3, "A")
	assert.False(t, p.IsAllAnswered())
}

func TestSubmitBlockedUntilAllAnswered(t *testing.T) {
	st := store.NewMemory()
	p := readyPipeline(t, st, threeQuestions)
	p.Answer(0, "A")

	score, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Equal(t, Ready, p.State())
	assert.Nil(t, storedAssessment(t, st, p.ID()).Response)
}

func TestSubmitScoresAndPersists(t *testing.T) {
	st := store.NewMemory()
	p := readyPipeline(t, st, threeQuestions)
	p.Answer(0, "A")
	p.Answer(1, "B")
	p.Answer(2, "D")

	score, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, score)
	assert.Equal(t, Submitted, p.State())
	assert.Equal(t, 2, p.Score())

	saved := storedAssessment(t, st, p.ID())
	assert.Equal(t, 2, saved.Score)
	assert.Equal(t, map[string]string{"0": "A", "1": "B", "2": "D"}, saved.Response)
}

type flakyUpdateStore struct {
	*store.Memory
	failures int
}

func (s *flakyUpdateStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("backend unavailable")
	}
	return s.Memory.Update(ctx, collection, id, fields)
}

func TestSubmitMayBeRetriedAfterPersistFailure(t *testing.T) {
	mem := store.NewMemory()
	st := &flakyUpdateStore{Memory: mem, failures: 1}
	p := readyPipeline(t, st, threeQuestions)
	p.Answer(0, "A")
	p.Answer(1, "B")
	p.Answer(2, "C")

	_, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, Ready, p.State())

	score, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, score)
	assert.Equal(t, Submitted, p.State())
}
