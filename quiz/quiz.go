package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/store"
)

const errorMsgLogField = "errorMsg"

type State int

const (
	Idle State = iota
	Generating
	Ready
	Submitted
	Failed
)

// Generator produces raw text for a prompt. No output schema is guaranteed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline drives one assessment instance: generate questions, collect
// answers, grade, persist. Not safe for concurrent use; snapshot-style
// callers drive it from a single logical thread.
type Pipeline struct {
	gen    Generator
	store  store.Store
	repair Repairer
	prompt *template.Template

	state     State
	id        string
	skill     string
	questions []contract.Question
	answers   map[int]string
	score     int
	started   bool
}

type Option func(*Pipeline)

func WithRepairer(r Repairer) Option {
	return func(p *Pipeline) { p.repair = r }
}

func NewPipeline(gen Generator, s store.Store, prompt *template.Template, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:     gen,
		store:   s,
		repair:  RegexRepairer{},
		prompt:  prompt,
		answers: make(map[int]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type quizPayload struct {
	Questions []contract.Question `json:"questions"`
}

// Generate runs the generation leg exactly once per pipeline instance;
// re-entry is a no-op so a remounted view cannot issue a duplicate request.
// Any failure leaves the pipeline in Failed with no automatic retry.
func (p *Pipeline) Generate(ctx context.Context, skill string) error {
	if p.started {
		return nil
	}
	p.started = true
	p.skill = skill
	p.state = Generating

	var prompt strings.Builder
	if err := p.prompt.Execute(&prompt, struct{ Skill string }{Skill: skill}); err != nil {
		p.state = Failed
		return fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := p.gen.Generate(ctx, prompt.String())
	if err != nil {
		p.state = Failed
		return fmt.Errorf("generating questions: %w", err)
	}

	var payload quizPayload
	if err := json.Unmarshal([]byte(p.repair.Repair(raw)), &payload); err != nil {
		log.LoggerFromContext(ctx).Error("unparseable generation output",
			slog.String(errorMsgLogField, err.Error()))
		p.state = Failed
		return fmt.Errorf("parsing questions: %w", err)
	}
	if err := validateQuestions(payload.Questions); err != nil {
		p.state = Failed
		return err
	}

	id, err := p.store.Append(ctx, contract.AssessmentCollection, contract.Assessment{
		Skill:     skill,
		Questions: payload.Questions,
	})
	if err != nil {
		p.state = Failed
		return fmt.Errorf("saving assessment: %w", err)
	}

	p.id = id
	p.questions = payload.Questions
	p.state = Ready
	return nil
}

func validateQuestions(questions []contract.Question) error {
	if len(questions) == 0 {
		return errors.New("no questions in generation output")
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: needs at least two options", i)
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("question %d: correct answer is not among the options", i)
		}
	}
	return nil
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) ID() string { return p.id }

func (p *Pipeline) Skill() string { return p.skill }

func (p *Pipeline) Questions() []contract.Question {
	return append([]contract.Question(nil), p.questions...)
}

// Answer records the chosen option for a question index. Ignored unless
// the pipeline is Ready.
func (p *Pipeline) Answer(questionIndex int, option string) {
	if p.state != Ready {
		return
	}
	if questionIndex < 0 || questionIndex >= len(p.questions) {
		return
	}
	p.answers[questionIndex] = option
}

// IsAllAnswered reports whether every question has a recorded answer.
func (p *Pipeline) IsAllAnswered() bool {
	return len(p.questions) > 0 && len(p.answers) == len(p.questions)
}

// Score is only meaningful once the pipeline is Submitted.
func (p *Pipeline) Score() int { return p.score }

// Submit grades the answers and merges response and score into the stored
// assessment. Rejected silently until every question is answered. A
// persistence failure leaves the pipeline Ready so submission may be
// retried; nothing prevents a second successful submission from
// overwriting the score.
func (p *Pipeline) Submit(ctx context.Context) (int, error) {
	if p.state != Ready || !p.IsAllAnswered() {
		return 0, nil
	}

	score := 0
	response := make(map[string]string, len(p.answers))
	for i, q := range p.questions {
		if p.answers[i] == q.CorrectAnswer {
			score++
		}
		response[strconv.Itoa(i)] = p.answers[i]
	}

	err := p.store.Update(ctx, contract.AssessmentCollection, p.id, map[string]any{
		"response": response,
		"score":    score,
	})
	if err != nil {
		log.LoggerFromContext(ctx).Error("error while saving responses and score",
			slog.String(errorMsgLogField, err.Error()))
		return 0, err
	}

	p.score = score
	p.state = Submitted
	return score, nil
}
