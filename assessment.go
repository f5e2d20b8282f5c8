package messenger

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"text/template"

	"github.com/careermate/messenger/auth"
	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/generate"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/quiz"
	"github.com/careermate/messenger/store"
)

// Assessment generates a skill quiz for the authenticated user and responds
// with the persisted assessment id and its questions. Grading happens on
// the client against the same record.
func Assessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)
	logger.Info("assessment function called")

	if r.Method != http.MethodPost {
		logger.Error("invalid method: " + r.Method)
		http.Error(w, "Method Not Implemented", http.StatusNotImplemented)
		return
	}

	identity, err := auth.Authenticate(r)
	if err != nil {
		logger.Error("error while authenticating", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	logger = logger.With(slog.String(userIDLogField, identity.UID))

	data, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("error while reading request body", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var msg contract.AssessmentRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error("error while decoding request", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if msg.Skill == "" {
		logger.Error("missing skill")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	logger = logger.With(slog.String(skillLogField, msg.Skill))
	ctx = log.WithLogger(ctx, logger)

	quizPrompt, err := template.New("quiz.tmpl").ParseFiles("prompts/quiz.tmpl")
	if err != nil {
		logger.Error("error while parsing quizPrompt", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gen, err := generate.New()
	if err != nil {
		logger.Error("error while creating generation client", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	st, err := store.NewFirestore(ctx)
	if err != nil {
		logger.Error("error while opening store", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer st.Close()

	pipeline := quiz.NewPipeline(gen, st, quizPrompt)
	if err := pipeline.Generate(ctx, msg.Skill); err != nil {
		logger.Error("error while generating questions", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Question generation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := contract.AssessmentResponse{ID: pipeline.ID(), Questions: pipeline.Questions()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("error while encoding response", slog.String(ErrorMsgLogField, err.Error()))
	}
}
