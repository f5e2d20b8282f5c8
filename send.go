package messenger

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/careermate/messenger/auth"
	"github.com/careermate/messenger/chat"
	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/store"
)

// Send appends outgoing messages for the authenticated user: a plain reply,
// or the new-conversation flow that prepends a job-context message.
func Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)
	logger.Info("send function called")

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
	logger.Info("incoming request", slog.String(bodyLogField, string(data)))

	var msg contract.SendRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error("error while decoding request", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if msg.To == "" {
		logger.Error("missing recipient")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	logger = logger.With(slog.String(recipientLogField, msg.To))
	ctx = log.WithLogger(ctx, logger)

	st, err := store.NewFirestore(ctx)
	if err != nil {
		logger.Error("error while opening store", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer st.Close()

	composer := chat.NewComposer(st, identity.Email)

	var ids []string
	if msg.NewThread {
		ids, err = composer.SendNew(ctx, msg.To, msg.Text, msg.Job)
	} else {
		var id string
		id, err = composer.SendReply(ctx, msg.To, msg.Text)
		if id != "" {
			ids = []string{id}
		}
	}
	if err != nil {
		logger.Error("error while sending message", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(contract.SendResponse{MessageIDs: ids}); err != nil {
		logger.Error("error while encoding response", slog.String(ErrorMsgLogField, err.Error()))
	}
}
