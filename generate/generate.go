package generate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/careermate/messenger/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	openAIModel = "gpt-4o-mini"

	urlLogField  = "url"
	bodyLogField = "body"
)

var openaiAPIKey = os.Getenv("OPENAI_API_KEY")

// loggingRoundTripper logs the outgoing generation request details
type loggingRoundTripper struct {
	rt http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := log.LoggerFromContext(req.Context())
	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
	}
	// reset req.Body so it can be read downstream
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	logger.Info("generation request",
		slog.String(urlLogField, req.URL.String()),
		slog.String(bodyLogField, string(bodyBytes)),
	)
	return lrt.rt.RoundTrip(req)
}

// Client is the text-generation collaborator: one prompt in, raw response
// text out, no schema guarantee.
type Client struct {
	llm llms.Model
}

func New() (*Client, error) {
	llm, err := openai.New(
		openai.WithModel(openAIModel),
		openai.WithToken(openaiAPIKey),
		openai.WithHTTPClient(
			&http.Client{
				Transport: &loggingRoundTripper{
					rt: http.DefaultTransport,
				},
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.llm.GenerateContent(
		ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithMaxTokens(2000),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no generation response")
	}
	return resp.Choices[0].Content, nil
}
