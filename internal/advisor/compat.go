package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioURL = "http://localhost:1234/v1"

// compatClient talks to any OpenAI-compatible chat endpoint. Copilot and LM Studio
// both use it and differ only in base URL, key and headers.
type compatClient struct {
	provider string
	client   openai.Client
	model    string
	baseURL  string
}

func newCompatClient(provider, model, baseURL, key string, opts ...option.RequestOption) *compatClient {
	opts = append([]option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(key),
	}, opts...)
	return &compatClient{
		provider: provider,
		client:   openai.NewClient(opts...),
		model:    model,
		baseURL:  baseURL,
	}
}

// Chat sends one completion request and returns the first choice.
func (c *compatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", c.provider, errNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON is Chat followed by decoding the reply into result.
func (c *compatClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			params[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			params[i] = openai.AssistantMessage(msg.Content)
		default:
			params[i] = openai.UserMessage(msg.Content)
		}
	}
	return params
}

var errNoChoices = errors.New("model returned no choices")

// decodeJSON parses the JSON document in a model reply, tolerating code fences and
// surrounding prose.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing advice JSON: %w (reply: %s)", err, content)
	}
	return nil
}
