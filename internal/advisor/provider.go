package advisor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/aula/internal/config"
)

// Providers accepted in the [advisor] section.
const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

var (
	ErrUnknownProvider = errors.New("unknown advisor provider")
	ErrModelRequired   = errors.New("advisor model is required")
	ErrNoCredentials   = errors.New("no advisor credentials")
)

// NewClient builds the client for the configured provider. An empty provider means
// copilot. Local providers fall back to their usual localhost address when BaseURL
// is empty.
func NewClient(cfg config.AdvisorConfig) (Client, error) {
	provider, err := normalizeProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)

	switch provider {
	case ProviderCopilot:
		if model == "" {
			model = DefaultModel
		}
		c, err := newCopilotClient(model, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOllama:
		if model == "" {
			return nil, fmt.Errorf("%w for %s", ErrModelRequired, provider)
		}
		c, err := newOllamaClient(model, firstNonEmpty(cfg.BaseURL, defaultOllamaURL))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		if model == "" {
			return nil, fmt.Errorf("%w for %s", ErrModelRequired, provider)
		}
		key := firstNonEmpty(cfg.APIKey, "lm-studio")
		return newCompatClient(provider, model, firstNonEmpty(cfg.BaseURL, defaultLMStudioURL), key), nil
	}
}

func normalizeProvider(name string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "", ProviderCopilot:
		return ProviderCopilot, nil
	case ProviderOllama:
		return ProviderOllama, nil
	case ProviderLMStudio, "lm-studio":
		return ProviderLMStudio, nil
	default:
		return "", fmt.Errorf("%w %q (want copilot, ollama or lmstudio)", ErrUnknownProvider, name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
