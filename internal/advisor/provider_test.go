package advisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/javiermolinar/aula/internal/config"
)

func TestNewClient_LocalProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AdvisorConfig
		wantURL string
	}{
		{"ollama default url", config.AdvisorConfig{Provider: "ollama", Model: "llama3"}, defaultOllamaURL},
		{"ollama configured url", config.AdvisorConfig{Provider: "Ollama", Model: "llama3", BaseURL: "http://gpu-box:11434"}, "http://gpu-box:11434"},
		{"lmstudio default url", config.AdvisorConfig{Provider: "lmstudio", Model: "qwen2.5"}, defaultLMStudioURL},
		{"lm-studio alias", config.AdvisorConfig{Provider: " lm-studio ", Model: "qwen2.5", BaseURL: "http://lab:1234/v1"}, "http://lab:1234/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if err != nil {
				t.Fatalf("NewClient(%+v) error = %v", tt.cfg, err)
			}
			var got string
			switch c := client.(type) {
			case *ollamaClient:
				got = c.baseURL
			case *compatClient:
				got = c.baseURL
				if c.provider != ProviderLMStudio {
					t.Errorf("provider = %q, want lmstudio", c.provider)
				}
			default:
				t.Fatalf("unexpected client type %T", client)
			}
			if got != tt.wantURL {
				t.Errorf("baseURL = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func TestNewClient_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AdvisorConfig
		want error
	}{
		{"unknown provider", config.AdvisorConfig{Provider: "claude-desktop", Model: "x"}, ErrUnknownProvider},
		{"ollama without model", config.AdvisorConfig{Provider: "ollama"}, ErrModelRequired},
		{"lmstudio without model", config.AdvisorConfig{Provider: "lmstudio", Model: "  "}, ErrModelRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewClient error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewClient_CopilotWithoutCredentials(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("LOCALAPPDATA", "")

	_, err := NewClient(config.AdvisorConfig{Provider: "copilot"})
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("got %v, want ErrNoCredentials", err)
	}
}

func TestIDEToken(t *testing.T) {
	empty := t.TempDir()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "github-copilot"), 0o755); err != nil {
		t.Fatal(err)
	}
	hosts := `{"github.com": {"user": "registrar", "oauth_token": "gho_abc"}}`
	if err := os.WriteFile(filepath.Join(dir, "github-copilot", "apps.json"), []byte(hosts), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := ideToken([]string{empty, dir}); got != "gho_abc" {
		t.Errorf("ideToken = %q, want gho_abc", got)
	}
	if got := ideToken([]string{empty}); got != "" {
		t.Errorf("ideToken with no files = %q, want empty", got)
	}
}

func TestExchangeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token gho_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad credentials"))
			return
		}
		_, _ = w.Write([]byte(`{"token": "bearer-1", "expires_at": 1}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	got, err := exchangeToken(ctx, srv.Client(), srv.URL, "gho_abc")
	if err != nil {
		t.Fatalf("exchangeToken error = %v", err)
	}
	if got != "bearer-1" {
		t.Errorf("token = %q, want bearer-1", got)
	}

	if _, err := exchangeToken(ctx, srv.Client(), srv.URL, "wrong"); err == nil {
		t.Error("expected an error for a rejected token")
	}
}

func TestToLangChain_Roles(t *testing.T) {
	msgs := toLangChain([]Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "conflicts"},
		{Role: "assistant", Content: "ok"},
	})
	if len(msgs) != 3 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].Role != llms.ChatMessageTypeSystem || msgs[1].Role != llms.ChatMessageTypeHuman || msgs[2].Role != llms.ChatMessageTypeAI {
		t.Errorf("roles = %s %s %s", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
}
