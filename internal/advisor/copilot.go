package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go/option"
)

const (
	copilotTokenURL = "https://api.github.com/copilot_internal/v2/token"
	copilotBaseURL  = "https://api.githubcopilot.com"

	// DefaultModel is the copilot model used when none is configured.
	DefaultModel = "gpt-4o"

	userAgent = "Aula/1.0"
)

func newCopilotClient(model, githubToken string) (*compatClient, error) {
	if githubToken == "" {
		githubToken = ideToken(copilotConfigDirs())
	}
	if githubToken == "" {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN or AULA_ADVISOR_API_KEY, or sign in to Copilot in your editor", ErrNoCredentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	bearer, err := exchangeToken(ctx, http.DefaultClient, copilotTokenURL, githubToken)
	if err != nil {
		return nil, fmt.Errorf("copilot: %w", err)
	}

	return newCompatClient(ProviderCopilot, model, copilotBaseURL, bearer,
		option.WithHeader("Editor-Version", userAgent),
		option.WithHeader("Editor-Plugin-Version", userAgent),
		option.WithHeader("Copilot-Integration-Id", "vscode-chat"),
	), nil
}

// exchangeToken trades a GitHub token for a short-lived Copilot bearer token.
func exchangeToken(ctx context.Context, client *http.Client, url, githubToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+githubToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token exchange: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("token exchange: %w", ErrNoCredentials)
	}
	return out.Token, nil
}

// copilotConfigDirs lists where editor plugins keep the github-copilot folder.
func copilotConfigDirs() []string {
	var dirs []string
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		dirs = append(dirs, local)
	}
	return dirs
}

// ideToken returns the oauth token an editor sign-in left in hosts.json or
// apps.json under one of dirs, or "".
func ideToken(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range []string{"hosts.json", "apps.json"} {
			data, err := os.ReadFile(filepath.Join(dir, "github-copilot", name))
			if err != nil {
				continue
			}
			var hosts map[string]struct {
				OAuthToken string `json:"oauth_token"`
			}
			if json.Unmarshal(data, &hosts) != nil {
				continue
			}
			for host, entry := range hosts {
				if strings.Contains(host, "github.com") && entry.OAuthToken != "" {
					return entry.OAuthToken
				}
			}
		}
	}
	return ""
}
