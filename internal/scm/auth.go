package scm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/professor/internal/config"
)

// CreateInstallationClient creates a GitHub client authenticated as a specific
// App installation. The installation token is minted via the App JWT transport
// and wrapped in a plain oauth2 client.
func CreateInstallationClient(ctx context.Context, cfg *config.Config, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(cfg.GitHubPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHubPrivateKeyPath, err)
	}

	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.GitHubAppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)

	return NewClient(github.NewClient(tc), logger), nil
}

// ClientFactory builds an authenticated Client for an installation. The review
// job uses it so tests can substitute a fake without touching the network.
type ClientFactory func(ctx context.Context, installationID int64) (Client, error)

// NewInstallationClientFactory returns a ClientFactory bound to the app
// configuration.
func NewInstallationClientFactory(cfg *config.Config, logger *slog.Logger) ClientFactory {
	return func(ctx context.Context, installationID int64) (Client, error) {
		return CreateInstallationClient(ctx, cfg, installationID, logger)
	}
}
