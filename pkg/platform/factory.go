package platform

import (
	"errors"
	"fmt"

	"github.com/mergegate/mergegate/pkg/config"
	"github.com/mergegate/mergegate/pkg/git"
	ghclient "github.com/mergegate/mergegate/pkg/github"
	"github.com/mergegate/mergegate/pkg/gitlab"
	"github.com/sgaunet/bullets"
)

// errUnsupportedPlatform is returned when the detected platform has no provider.
var errUnsupportedPlatform = errors.New("unsupported platform")

// NewProvider returns the Provider for the detected platform.
//
//nolint:ireturn // The implementation depends on runtime platform detection.
func NewProvider(p git.Platform, cfg *config.Config, log *bullets.Logger) (Provider, error) {
	switch p {
	case git.PlatformGitLab:
		return newGitLabProvider(cfg.GitLab, log)
	case git.PlatformGitHub:
		return newGitHubProvider(cfg.GitHub, log)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedPlatform, p)
	}
}

//nolint:ireturn // see NewProvider
func newGitLabProvider(cfg config.GitLabConfig, log *bullets.Logger) (Provider, error) {
	client, err := gitlab.NewClient(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	client.SetLogger(log)
	return NewGitLabAdapter(client, log), nil
}

//nolint:ireturn // see NewProvider
func newGitHubProvider(cfg config.GitHubConfig, log *bullets.Logger) (Provider, error) {
	client, err := ghclient.NewClient(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	client.SetLogger(log)
	return NewGitHubAdapter(client, log), nil
}
