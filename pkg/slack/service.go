package slack

import (
	"context"
	"log/slog"
	"time"

	"github.com/vulnsentinel/vulnsentinel/pkg/notifier"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token        string
	Channel      string
	DashboardURL string
}

// Service handles Slack notification delivery for client-vuln alerts and
// implements notifier.Channel. Nil-safe: Notify is a no-op when the service
// is nil, so the Notification Engine can hold a possibly-unconfigured
// channel without a nil check at every call site.
type Service struct {
	client       *Client
	dashboardURL string
	logger       *slog.Logger
}

// NewService creates a new Slack notification service. Returns nil if Token
// or Channel is empty — an unconfigured Slack channel is not an error, it's
// a deployment where notifications go elsewhere.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client:       NewClient(cfg.Token, cfg.Channel),
		dashboardURL: cfg.DashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client, dashboardURL string) *Service {
	return &Service{
		client:       client,
		dashboardURL: dashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// Notify implements notifier.Channel. It threads onto any prior message for
// the same client-vuln (found by fingerprint = client_vuln ID) so repeated
// status-change notifications for one vulnerability collapse into a single
// thread instead of spamming the channel.
func (s *Service) Notify(ctx context.Context, alert notifier.Alert) error {
	if s == nil {
		return nil
	}

	threadTS, err := s.client.FindMessageByFingerprint(ctx, alert.ClientVulnID)
	if err != nil {
		s.logger.Warn("failed to find slack thread for client vuln", "client_vuln_id", alert.ClientVulnID, "error", err)
	}

	blocks := BuildVulnerabilityMessage(alert)
	if err := s.client.PostMessage(ctx, blocks, threadTS, 10*time.Second); err != nil {
		return err
	}
	return nil
}
