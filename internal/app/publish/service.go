package publish

import (
	"context"
	"strings"

	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

const (
	PlatformFacebook = "facebook"
	PlatformTikTok   = "tiktok"
)

const (
	msgFacebookNotConfigured = "Facebook auto publish is not configured. Add FACEBOOK_PAGE_ID and FACEBOOK_PAGE_ACCESS_TOKEN."
	msgTikTokUnsupported     = "TikTok auto publish is not configured. TikTok Content Posting API requires approved OAuth app and media upload workflow."
)

// Service forwards finished text to a social platform.
type Service struct {
	facebook domain.Publisher
	metrics  *observability.Metrics
}

// NewService creates a publish service. facebook may be nil when the page
// credentials are not configured.
func NewService(facebook domain.Publisher, metrics *observability.Metrics) *Service {
	return &Service{facebook: facebook, metrics: metrics}
}

type Input struct {
	Platform string
	Text     string
}

type Output struct {
	Platform string
	ID       string
}

// Publish sends text to the named platform. Every attempt is counted,
// rejected ones included.
func (s *Service) Publish(ctx context.Context, in Input) (out *Output, err error) {
	platform := strings.ToLower(strings.TrimSpace(in.Platform))
	text := strings.TrimSpace(in.Text)

	defer func() { s.metrics.Publish(platformLabel(platform), err) }()

	if platform == "" {
		return nil, &domain.ValidationError{Message: "platform is required"}
	}
	if text == "" {
		return nil, &domain.ValidationError{Message: "text is required"}
	}

	log := observability.LoggerFromContext(ctx).With("platform", platform)

	switch platform {
	case PlatformFacebook:
		if s.facebook == nil {
			return nil, &domain.ConfigurationError{Message: msgFacebookNotConfigured}
		}

		var id string
		id, err = s.facebook.Publish(ctx, text)
		if err != nil {
			log.Error("publish failed", "error", err)
			return nil, err
		}

		log.Info("published", "post_id", id)
		return &Output{Platform: platform, ID: id}, nil

	case PlatformTikTok:
		return nil, &domain.ValidationError{Message: msgTikTokUnsupported}

	default:
		return nil, &domain.ValidationError{Message: "Unsupported platform"}
	}
}

// platformLabel keeps the metric's platform label set closed.
func platformLabel(platform string) string {
	switch platform {
	case PlatformFacebook, PlatformTikTok:
		return platform
	case "":
		return "none"
	default:
		return "other"
	}
}
