package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PabloGalante/studio-agent/internal/domain"
)

// FacebookPage posts to a page feed through the Graph API.
type FacebookPage struct {
	pageID      string
	accessToken string
	baseURL     string
	version     string
	client      *http.Client
}

// NewFacebookPage returns nil when the page is not configured, so callers
// can treat a missing publisher as a configuration problem.
func NewFacebookPage(pageID, accessToken, graphURL, version string) *FacebookPage {
	if pageID == "" || accessToken == "" {
		return nil
	}
	if graphURL == "" {
		graphURL = "https://graph.facebook.com"
	}
	if version == "" {
		version = "v23.0"
	}
	return &FacebookPage{
		pageID:      pageID,
		accessToken: accessToken,
		baseURL:     strings.TrimRight(graphURL, "/"),
		version:     version,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Publish implements domain.Publisher.
func (f *FacebookPage) Publish(ctx context.Context, text string) (string, error) {
	form := url.Values{
		"message":      {text},
		"access_token": {f.accessToken},
	}
	endpoint := fmt.Sprintf("%s/%s/%s/feed", f.baseURL, f.version, url.PathEscape(f.pageID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building facebook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Status: http.StatusBadGateway, Message: "Facebook API unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	// An unreadable body is treated like an empty one.
	var out graphResponse
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || out.Error != nil {
		msg := fmt.Sprintf("Facebook API error (%d)", resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &domain.UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	if out.ID == "" {
		return "posted", nil
	}
	return out.ID, nil
}
