package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/ports"
)

const restliPostIDHeader = "x-restli-id"

// Publisher submits UGC shares to the LinkedIn posting endpoint using a
// bearer credential obtained from the injected provider.
type Publisher struct {
	baseURL     string
	version     string
	credentials ports.CredentialProvider
	client      *http.Client
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires the endpoint configuration with a credential provider.
func NewPublisher(cfg config.LinkedInConfig, creds ports.CredentialProvider) *Publisher {
	return &Publisher{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		version:     cfg.Version,
		credentials: creds,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type shareCommentary struct {
	Text string `json:"text"`
}

type shareContent struct {
	ShareCommentary    shareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type ugcPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

// Publish creates a public text share and returns the upstream post id.
func (p *Publisher) Publish(ctx context.Context, post domain.GeneratedPost) (string, error) {
	if p.credentials == nil {
		return "", fmt.Errorf("%w: no credential provider", domain.ErrPublishFailed)
	}

	creds, err := p.credentials.Credentials(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}
	if creds.AccessToken == "" || creds.AuthorURN == "" {
		return "", fmt.Errorf("%w: incomplete credentials", domain.ErrPublishFailed)
	}

	body, err := json.Marshal(ugcPost{
		Author:         creds.AuthorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    shareCommentary{Text: post.Body},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal share: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	if p.version != "" {
		req.Header.Set("LinkedIn-Version", p.version)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %s: %s", domain.ErrPublishFailed, resp.Status, strings.TrimSpace(string(payload)))
	}

	postID := resp.Header.Get(restliPostIDHeader)
	if postID == "" {
		postID = "unknown"
	}
	return postID, nil
}
