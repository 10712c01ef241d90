package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"AutoPoster/internal/ports"
)

// StaticProvider returns credentials fixed at construction time, typically
// read from the environment at startup.
type StaticProvider struct {
	creds ports.Credentials
}

var _ ports.CredentialProvider = (*StaticProvider)(nil)

// NewStaticProvider wraps already-resolved credentials.
func NewStaticProvider(accessToken, authorURN string) *StaticProvider {
	return &StaticProvider{creds: ports.Credentials{AccessToken: accessToken, AuthorURN: authorURN}}
}

// Credentials returns the wrapped credentials or an error when incomplete.
func (p *StaticProvider) Credentials(_ context.Context) (ports.Credentials, error) {
	if p.creds.AccessToken == "" || p.creds.AuthorURN == "" {
		return ports.Credentials{}, errors.New("static credentials incomplete")
	}
	return p.creds, nil
}

// FileProvider reads a token JSON file written by a separate OAuth helper.
// Token acquisition and refresh are out of scope here; the file is a
// read-only collaborator.
type FileProvider struct {
	path string
}

var _ ports.CredentialProvider = (*FileProvider)(nil)

// NewFileProvider points at the token file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

type tokenFile struct {
	AccessToken string `json:"access_token"`
	PersonURN   string `json:"person_urn"`
}

// Credentials loads and validates the token file.
func (p *FileProvider) Credentials(_ context.Context) (ports.Credentials, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return ports.Credentials{}, fmt.Errorf("read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return ports.Credentials{}, fmt.Errorf("parse token file: %w", err)
	}
	if tf.AccessToken == "" {
		return ports.Credentials{}, errors.New("token file has no access token")
	}

	return ports.Credentials{AccessToken: tf.AccessToken, AuthorURN: tf.PersonURN}, nil
}

// Chain tries each provider in order and returns the first usable result.
type Chain struct {
	providers []ports.CredentialProvider
}

var _ ports.CredentialProvider = (*Chain)(nil)

// NewChain composes providers; earlier ones win.
func NewChain(providers ...ports.CredentialProvider) *Chain {
	return &Chain{providers: providers}
}

// Credentials walks the chain until a provider succeeds.
func (c *Chain) Credentials(ctx context.Context) (ports.Credentials, error) {
	var lastErr error
	for _, p := range c.providers {
		creds, err := p.Credentials(ctx)
		if err == nil {
			return creds, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no credential providers configured")
	}
	return ports.Credentials{}, lastErr
}
