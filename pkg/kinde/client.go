package kinde

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
)

const (
	tokenPath = "/oauth/token"
	userPath  = "/api/v1/user"

	responseReadLimit    int64 = 1024
	defaultClientTimeout       = 10 * time.Second
)

var (
	errBaseURLRequired = errors.New("kinde base url is required")
	errClientRequired  = errors.New("kinde client id and secret are required")
)

// User is the subset of the Kinde user record the platform relies on.
type User struct {
	ID          string  `json:"id"`
	Email       string  `json:"preferred_email"`
	GivenName   string  `json:"first_name"`
	FamilyName  string  `json:"last_name"`
	Picture     *string `json:"picture"`
	IsSuspended bool    `json:"is_suspended"`
}

// FullName joins the given and family name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.GivenName) + " " + strings.TrimSpace(u.FamilyName))
}

// ManagementClient is the identity-provider surface consumed by the user services.
type ManagementClient interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	UpdateUserName(ctx context.Context, userID, givenName, familyName string) error
	SetSuspended(ctx context.Context, userID string, suspended bool) error
	DeleteUser(ctx context.Context, userID string) error
}

// Client talks to the Kinde management API using client-credentials auth.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	audience     string
	clientID     string
	clientSecret string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the management API client from configuration.
func NewClient(cfg config.KindeConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errClientRequired
	}

	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = baseURL + "/api"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		audience:     audience,
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// GetUser fetches the user record from the management API.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	resp, err := c.doUserRequest(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found in identity provider")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "fetch user from identity provider")
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity provider user")
	}
	if user.ID == "" {
		user.ID = userID
	}
	return &user, nil
}

// UpdateUserName patches the given and family names on the identity record.
func (c *Client) UpdateUserName(ctx context.Context, userID, givenName, familyName string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	payload := map[string]string{
		"given_name":  givenName,
		"family_name": familyName,
	}
	resp, err := c.doUserRequest(ctx, http.MethodPatch, userID, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp, "update user name in identity provider")
	}
	return nil
}

// SetSuspended toggles the suspension flag on the identity record.
func (c *Client) SetSuspended(ctx context.Context, userID string, suspended bool) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	payload := map[string]bool{"is_suspended": suspended}
	resp, err := c.doUserRequest(ctx, http.MethodPatch, userID, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp, "update suspension in identity provider")
	}
	return nil
}

// DeleteUser removes the user from the identity provider.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	resp, err := c.doUserRequest(ctx, http.MethodDelete, userID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp, "delete user in identity provider")
	}
	return nil
}

// doUserRequest fetches a fresh management token and issues the user API call.
func (c *Client) doUserRequest(ctx context.Context, method, userID string, payload any) (*http.Response, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal identity provider request")
		}
		body = bytes.NewReader(raw)
	}

	endpoint := fmt.Sprintf("%s%s?id=%s", c.baseURL, userPath, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build identity provider request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute identity provider request")
	}
	return resp, nil
}

// fetchToken exchanges client credentials for a management API token.
// Tokens are not cached; each operation authenticates independently.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"audience":      {c.audience},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build identity provider token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute identity provider token request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, "identity provider token request failed")
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity provider token")
	}
	if tokenResp.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned an empty token")
	}
	return tokenResp.AccessToken, nil
}

func statusError(resp *http.Response, message string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
