package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authentication types reported by the destination service.
const (
	AuthBasic = "BasicAuthentication"
	AuthNone  = "NoAuthentication"
)

var (
	// ErrNotFound is returned when the service has no destination of
	// the requested name.
	ErrNotFound = errors.New("destination not found")

	// ErrMalformed is returned when the service answers with a payload
	// that cannot be used as a destination.
	ErrMalformed = errors.New("malformed destination response")
)

// Destination is a named external-system configuration resolved by the
// broker, optionally carrying live OAuth tokens.
type Destination struct {
	Name           string
	URL            string
	Authentication string
	User           string
	Password       string
	AuthTokens     []*oauth2.Token
}

// IsOAuth reports whether the destination uses a token-based scheme.
func (d *Destination) IsOAuth() bool {
	return strings.Contains(d.Authentication, "OAuth")
}

// FirstToken returns the first usable auth token, or nil.
func (d *Destination) FirstToken() *oauth2.Token {
	for _, t := range d.AuthTokens {
		if t != nil && t.AccessToken != "" {
			return t
		}
	}
	return nil
}

// Broker resolves destinations by name.
type Broker interface {
	GetDestination(ctx context.Context, name string) (*Destination, error)
}

// Config configures the destination service client.
type Config struct {
	// ServiceURL is the destination service REST root.
	ServiceURL string

	// TokenURL, ClientID and ClientSecret authenticate the client with
	// the OAuth2 client-credentials grant. When ClientID is empty the
	// service is called without authentication.
	TokenURL     string
	ClientID     string
	ClientSecret string

	// Timeout applies to each lookup (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the transport (for tests).
	HTTPClient *http.Client
}

// Service is a Broker backed by the destination service REST API.
type Service struct {
	baseURL    string
	httpClient *http.Client
}

// NewService creates a destination service client.
func NewService(cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
	}

	return &Service{
		baseURL:    strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: httpClient,
	}
}

// findResponse is the payload of a destination lookup.
type findResponse struct {
	DestinationConfiguration struct {
		Name           string `json:"Name"`
		URL            string `json:"URL"`
		Authentication string `json:"Authentication"`
		User           string `json:"User"`
		Password       string `json:"Password"`
	} `json:"destinationConfiguration"`
	AuthTokens []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
		Error string `json:"error"`
	} `json:"authTokens"`
}

// GetDestination fetches the named destination including any live auth
// tokens. Every call hits the service; nothing is cached.
func (s *Service) GetDestination(
	ctx context.Context,
	name string,
) (*Destination, error) {
	target := s.baseURL +
		"/destination-configuration/v1/destinations/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating destination request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching destination %q: %w", name, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading destination %q: %w", name, readErr)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"destination service returned status %d for %q",
			resp.StatusCode, name,
		)
	}

	var found findResponse
	if err := json.Unmarshal(body, &found); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, name, err)
	}
	cfg := found.DestinationConfiguration
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %q has no URL", ErrMalformed, name)
	}

	dest := &Destination{
		Name:           name,
		URL:            cfg.URL,
		Authentication: cfg.Authentication,
		User:           cfg.User,
		Password:       cfg.Password,
	}
	for _, t := range found.AuthTokens {
		if t.Error != "" || t.Value == "" {
			continue
		}
		dest.AuthTokens = append(dest.AuthTokens, &oauth2.Token{
			AccessToken: t.Value,
			TokenType:   t.Type,
		})
	}

	return dest, nil
}
