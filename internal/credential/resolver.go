package credential

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/phuslu/log"
	"golang.org/x/oauth2"

	"github.com/nhle/jira-bridge/internal/destination"
	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/source/jira"
)

// Mode identifies how the Jira client authenticates.
type Mode string

const (
	ModeStaticBasic     Mode = "static-basic"
	ModeDelegatedBasic  Mode = "delegated-basic"
	ModeDelegatedToken  Mode = "delegated-token"
	ModeDelegatedNoAuth Mode = "delegated-none"
)

const staticDestinationTag = "environment variables"

var errNoToken = errors.New("destination returned no auth token")

// Resolution is the outcome of credential resolution.
type Resolution struct {
	Config *jira.ClientConfig
	Mode   Mode

	// DelegatedRequested reports whether delegated mode was asked for,
	// even if resolution fell back to static credentials.
	DelegatedRequested bool

	// DestinationName is the broker destination, or "environment
	// variables" when static credentials were requested.
	DestinationName string
}

// SecretLookup reads a secret by key. It backs the static API token when
// the environment does not provide one.
type SecretLookup func(key string) (string, error)

// Option customizes a Resolver.
type Option func(*Resolver)

// WithSecretLookup replaces the keyring lookup.
func WithSecretLookup(fn SecretLookup) Option {
	return func(r *Resolver) { r.lookup = fn }
}

// Resolver turns configuration flags into a ready-to-use Jira client
// configuration, choosing between the destination broker and static
// credentials.
type Resolver struct {
	cfg    *model.AppConfig
	broker destination.Broker
	lookup SecretLookup
	logger *log.Logger
}

// NewResolver creates a resolver. broker may be nil when no destination
// service is configured.
func NewResolver(
	cfg *model.AppConfig,
	broker destination.Broker,
	logger *log.Logger,
	opts ...Option,
) *Resolver {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	r := &Resolver{
		cfg:    cfg,
		broker: broker,
		lookup: Get,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the client configuration. Broker failures are logged
// and recovered by falling back to static credentials; they never reach
// the caller.
func (r *Resolver) Resolve(ctx context.Context) *Resolution {
	if !r.cfg.DelegatedMode() {
		cfg := r.StaticConfig()
		cfg.DestinationName = staticDestinationTag
		return &Resolution{
			Config:          cfg,
			Mode:            ModeStaticBasic,
			DestinationName: staticDestinationTag,
		}
	}

	name := r.cfg.Destination.Name
	res := &Resolution{
		DelegatedRequested: true,
		DestinationName:    name,
	}

	if r.broker == nil {
		r.logger.Warn().Msg(
			"destination service not configured, falling back to environment variables",
		)
		res.Config = r.delegatedFallback(name)
		res.Mode = ModeStaticBasic
		return res
	}

	dest, err := r.broker.GetDestination(ctx, name)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("destination", name).
			Msg("failed to initialize destination-based client, falling back to environment variables")
		res.Config = r.delegatedFallback(name)
		res.Mode = ModeStaticBasic
		return res
	}

	r.logger.Info().
		Str("destination", name).
		Str("url", dest.URL).
		Str("auth", dest.Authentication).
		Msg("resolved destination")

	cfg := &jira.ClientConfig{
		BaseURL:           dest.URL,
		Timeout:           jira.DefaultTimeout,
		Headers:           map[string]string{},
		RequestsPerSecond: r.cfg.Jira.RequestsPerSecond,
		DestinationName:   name,
		DestinationUsed:   true,
	}

	switch {
	case dest.IsOAuth():
		cfg.TokenProvider = r.tokenProvider()
		res.Mode = ModeDelegatedToken
	case dest.Authentication == destination.AuthBasic:
		cfg.Headers["Authorization"] = basicAuth(dest.User, dest.Password)
		res.Mode = ModeDelegatedBasic
	default:
		res.Mode = ModeDelegatedNoAuth
	}

	res.Config = cfg
	return res
}

// StaticConfig builds the fallback configuration from the environment:
// base URL plus a basic-auth header over username and API token.
func (r *Resolver) StaticConfig() *jira.ClientConfig {
	token := r.cfg.Jira.APIToken
	if token == "" && r.lookup != nil {
		stored, err := r.lookup(APITokenKey)
		if err != nil {
			r.logger.Debug().Err(err).Msg("no API token in keyring")
		} else {
			token = stored
		}
	}

	r.logger.Debug().
		Str("base_url", r.cfg.Jira.BaseURL).
		Str("username", r.cfg.Jira.Username).
		Int("token_length", len(token)).
		Msg("using static Jira credentials")

	return &jira.ClientConfig{
		BaseURL: r.cfg.Jira.BaseURL,
		Timeout: jira.DefaultTimeout,
		Headers: map[string]string{
			"Authorization": basicAuth(r.cfg.Jira.Username, token),
		},
		RequestsPerSecond: r.cfg.Jira.RequestsPerSecond,
	}
}

// delegatedFallback is the static configuration used when delegated mode
// was requested but the destination could not be resolved. It keeps the
// requested destination name for reporting.
func (r *Resolver) delegatedFallback(name string) *jira.ClientConfig {
	cfg := r.StaticConfig()
	cfg.DestinationName = name
	cfg.DestinationUsed = true
	return cfg
}

// tokenProvider re-fetches the destination on every call so each request
// carries the broker's current token.
func (r *Resolver) tokenProvider() jira.TokenProvider {
	broker := r.broker
	return func(ctx context.Context, name string) (*oauth2.Token, error) {
		dest, err := broker.GetDestination(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("refreshing destination %q: %w", name, err)
		}
		token := dest.FirstToken()
		if token == nil {
			return nil, fmt.Errorf("%w: %q", errNoToken, name)
		}
		return token, nil
	}
}

func basicAuth(username, password string) string {
	raw := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
