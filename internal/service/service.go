package service

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/nhle/jira-bridge/internal/credential"
	"github.com/nhle/jira-bridge/internal/source/jira"
	"github.com/nhle/jira-bridge/internal/store"
)

// Resolver produces the Jira client configuration.
type Resolver interface {
	Resolve(ctx context.Context) *credential.Resolution
}

// Service exposes Jira operations to the hosting runtime and maintains
// the local issue cache.
type Service struct {
	resolver Resolver
	cache    store.IssueCache
	logger   *log.Logger
	now      func() time.Time

	// mu fences client initialization; callers arriving while it runs
	// wait for it to finish.
	mu         sync.Mutex
	client     *jira.Client
	resolution *credential.Resolution
}

// New creates a Service. The Jira client is resolved on the first call
// to Init or to any operation.
func New(resolver Resolver, cache store.IssueCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Service{
		resolver: resolver,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Init resolves credentials and builds the Jira client. It is idempotent;
// repeated and concurrent calls after the first are no-ops.
func (s *Service) Init(ctx context.Context) {
	s.jiraClient(ctx)
}

// Resolution returns how the client authenticated, or nil before Init.
func (s *Service) Resolution() *credential.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

func (s *Service) jiraClient(ctx context.Context) *jira.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client
	}

	// The resolution outlives this call, so a caller's cancellation must
	// not push it onto the static fallback.
	res := s.resolver.Resolve(context.WithoutCancel(ctx))
	s.client = jira.NewClient(res.Config, s.logger)
	s.resolution = res

	s.logger.Info().
		Str("mode", string(res.Mode)).
		Str("destination", res.DestinationName).
		Bool("destination_requested", res.DelegatedRequested).
		Str("base_url", s.client.BaseURL()).
		Msg("jira client initialized")

	return s.client
}
