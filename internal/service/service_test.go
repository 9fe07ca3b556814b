package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/jira-bridge/internal/credential"
	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/source/jira"
	"github.com/nhle/jira-bridge/internal/store"
	"github.com/nhle/jira-bridge/tests/testutil"
)

type fakeResolver struct {
	baseURL string
	calls   int32
	ctxErr  error
}

func (r *fakeResolver) Resolve(ctx context.Context) *credential.Resolution {
	atomic.AddInt32(&r.calls, 1)
	r.ctxErr = ctx.Err()
	return &credential.Resolution{
		Config: &jira.ClientConfig{
			BaseURL: r.baseURL,
			Headers: map[string]string{"Authorization": "Basic eDp5"},
		},
		Mode:            credential.ModeStaticBasic,
		DestinationName: "environment variables",
	}
}

// countingCache wraps a real store and counts upserts, optionally failing
// on the n-th one.
type countingCache struct {
	store.IssueCache

	mu      sync.Mutex
	upserts int
	failAt  int
}

func (c *countingCache) UpsertCachedIssue(ctx context.Context, rec model.CacheRecord) error {
	c.mu.Lock()
	c.upserts++
	n := c.upserts
	c.mu.Unlock()

	if c.failAt > 0 && n == c.failAt {
		return errors.New("disk full")
	}
	return c.IssueCache.UpsertCachedIssue(ctx, rec)
}

func newJiraServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *fakeResolver, *countingCache) {
	t.Helper()
	resolver := &fakeResolver{baseURL: newJiraServer(t, handler)}
	cache := &countingCache{IssueCache: testutil.NewTestStore(t)}
	return New(resolver, cache, testutil.NewTestLogger()), resolver, cache
}

func searchBody(keys ...string) string {
	issues := make([]string, 0, len(keys))
	for _, k := range keys {
		issues = append(issues, `{"key":"`+k+`","fields":{"summary":"s `+k+`","status":{"name":"Open"}}}`)
	}
	return `{"startAt":0,"maxResults":50,"total":` + strconv.Itoa(len(keys)) + `,"issues":[` + strings.Join(issues, ",") + `]}`
}

func TestInit_ResolvesOnceUnderConcurrency(t *testing.T) {
	svc, resolver, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Init(context.Background())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
	require.NotNil(t, svc.Resolution())
	assert.Equal(t, credential.ModeStaticBasic, svc.Resolution().Mode)
}

func TestInit_IgnoresCallerCancellation(t *testing.T) {
	svc, resolver, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Init(ctx)

	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
	assert.NoError(t, resolver.ctxErr)
}

func TestOperationsInitializeLazily(t *testing.T) {
	svc, resolver, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"displayName":"Alice"}`))
	})
	assert.Nil(t, svc.Resolution())

	msg, err := svc.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Connection successful. Logged in as: Alice", msg)

	_, err = svc.TestConnection(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
}

func TestTestConnection_Failure(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.TestConnection(context.Background())
	require.Error(t, err)
	assert.Equal(t, "connection failed: request failed with status code 401", err.Error())
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestGetIssueByKey_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	issue, err := svc.GetIssueByKey(context.Background(), "ABC-404")
	assert.Nil(t, issue)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABC-404")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestGetIssueByKey_Success(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"ABC-1","fields":{"summary":"Hello"}}`))
	})

	issue, err := svc.GetIssueByKey(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", issue.JiraKey)
	assert.Equal(t, "Hello", issue.Summary)
}

func TestSearchByJQL_Payload(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "50", q.Get("maxResults"))
		assert.Equal(t, "0", q.Get("startAt"))
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":50,"total":120,"issues":[{"key":"ABC-1","fields":{}}]}`))
	})

	doc, err := svc.SearchByJQL(context.Background(), SearchRequest{JQL: "project = ABC"})
	require.NoError(t, err)

	var payload SearchPayload
	require.NoError(t, json.Unmarshal([]byte(doc), &payload))
	assert.Equal(t, 120, payload.Total)
	assert.False(t, payload.IsLast)
	assert.True(t, payload.HasMore)
	assert.Empty(t, payload.JQLUsed)
	require.Len(t, payload.Issues, 1)
	assert.NotContains(t, doc, "jqlUsed")
}

func TestSearchByJQL_Failure(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Error in the JQL Query"]}`))
	})

	_, err := svc.SearchByJQL(context.Background(), SearchRequest{JQL: "bad ("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search issues")
	assert.Contains(t, err.Error(), "Error in the JQL Query")
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestGetMyOpenIssues_IncludesJQL(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jira.MyOpenIssuesJQL, r.URL.Query().Get("jql"))
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":50,"total":0,"issues":[]}`))
	})

	doc, err := svc.GetMyOpenIssues(context.Background())
	require.NoError(t, err)

	var payload SearchPayload
	require.NoError(t, json.Unmarshal([]byte(doc), &payload))
	assert.Equal(t, jira.MyOpenIssuesJQL, payload.JQLUsed)
	assert.True(t, payload.IsLast)
	assert.False(t, payload.HasMore)
	assert.NotNil(t, payload.Issues)
}

func TestGetAbapOpenIssues_IncludesJQL(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jira.AbapOpenIssuesJQL, r.URL.Query().Get("jql"))
		_, _ = w.Write([]byte(searchBody("ABAP-1")))
	})

	doc, err := svc.GetAbapOpenIssues(context.Background())
	require.NoError(t, err)
	assert.Contains(t, doc, `"jqlUsed"`)
	assert.Contains(t, doc, "ABAP-1")
}

func TestSyncIssues_UpsertsEveryIssue(t *testing.T) {
	svc, _, cache := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jira.RecentlyUpdatedJQL, r.URL.Query().Get("jql"))
		_, _ = w.Write([]byte(searchBody("ABC-1", "ABC-2", "ABC-3")))
	})
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	msg, err := svc.SyncIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Successfully synced 3 issues", msg)
	assert.Equal(t, 3, cache.upserts)

	rec, err := cache.GetCachedIssue(context.Background(), "ABC-2")
	require.NoError(t, err)
	assert.Equal(t, "s ABC-2", rec.Summary)
	assert.Equal(t, "Open", rec.Status)
	assert.True(t, rec.LastSync.Equal(fixed))

	var raw model.Issue
	require.NoError(t, json.Unmarshal([]byte(rec.RawData), &raw))
	assert.Equal(t, "ABC-2", raw.JiraKey)

	// A second run overwrites rather than duplicates.
	_, err = svc.SyncIssues(context.Background())
	require.NoError(t, err)
	records, err := svc.ReadIssues(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSyncIssues_AbortsOnCacheFailure(t *testing.T) {
	svc, _, cache := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody("ABC-1", "ABC-2", "ABC-3")))
	})
	cache.failAt = 2

	_, err := svc.SyncIssues(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sync issues")
	assert.Equal(t, 2, cache.upserts)

	records, err := svc.ReadIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ABC-1", records[0].JiraKey)
}

func TestSyncIssues_SearchFailure(t *testing.T) {
	svc, _, cache := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.SyncIssues(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.Zero(t, cache.upserts)
}

func TestReadProjects_DegradesToEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	projects := svc.ReadProjects(context.Background())
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestReadProjects_Live(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"key":"ABC","name":"Alpha","projectTypeKey":"software"}]`))
	})

	projects := svc.ReadProjects(context.Background())
	require.Len(t, projects, 1)
	assert.Equal(t, "ABC", projects[0].JiraKey)
}

func TestReadUsers_Empty(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	users := svc.ReadUsers(context.Background())
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestWritePlaceholders(t *testing.T) {
	var hits int32
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	msg, err := svc.CreateIssue(context.Background(), CreateIssueRequest{Project: "ABC", Summary: "x"})
	require.NoError(t, err)
	assert.Equal(t, CreateIssuePlaceholder, msg)

	msg, err = svc.UpdateIssue(context.Background(), UpdateIssueRequest{JiraKey: "ABC-1"})
	require.NoError(t, err)
	assert.Equal(t, UpdateIssuePlaceholder, msg)

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestOperationError_Format(t *testing.T) {
	assert.Equal(t, "failed to fetch issue ABC-1: boom",
		(&OperationError{Op: "failed to fetch issue", Key: "ABC-1", Message: "boom"}).Error())
	assert.Equal(t, "failed to fetch projects: boom",
		(&OperationError{Op: "failed to fetch projects", Message: "boom"}).Error())
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.Zero(t, StatusOf(errors.New("plain")))
}
