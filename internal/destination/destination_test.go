package destination

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(Config{ServiceURL: srv.URL})
}

func TestGetDestination_OAuth(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/destination-configuration/v1/destinations/jira", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"destinationConfiguration": {
				"Name": "jira",
				"URL": "https://example.atlassian.net",
				"Authentication": "OAuth2SAMLBearerAssertion"
			},
			"authTokens": [
				{"type": "Bearer", "value": "", "error": "token exchange failed"},
				{"type": "Bearer", "value": "abc123"}
			]
		}`))
	})

	dest, err := svc.GetDestination(context.Background(), "jira")
	require.NoError(t, err)
	assert.Equal(t, "jira", dest.Name)
	assert.Equal(t, "https://example.atlassian.net", dest.URL)
	assert.True(t, dest.IsOAuth())
	require.Len(t, dest.AuthTokens, 1)

	token := dest.FirstToken()
	require.NotNil(t, token)
	assert.Equal(t, "abc123", token.AccessToken)
	assert.Equal(t, "Bearer", token.Type())
}

func TestGetDestination_Basic(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"destinationConfiguration": {
				"URL": "https://example.atlassian.net",
				"Authentication": "BasicAuthentication",
				"User": "svc@example.com",
				"Password": "secret"
			}
		}`))
	})

	dest, err := svc.GetDestination(context.Background(), "jira")
	require.NoError(t, err)
	assert.False(t, dest.IsOAuth())
	assert.Equal(t, AuthBasic, dest.Authentication)
	assert.Equal(t, "svc@example.com", dest.User)
	assert.Equal(t, "secret", dest.Password)
	assert.Nil(t, dest.FirstToken())
}

func TestGetDestination_NotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := svc.GetDestination(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDestination_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.GetDestination(context.Background(), "jira")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGetDestination_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing url", `{"destinationConfiguration":{"Name":"jira"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.GetDestination(context.Background(), "jira")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestNewService_ClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"svc-token","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	destSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"destinationConfiguration":{"URL":"https://example.atlassian.net"}}`))
	}))
	t.Cleanup(destSrv.Close)

	svc := NewService(Config{
		ServiceURL:   destSrv.URL,
		TokenURL:     tokenSrv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
	})

	dest, err := svc.GetDestination(context.Background(), "jira")
	require.NoError(t, err)
	assert.Equal(t, "https://example.atlassian.net", dest.URL)
}
