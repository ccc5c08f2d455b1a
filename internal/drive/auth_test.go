package drive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ctpsstaff/gdrive-mirror/internal/tokenfile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCreds(t *testing.T) Credentials {
	t.Helper()

	return Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenPath:    filepath.Join(t.TempDir(), "token.json"),
	}
}

func TestCredentials_Validate(t *testing.T) {
	assert.Error(t, Credentials{ClientSecret: "s", TokenPath: "p"}.validate())
	assert.Error(t, Credentials{ClientID: "i", TokenPath: "p"}.validate())
	assert.Error(t, Credentials{ClientID: "i", ClientSecret: "s"}.validate())
	assert.NoError(t, Credentials{ClientID: "i", ClientSecret: "s", TokenPath: "p"}.validate())
}

func TestGenerateState_UniqueAndHex(t *testing.T) {
	s1, err := generateState()
	require.NoError(t, err)

	s2, err := generateState()
	require.NoError(t, err)

	assert.Len(t, s1, stateTokenBytes*2)
	assert.NotEqual(t, s1, s2)
}

func TestHandleOAuthCallback_StateMismatch(t *testing.T) {
	resultCh := make(chan callbackResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=wrong&code=abc", nil)

	handleOAuthCallback(rec, req, "expected", resultCh)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	result := <-resultCh
	assert.ErrorContains(t, result.err, "state mismatch")
}

func TestHandleOAuthCallback_ProviderError(t *testing.T) {
	resultCh := make(chan callbackResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=s&error=access_denied&error_description=nope", nil)

	handleOAuthCallback(rec, req, "s", resultCh)

	result := <-resultCh
	assert.ErrorContains(t, result.err, "access_denied")
	assert.ErrorContains(t, result.err, "nope")
}

func TestHandleOAuthCallback_MissingCode(t *testing.T) {
	resultCh := make(chan callbackResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=s", nil)

	handleOAuthCallback(rec, req, "s", resultCh)

	result := <-resultCh
	assert.ErrorContains(t, result.err, "missing authorization code")
}

func TestHandleOAuthCallback_Success(t *testing.T) {
	resultCh := make(chan callbackResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=s&code=auth-code-1", nil)

	handleOAuthCallback(rec, req, "s", resultCh)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication successful")

	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, "auth-code-1", result.code)
}

func TestDoAuthCodeLogin_FullFlow(t *testing.T) {
	// Mock token endpoint for the code exchange.
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "fake-code", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token": "at-1", "token_type": "Bearer", "refresh_token": "rt-1", "expires_in": 3600}`)
	}))
	defer tokenSrv.Close()

	creds := testCreds(t)
	cfg := oauthConfig(creds)
	cfg.Endpoint = oauth2.Endpoint{
		AuthURL:  "https://auth.invalid/authorize",
		TokenURL: tokenSrv.URL,
	}

	// Instead of a browser, hit the callback server directly with the
	// state and redirect target parsed out of the auth URL.
	openURL := func(authURL string) error {
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)

		redirect := parsed.Query().Get("redirect_uri")
		state := parsed.Query().Get("state")

		go func() {
			resp, getErr := http.Get(redirect + "/?state=" + url.QueryEscape(state) + "&code=fake-code")
			if getErr == nil {
				resp.Body.Close()
			}
		}()

		return nil
	}

	src, err := doAuthCodeLogin(context.Background(), creds, cfg, openURL, testLogger())
	require.NoError(t, err)

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "at-1", got)

	// Token must have been persisted.
	saved, err := tokenfile.Load(creds.TokenPath)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "rt-1", saved.RefreshToken)
}

func TestTokenSourceFromPath_NotLoggedIn(t *testing.T) {
	_, err := TokenSourceFromPath(context.Background(), testCreds(t), testLogger())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestTokenSourceFromPath_LoadsSavedToken(t *testing.T) {
	creds := testCreds(t)
	tok := &oauth2.Token{
		AccessToken: "saved-access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	require.NoError(t, tokenfile.Save(creds.TokenPath, tok))

	src, err := TokenSourceFromPath(context.Background(), creds, testLogger())
	require.NoError(t, err)

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "saved-access", got)
}

func TestTokenBridge_PersistsRefreshedToken(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	initial := &oauth2.Token{AccessToken: "old"}
	refreshed := &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}

	bridge := newTokenBridge(oauth2.StaticTokenSource(refreshed), initial, tokenPath, testLogger())

	got, err := bridge.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	saved, err := tokenfile.Load(tokenPath)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "new", saved.AccessToken)
}

func TestLogout_RemovesTokenFile(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(tokenPath, []byte("{}"), 0o600))

	require.NoError(t, Logout(tokenPath, testLogger()))
	assert.NoFileExists(t, tokenPath)
}

func TestLogout_AlreadyLoggedOut(t *testing.T) {
	assert.NoError(t, Logout(filepath.Join(t.TempDir(), "token.json"), testLogger()))
}
