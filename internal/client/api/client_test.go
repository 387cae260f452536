package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// staticTokens is a TokenSource whose value can change between requests,
// mimicking the session store.
type staticTokens struct{ v atomic.Value }

func (s *staticTokens) Token() string {
	if v, ok := s.v.Load().(string); ok {
		return v
	}
	return ""
}

func (s *staticTokens) set(t string) { s.v.Store(t) }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *staticTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := &staticTokens{}
	return New(srv.URL, tokens), tokens
}

func TestClient_AttachesFreshTokenPerRequest(t *testing.T) {
	var seen []string
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]FileRecord{})
	}))

	tokens.set("t1")
	_, err := c.ListFiles(context.Background())
	require.NoError(t, err)

	tokens.set("t2")
	_, err = c.ListFiles(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer t1", "Bearer t2"}, seen)
}

func TestClient_PublicRoutesCarryNoToken(t *testing.T) {
	var auth string
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(LoginResult{Token: "t1"})
	}))
	tokens.set("stale")

	_, err := c.Login(context.Background(), "alice", "Secret123", "")
	require.NoError(t, err)
	require.Empty(t, auth)
}

func TestClient_Login_Success(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/auth/login/", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req["username"])
		require.Equal(t, "Secret123", req["password"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "t1",
			"user":  map[string]any{"id": 1, "username": "alice"},
		})
	}))

	res, err := c.Login(context.Background(), "alice", "Secret123", "")
	require.NoError(t, err)
	require.Equal(t, "t1", res.Token)
	require.Equal(t, int64(1), res.User.ID)
	require.Equal(t, "alice", res.User.Username)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", 400, `{"error":"file too big"}`, "file too big"},
		{"detail field", 400, `{"detail":"bad input"}`, "bad input"},
		{"empty body falls back", 500, ``, "Failed to fetch files"},
		{"unknown shape falls back", 500, `{"oops":1}`, "Failed to fetch files"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			tokens.set("t1")

			_, err := c.ListFiles(context.Background())
			require.Error(t, err)
			require.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestClient_UnauthorizedNotifiesObservers(t *testing.T) {
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token","code":"token_not_valid"}`))
	}))
	tokens.set("expired")

	var calls atomic.Int32
	c.OnUnauthorized(func() { calls.Add(1) })
	c.OnUnauthorized(func() { calls.Add(1) })

	_, err := c.ListFiles(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, int32(2), calls.Load())

	// A second failing call notifies again; observers are responsible for
	// being idempotent.
	_, err = c.ListFiles(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, int32(4), calls.Load())
}

func TestClient_UnauthorizedOnPublicRouteDoesNotNotify(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))

	var called bool
	c.OnUnauthorized(func() { called = true })

	_, err := c.Login(context.Background(), "alice", "wrong", "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "Invalid credentials", err.Error())
	require.False(t, called)
}

func TestClient_SecondFactorRequired(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"second factor required","code":"otp_required"}`))
	}))

	var called bool
	c.OnUnauthorized(func() { called = true })

	_, err := c.Login(context.Background(), "alice", "Secret123", "")
	require.ErrorIs(t, err, ErrSecondFactorRequired)
	require.False(t, called)
}

func TestClient_Upload_SendsMultipartAndDecodesRecord(t *testing.T) {
	uploadedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "a.txt", r.FormValue("name"))
		require.Equal(t, "10", r.FormValue("size"))

		key, err := base64.StdEncoding.DecodeString(r.FormValue("key"))
		require.NoError(t, err)
		require.Len(t, key, 32)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(FileRecord{ID: "5", Name: "a.txt", Size: 10, UploadedAt: uploadedAt})
	}))
	tokens.set("t1")

	key := make([]byte, 32)
	rec, err := c.UploadFile(context.Background(), "a.txt", []byte("ciphertext"), key, 10, "text/plain")
	require.NoError(t, err)
	require.Equal(t, &FileRecord{ID: "5", Name: "a.txt", Size: 10, UploadedAt: uploadedAt}, rec)
}

func TestClient_ResolveLink_StripsDirectoryFromFilename(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{`attachment; filename="../../escape.txt"`, "escape.txt"},
		{`attachment; filename="/etc/passwd"`, "passwd"},
		{`attachment; filename=".."`, "download"},
		{`attachment; filename="notes.txt"`, "notes.txt"},
		{`attachment`, "download"},
	}
	for _, tc := range cases {
		header := tc.header
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Disposition", header)
			_, _ = w.Write([]byte("content"))
		}))

		name, content, err := c.ResolveLink(context.Background(), "l1")
		require.NoError(t, err)
		require.Equal(t, tc.want, name, "header %q", tc.header)
		require.Equal(t, []byte("content"), content)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"notes.txt":          "notes.txt",
		"../../escape.txt":   "escape.txt",
		`..\..\escape.txt`:   "escape.txt",
		"/etc/passwd":        "passwd",
		`C:\temp\escape.txt`: "escape.txt",
		"..":                 "",
		".":                  "",
		"/":                  "",
		"":                   "",
	}
	for in, want := range cases {
		require.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}

func TestClient_ResolveLink_Expired(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Link has expired"}`))
	}))

	var called bool
	c.OnUnauthorized(func() { called = true })

	_, _, err := c.ResolveLink(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, "Link has expired", err.Error())
	require.False(t, called)
}
