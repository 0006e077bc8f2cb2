package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	_, ok := s.Token()
	assert.False(t, ok)
	assert.False(t, HasToken(s))

	require.NoError(t, s.Save("abc"))
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear())
	assert.False(t, HasToken(s))
	assert.False(t, HasToken(nil))
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)

	_, ok := s.Token()
	assert.False(t, ok)
	require.NoError(t, s.Clear(), "clearing a missing file is a no-op")

	require.NoError(t, s.Save("tok-1"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// a fresh store over the same file sees the token
	tok, ok := NewFileStore(path).Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"auth_token":"tok-1"}`, string(raw))

	require.NoError(t, s.Clear())
	_, ok = s.Token()
	assert.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	for _, content := range []string{"not json", "null", ""} {
		t.Run(content, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			s := NewFileStore(path)
			_, ok := s.Token()
			assert.False(t, ok)

			require.NoError(t, s.Save("fresh"))
			tok, _ := s.Token()
			assert.Equal(t, "fresh", tok)

			require.NoError(t, s.Clear())
		})
	}
}

func TestCookies_SaveSetsAttributes(t *testing.T) {
	c := NewCookies(CookieConfig{Secure: true})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	store := c.For(w, r)
	assert.False(t, HasToken(store))
	require.NoError(t, store.Save("jwt-value"))

	tok, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "jwt-value", tok)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "token", ck.Name)
	assert.Equal(t, "jwt-value", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestCookies_ReadAndClear(t *testing.T) {
	c := NewCookies(CookieConfig{})
	r := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})

	tok, ok := c.Read(r)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	w := httptest.NewRecorder()
	store := c.For(w, r)
	require.NoError(t, store.Clear())
	assert.False(t, HasToken(store))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestCookies_ReadOnlyStore(t *testing.T) {
	c := NewCookies(CookieConfig{})
	store := c.For(nil, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, store.Save("x"))
	assert.Error(t, store.Clear())
}

func TestCookies_Signed(t *testing.T) {
	c := NewCookies(CookieConfig{HashKey: []byte("0123456789abcdef0123456789abcdef")})
	w := httptest.NewRecorder()
	require.NoError(t, c.For(w, httptest.NewRequest(http.MethodPost, "/", nil)).Save("secret"))

	ck := w.Result().Cookies()[0]
	assert.NotEqual(t, "secret", ck.Value)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(ck)
	tok, ok := c.Read(r)
	assert.True(t, ok)
	assert.Equal(t, "secret", tok)

	// a tampered or unsigned value is treated as no token
	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: CookieName, Value: "secret"})
	_, ok = c.Read(forged)
	assert.False(t, ok)
}

func TestSubject(t *testing.T) {
	signed := func(claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	assert.Equal(t, "user-1", Subject(signed(jwt.MapClaims{"sub": "user-1"})))
	assert.Equal(t, "a@b.c", Subject(signed(jwt.MapClaims{"email": "a@b.c"})))
	assert.Equal(t, "", Subject("opaque-token"))
	assert.Equal(t, "", Subject("a.b.c"))
}
