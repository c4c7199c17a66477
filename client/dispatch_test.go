package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transferkit/transferkit/cookies"
)

func TestDispatchJSON(t *testing.T) {
	t.Run("bearer GET returns parsed body and persists cookies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"ok":true}`)
		}))
		defer srv.Close()

		jarPath := filepath.Join(t.TempDir(), "cookies.json")
		store := cookies.NewFileStore(jarPath, zap.NewNop())
		c := New(WithLogger(zap.NewNop()), WithCookieStore(store))
		c.SetBearerAuth("T")

		resp, err := c.Get(context.Background(), srv.URL+"/x", nil)
		require.NoError(t, err)
		require.True(t, resp.IsJSON)
		assert.Equal(t, map[string]interface{}{"ok": true}, resp.Data)
		assert.Nil(t, c.LastError())

		assert.Equal(t, map[string]string{"session": "abc"}, store.Load())
	})

	t.Run("non-json body returned as text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, "hello")
		}))
		defer srv.Close()

		c := newTestClient()
		resp, err := c.Get(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.False(t, resp.IsJSON)
		assert.Equal(t, "hello", resp.Text)
	})

	t.Run("query params reach the server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, r.URL.Query().Get("q"))
		}))
		defer srv.Close()

		c := newTestClient()
		resp, err := c.Get(context.Background(), srv.URL, map[string]string{"q": "needle"})
		require.NoError(t, err)
		assert.Equal(t, "needle", resp.Text)
	})

	t.Run("post and put send json bodies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
			w.Header().Set("Content-Type", "application/json")
			io.Copy(w, r.Body)
		}))
		defer srv.Close()

		c := newTestClient()

		resp, err := c.Post(context.Background(), srv.URL, map[string]string{"name": "n1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"name": "n1"}, resp.Data)

		resp, err = c.Put(context.Background(), srv.URL, map[string]string{"name": "n2"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"name": "n2"}, resp.Data)
	})

	t.Run("delete sends no payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Empty(t, body)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		c := newTestClient()
		resp, err := c.Delete(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestDispatchCookieMerge(t *testing.T) {
	t.Run("session cookies win over persisted ones", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := map[string]string{}
			for _, ck := range r.Cookies() {
				got[ck.Name] = ck.Value
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(got)
		}))
		defer srv.Close()

		store := cookies.NewMemoryStore()
		store.Save(map[string]string{"shared": "disk", "only_disk": "d"})

		c := New(WithLogger(zap.NewNop()), WithCookieStore(store))
		c.SetCookie("shared", "mem")

		resp, err := c.Get(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		require.True(t, resp.IsJSON)

		got, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "mem", got["shared"])
		assert.Equal(t, "d", got["only_disk"])
	})
}

func TestDispatchErrorState(t *testing.T) {
	t.Run("status failure records message and code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		c := newTestClient()
		resp, err := c.Get(context.Background(), srv.URL, nil)
		assert.Nil(t, resp)
		require.Error(t, err)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

		last := c.LastError()
		require.NotNil(t, last)
		assert.NotEmpty(t, last.Message)
		require.NotNil(t, last.Code)
		assert.Equal(t, http.StatusNotFound, *last.Code)
	})

	t.Run("transport failure records message without code", func(t *testing.T) {
		c := newTestClient()
		_, err := c.Get(context.Background(), "http://127.0.0.1:1/unreachable", nil)
		require.Error(t, err)

		last := c.LastError()
		require.NotNil(t, last)
		assert.NotEmpty(t, last.Message)
		assert.Nil(t, last.Code)
	})

	t.Run("success clears a previous failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/bad" {
				http.Error(w, "nope", http.StatusInternalServerError)
				return
			}
			io.WriteString(w, "ok")
		}))
		defer srv.Close()

		c := newTestClient()

		_, err := c.Get(context.Background(), srv.URL+"/bad", nil)
		require.Error(t, err)
		require.NotNil(t, c.LastError())

		_, err = c.Get(context.Background(), srv.URL+"/good", nil)
		require.NoError(t, err)
		assert.Nil(t, c.LastError())
	})
}

func TestDispatchRedirects(t *testing.T) {
	newRedirectServer := func() *httptest.Server {
		mux := http.NewServeMux()
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/target", http.StatusFound)
		})
		mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "landed")
		})
		return httptest.NewServer(mux)
	}

	t.Run("followed by default", func(t *testing.T) {
		srv := newRedirectServer()
		defer srv.Close()

		c := newTestClient()
		resp, err := c.Get(context.Background(), srv.URL+"/start", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "landed", resp.Text)
	})

	t.Run("frozen when disabled", func(t *testing.T) {
		srv := newRedirectServer()
		defer srv.Close()

		c := newTestClient()
		c.SetFollowRedirects(false)

		resp, err := c.Get(context.Background(), srv.URL+"/start", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})
}
