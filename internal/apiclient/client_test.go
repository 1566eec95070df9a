package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (r *recordingObserver) ObserveRequest(_, _ string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func TestRequestSendsJSONWithBearerToken(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"k1","name":"Panties"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	c.SetTokenSource(staticToken("t1"))

	var out map[string]string
	err := c.Do(context.Background(), "/api/categories", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON{Value: map[string]string{"name": "Panties"}},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer t1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"name":"Panties"}`, string(gotBody))
	assert.Equal(t, "k1", out["_id"])
}

func TestRequestOmitsAuthorizationWhenAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokenSource(staticToken(""))
	data, err := c.Request(context.Background(), "/api/colors", RequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestRawBodyPassesThroughUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name":"x"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	data, err := New(srv.URL).Request(context.Background(), "/api/colors/1", RequestOptions{
		Method: http.MethodPut,
		Body:   Raw(`{"name":"x"}`),
	})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMultipartBodyUsesItsOwnBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, []string{"S", "M"}, r.MultipartForm.Value["sizes"])
		assert.Equal(t, "Set", r.FormValue("name"))
		if files := r.MultipartForm.File["images"]; assert.Len(t, files, 1) {
			assert.Equal(t, "a.jpg", files[0].Filename)
		}
		_, _ = w.Write([]byte(`{"_id":"p1"}`))
	}))
	defer srv.Close()

	form := NewMultipart().
		Field("name", "Set").
		Field("sizes", "S").
		Field("sizes", "M").
		File("images", "a.jpg", []byte("jpeg"))
	assert.Equal(t, 4, form.Len())

	data, err := New(srv.URL).Request(context.Background(), "/api/products", RequestOptions{
		Method: http.MethodPost,
		Body:   form,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"p1"}`, string(data))
}

func TestNonSuccessStatusBecomesRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	_, err := New(srv.URL, WithObserver(obs)).Request(context.Background(), "/api/auth/login", RequestOptions{Method: http.MethodPost})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, `Error 401: {"error":"Invalid credentials"}`, reqErr.Error())
	assert.Equal(t, "Invalid credentials", reqErr.Message())
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, []int{http.StatusUnauthorized}, obs.statuses)
}

func TestUnreachableBackendBecomesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	_, err := New(url, WithObserver(obs)).Request(context.Background(), "/api/colors", RequestOptions{})

	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusOf(err))
	assert.Equal(t, []int{0}, obs.statuses)
}

func TestNonJSONSuccessBodyYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("deleted"))
	}))
	defer srv.Close()

	data, err := New(srv.URL).Request(context.Background(), "/api/colors/1", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestExplicitBearerTokenWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer persisted", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokenSource(staticToken("live"))
	_, err := c.Request(context.Background(), "/api/auth/verify", RequestOptions{BearerToken: "persisted"})
	require.NoError(t, err)
}
