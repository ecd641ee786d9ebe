package session

import (
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sejongauth/lib/sejong"
	"sejongauth/lib/telemetry"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testOptions(maxRetry int) Options {
	return Options{
		Timeout:          200 * time.Millisecond,
		SslVerification:  true,
		MaxRetry:         maxRetry,
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 5 * time.Millisecond,
		Telemetry:        &telemetry.Recorder{},
	}
}

func newTestSession(t *testing.T, opts Options) *Session {
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestExecuteWithRetryTimeout(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&attempts, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	s := newTestSession(t, testOptions(3))
	_, err := s.ExecuteWithRetry(
		s.R(context.Background()).SetFormData(map[string]string{"id": "20012345"}),
		http.MethodPost,
		server.URL+"/login",
	)
	require.ErrorIs(t, err, sejong.ErrConnectionTimeout)
	require.Equal(t, int64(3), atomic.LoadInt64(&attempts))
}

func TestExecuteWithRetryStatus(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestSession(t, testOptions(3))
	_, err := s.ExecuteWithRetry(s.R(context.Background()), http.MethodPost, server.URL)
	require.ErrorIs(t, err, sejong.ErrConnectionFailed)
	require.Equal(t, int64(3), atomic.LoadInt64(&attempts))
}

func TestExecuteWithRetryRecovers(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	s := newTestSession(t, testOptions(3))
	res, err := s.ExecuteWithRetry(s.R(context.Background()), http.MethodPost, server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", res.String())
	require.Equal(t, int64(3), atomic.LoadInt64(&attempts))
}

func TestExecuteNeverRetries(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := newTestSession(t, testOptions(3))
	res, err := s.Execute(s.R(context.Background()), http.MethodGet, server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, res.StatusCode())
	require.Equal(t, int64(1), atomic.LoadInt64(&attempts))
}

func TestExecuteTimeoutIsNotRetried(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&attempts, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	s := newTestSession(t, testOptions(3))
	_, err := s.Execute(s.R(context.Background()), http.MethodGet, server.URL)
	require.ErrorIs(t, err, sejong.ErrConnectionTimeout)
	require.Equal(t, int64(1), atomic.LoadInt64(&attempts))
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := newTestSession(t, testOptions(3))
	_, err := s.ExecuteWithRetry(s.R(context.Background()), http.MethodPost, url)
	require.ErrorIs(t, err, sejong.ErrConnectionFailed)
}

func TestCookiesPersistWithinSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("JSESSIONID")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(cookie.Value))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := newTestSession(t, testOptions(1))
	_, err := s.Execute(s.R(context.Background()), http.MethodGet, server.URL+"/set")
	require.NoError(t, err)
	res, err := s.Execute(s.R(context.Background()), http.MethodGet, server.URL+"/get")
	require.NoError(t, err)
	require.Equal(t, "abc", res.String())

	other := newTestSession(t, testOptions(1))
	res, err = other.Execute(other.R(context.Background()), http.MethodGet, server.URL+"/get")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode())
}

func TestTLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure"))
	}))
	defer server.Close()

	verifying := newTestSession(t, testOptions(1))
	_, err := verifying.Execute(verifying.R(context.Background()), http.MethodGet, server.URL)
	require.ErrorIs(t, err, sejong.ErrConnectionFailed)

	opts := testOptions(1)
	opts.SslVerification = false
	trustAll := newTestSession(t, opts)
	res, err := trustAll.Execute(trustAll.R(context.Background()), http.MethodGet, server.URL)
	require.NoError(t, err)
	require.Equal(t, "secure", res.String())

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	err = os.WriteFile(caFile, pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: server.Certificate().Raw,
	}), 0600)
	require.NoError(t, err)

	opts = testOptions(1)
	opts.CaCertFile = caFile
	pinned := newTestSession(t, opts)
	res, err = pinned.Execute(pinned.R(context.Background()), http.MethodGet, server.URL)
	require.NoError(t, err)
	require.Equal(t, "secure", res.String())
}

func TestInvalidCaCertFile(t *testing.T) {
	opts := testOptions(1)
	opts.CaCertFile = filepath.Join(t.TempDir(), "missing.pem")
	_, err := New(opts)
	require.ErrorIs(t, err, sejong.ErrSslConfiguration)

	garbage := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0600))
	opts.CaCertFile = garbage
	_, err = New(opts)
	require.ErrorIs(t, err, sejong.ErrSslConfiguration)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(sejong.Config{}, nil, nil)
	require.Equal(t, 10*time.Second, opts.Timeout)
	require.True(t, opts.SslVerification)
	require.Equal(t, 3, opts.MaxRetry)
}
