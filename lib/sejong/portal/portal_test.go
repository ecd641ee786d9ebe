package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/session"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginRequest(t *testing.T) {
	type seen struct {
		method, host, referer, cookie string
		form                          map[string]string
	}
	requests := make(chan seen, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		requests <- seen{
			method:  r.Method,
			host:    r.Host,
			referer: r.Header.Get("Referer"),
			cookie:  r.Header.Get("Cookie"),
			form:    form,
		}
		w.Write([]byte("<script>location.href='/'</script>"))
	}))
	defer server.Close()

	s, err := session.New(session.Options{Timeout: time.Second, SslVerification: true, MaxRetry: 1})
	require.NoError(t, err)

	creds := sejong.Credentials{StudentId: "20012345", Password: "p@ss word"}
	err = Login(context.Background(), s, server.URL+"/jsp/login/login_action.jsp", sejong.ClassicReturnUrl, creds)
	require.NoError(t, err)

	got := <-requests
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, sejong.PortalHost, got.host)
	require.Equal(t, sejong.PortalOrigin, got.referer)
	require.True(t, strings.Contains(got.cookie, "chknos=false"))
	require.Equal(t, map[string]string{
		"mainLogin": "N",
		"rtUrl":     "classic.sejong.ac.kr",
		"id":        "20012345",
		"password":  "p@ss word",
	}, got.form)
}
