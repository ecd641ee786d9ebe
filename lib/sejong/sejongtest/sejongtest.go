// Package sejongtest provides a fake portal for tests.
package sejongtest

import (
	_ "embed"
	"io"
	"net/http"
	"net/http/httptest"
	"sejongauth/lib/sejong"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

//go:embed testdata/status.html
var StatusHtml string

//go:embed testdata/status_partial.html
var StatusPartialHtml string

//go:embed testdata/user_info.json
var UserInfoJson string

const (
	LoginPath       = "/jsp/login/login_action.jsp"
	ClassicSsoPath  = "/_custom/sejong/sso/sso-return.jsp"
	ClassicPagePath = "/classic/reading/status.do"
	SisSsoPath      = "/main/view/Login/doSsoLogin.do"
	SisUserInfoPath = "/main/sys/UserInfo/initUserInfo.do"

	ssoCookie     = "ssotoken"
	classicCookie = "CLASSIC_SESSION"
	sisCookie     = "SIS_SESSION"
)

// Portal imitates portal.sejong.ac.kr and the two services behind it.
//
// A correct login sets a token cookie, the SSO endpoints exchange it for a
// service cookie and the final resources answer 401 without that cookie,
// so wrong credentials surface where the real portal reports them.
type Portal struct {
	Server *httptest.Server

	StudentId string
	Password  string

	StatusHtml   string
	UserInfoJson string

	// a non zero status replaces the normal response of that endpoint
	LoginStatus      int
	ClassicSsoStatus int
	ClassicStatus    int
	SisSsoStatus     int
	UserInfoStatus   int

	requests  atomic.Int64
	mutex     sync.Mutex
	addParams []string
}

func New(t testing.TB) *Portal {
	p := &Portal{
		StudentId:    "20012345",
		Password:     "correct-horse",
		StatusHtml:   StatusHtml,
		UserInfoJson: UserInfoJson,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, p.handleLogin)
	mux.HandleFunc(ClassicSsoPath, p.handleSso(func() int { return p.ClassicSsoStatus }, classicCookie))
	mux.HandleFunc(ClassicPagePath, p.handleClassicPage)
	mux.HandleFunc(SisSsoPath, p.handleSso(func() int { return p.SisSsoStatus }, sisCookie))
	mux.HandleFunc(SisUserInfoPath, p.handleUserInfo)

	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Server.Close)
	return p
}

// Config points every endpoint at the fake portal.
func (p *Portal) Config() sejong.Config {
	verify := true
	return sejong.Config{
		SslVerification:  &verify,
		TimeoutSeconds:   5,
		MaxRetry:         3,
		PortalLoginUrl:   p.Server.URL + LoginPath,
		SsoRedirectUrl:   p.Server.URL + ClassicSsoPath + "?returnUrl=" + p.Server.URL + "/classic/index.do",
		ClassicStatusUrl: p.Server.URL + ClassicPagePath,
		SisSsoUrl:        p.Server.URL + SisSsoPath + "?p=",
		SisUserInfoUrl:   p.Server.URL + SisUserInfoPath,
	}
}

func (p *Portal) Credentials() sejong.Credentials {
	return sejong.Credentials{StudentId: p.StudentId, Password: p.Password}
}

// Requests is the number of requests the portal has received.
func (p *Portal) Requests() int64 {
	return p.requests.Load()
}

// AddParams returns the raw addParam value of every user info request.
func (p *Portal) AddParams() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.addParams...)
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	if p.LoginStatus != 0 {
		w.WriteHeader(p.LoginStatus)
		return
	}
	if r.Method != http.MethodPost || r.Host != sejong.PortalHost {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("id") == p.StudentId && r.PostForm.Get("password") == p.Password {
		http.SetCookie(w, &http.Cookie{Name: ssoCookie, Value: p.StudentId, Path: "/"})
	}
	// the real portal answers 200 with a script redirect either way
	w.Write([]byte(`<script>location.href="/";</script>`))
}

func (p *Portal) handleSso(status func() int, serviceCookie string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if code := status(); code != 0 {
			w.WriteHeader(code)
			return
		}
		if _, err := r.Cookie(ssoCookie); err == nil {
			http.SetCookie(w, &http.Cookie{Name: serviceCookie, Value: "1", Path: "/"})
		}
		w.Write([]byte("ok"))
	}
}

func (p *Portal) handleClassicPage(w http.ResponseWriter, r *http.Request) {
	if p.ClassicStatus != 0 {
		w.WriteHeader(p.ClassicStatus)
		return
	}
	if _, err := r.Cookie(classicCookie); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("<html>login required</html>"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.Write([]byte(p.StatusHtml))
}

func (p *Portal) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.addParams = append(p.addParams, strings.TrimPrefix(r.URL.RawQuery, "addParam="))
	p.mutex.Unlock()

	if p.UserInfoStatus != 0 {
		w.WriteHeader(p.UserInfoStatus)
		return
	}
	body, _ := io.ReadAll(r.Body)
	if r.Method != http.MethodPost || string(body) != "{}" || r.Header.Get("Origin") != sejong.SisOrigin {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := r.Cookie(sisCookie); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Write([]byte(p.UserInfoJson))
}
