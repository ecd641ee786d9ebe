package session

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sejongauth/lib/restyutil"
	"sejongauth/lib/sejong"
	"sejongauth/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const (
	report_session_new     = "session.new"
	report_session_execute = "session.execute"
	report_session_retry   = "session.execute-with-retry"
)

type Options struct {
	// Timeout bounds connecting, writing the request and reading the response.
	Timeout         time.Duration
	SslVerification bool
	// CaCertFile is an optional PEM bundle trusted in addition to the system
	// roots, it is ignored when SslVerification is false.
	CaCertFile string
	// MaxRetry is the total number of attempts ExecuteWithRetry makes.
	MaxRetry         int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration

	Telemetry telemetry.API
	// Output receives a dump of every exchange, it can be nil.
	Output restyutil.InstrumentOutput
}

// OptionsFromConfig derives session options from a portal configuration.
func OptionsFromConfig(cfg sejong.Config, tel telemetry.API, output restyutil.InstrumentOutput) Options {
	cfg = cfg.WithDefaults()
	return Options{
		Timeout:         cfg.Timeout(),
		SslVerification: cfg.VerifySsl(),
		CaCertFile:      cfg.CaCertFile,
		MaxRetry:        cfg.MaxRetry,
		Telemetry:       tel,
		Output:          output,
	}
}

// Session is a cookie carrying HTTP client that lives for exactly one
// authentication attempt. Sessions must never be shared between attempts.
type Session struct {
	client   *resty.Client
	maxRetry int
	tel      telemetry.API
}

func New(opts Options) (*Session, error) {
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetry < 1 {
		opts.MaxRetry = 1
	}

	tlsConfig, err := newTLSConfig(opts.SslVerification, opts.CaCertFile)
	if err != nil {
		tel.ReportBroken(report_session_new, err)
		return nil, err
	}
	if !opts.SslVerification {
		tel.ReportWarning(report_session_new, "ssl verification is disabled")
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, sejong.Errorf(sejong.SessionError, "create cookie jar: %w", err)
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		ExpectContinueTimeout: time.Second,
		IdleConnTimeout:       30 * time.Second,
		MaxIdleConns:          10,
		ForceAttemptHTTP2:     true,
	}

	client := resty.New()
	client.SetTransport(transport)
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetLogger(telemetry.RestyLogger{})

	// only requests that opt in through ExecuteWithRetry are retried
	client.SetRetryCount(opts.MaxRetry - 1)
	if opts.RetryWaitTime > 0 {
		client.SetRetryWaitTime(opts.RetryWaitTime)
	}
	if opts.RetryMaxWaitTime > 0 {
		client.SetRetryMaxWaitTime(opts.RetryMaxWaitTime)
	}
	client.AddRetryCondition(func(*resty.Response, error) bool {
		return false
	})

	telemetry.InstrumentResty(client, "sejongauth/session/http", tel)
	restyutil.InstrumentClient(client, opts.Output)

	return &Session{
		client:   client,
		maxRetry: opts.MaxRetry,
		tel:      tel,
	}, nil
}

// R creates a request bound to ctx.
func (s *Session) R(ctx context.Context) *resty.Request {
	return s.client.R().SetContext(ctx)
}

// Client exposes the underlying client, ex. to read the cookie jar.
func (s *Session) Client() *resty.Client {
	return s.client
}

// Execute sends `req` once. Transport failures are returned as
// ConnectionTimeout or ConnectionFailed, any response (whatever its status)
// is returned as is.
func (s *Session) Execute(req *resty.Request, method, url string) (*resty.Response, error) {
	res, err := req.Execute(method, url)
	if err != nil {
		err = translateTransportError(method, url, 1, err)
		s.tel.ReportWarning(report_session_execute, method, url, err)
		return nil, err
	}
	return res, nil
}

// ExecuteWithRetry sends `req` up to MaxRetry times, trying again after a
// timeout or a non 2xx response.
//
// Exhausting every attempt on a timeout results in ConnectionTimeout,
// exhausting them on non 2xx responses results in ConnectionFailed. Any
// other transport failure is returned immediately as ConnectionFailed.
func (s *Session) ExecuteWithRetry(req *resty.Request, method, url string) (*resty.Response, error) {
	req.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return isTimeout(err)
		}
		return res != nil && !res.IsSuccess()
	})

	res, err := req.Execute(method, url)
	if err != nil {
		err = translateTransportError(method, url, req.Attempt, err)
		s.tel.ReportWarning(report_session_retry, method, url, req.Attempt, err)
		return nil, err
	}
	if !res.IsSuccess() {
		err := sejong.Errorf(
			sejong.ConnectionFailed,
			"%s %s: max retry exceeded after %d attempts (status %d)",
			method, url, req.Attempt, res.StatusCode(),
		)
		s.tel.ReportWarning(report_session_retry, method, url, req.Attempt, err)
		return nil, err
	}
	return res, nil
}
