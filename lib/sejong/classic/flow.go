// Package classic authenticates against the classic reading certification
// site (DHC) and parses its status page.
package classic

import (
	"context"
	"net/http"
	"sejongauth/lib/restyutil"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/portal"
	"sejongauth/lib/sejong/session"
	"sejongauth/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sejongauth/classic")

const (
	report_flow_login  = "flow.login"
	report_flow_sso    = "flow.sso"
	report_flow_status = "flow.fetch-status"
	report_flow_parse  = "flow.parse"
)

// Result is the parsed status page along with the html it came from.
type Result struct {
	StudentInfo    sejong.StudentInfo
	ClassicReading sejong.ClassicReading
	Html           string
}

// Flow logs into the portal with the classic reading site as the return
// url, follows the SSO handoff and fetches the certification status page.
type Flow struct {
	cfg    sejong.Config
	tel    telemetry.API
	output restyutil.InstrumentOutput
}

// NewFlow creates a flow, `tel` can be nil.
func NewFlow(cfg sejong.Config, tel telemetry.API) Flow {
	return Flow{
		cfg: cfg.WithDefaults(),
		tel: telemetry.NewScopedAPI("classic_flow", tel),
	}
}

// WithOutput returns a copy of the flow that dumps every exchange to `out`.
func (f Flow) WithOutput(out restyutil.InstrumentOutput) Flow {
	f.output = out
	return f
}

// FetchStatusPage runs the three step login and returns the raw status page.
func (f Flow) FetchStatusPage(ctx context.Context, creds sejong.Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchStatusPage")
	defer span.End()

	s, err := session.New(session.OptionsFromConfig(f.cfg, f.tel, f.output))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return "", err
	}

	err = portal.Login(ctx, s, f.cfg.PortalLoginUrl, sejong.ClassicReturnUrl, creds)
	if err != nil {
		f.report(report_flow_login, err)
		span.SetStatus(codes.Error, "portal login failed")
		return "", err
	}

	err = f.followSso(ctx, s)
	if err != nil {
		f.report(report_flow_sso, err)
		span.SetStatus(codes.Error, "sso redirect failed")
		return "", err
	}

	html, err := f.fetchStatus(ctx, s)
	if err != nil {
		f.report(report_flow_status, err)
		span.SetStatus(codes.Error, "failed to fetch status page")
		return "", err
	}
	return html, nil
}

func (f Flow) followSso(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "followSso")
	defer span.End()

	res, err := s.Execute(s.R(ctx), http.MethodGet, f.cfg.SsoRedirectUrl)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if !res.IsSuccess() {
		return sejong.Errorf(sejong.SessionError, "SSO 리다이렉트 실패: %d", res.StatusCode())
	}
	return nil
}

func (f Flow) fetchStatus(ctx context.Context, s *session.Session) (string, error) {
	ctx, span := tracer.Start(ctx, "fetchStatus")
	defer span.End()

	res, err := s.Execute(s.R(ctx), http.MethodGet, f.cfg.ClassicStatusUrl)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))

	switch {
	case res.StatusCode() == http.StatusUnauthorized:
		return "", sejong.Errorf(sejong.AuthenticationFailed, "status page returned 401")
	case res.StatusCode() != http.StatusOK || len(res.Body()) == 0:
		return "", sejong.Errorf(sejong.DataFetchFailed, "고전독서 페이지 요청 실패: %d", res.StatusCode())
	}
	return string(res.Body()), nil
}

func (f Flow) report(id string, err error) {
	if sejong.IsUserError(err) {
		f.tel.ReportWarning(id, err)
		return
	}
	f.tel.ReportBroken(id, err)
}

// Scrape fetches the status page and parses it.
func (f Flow) Scrape(ctx context.Context, creds sejong.Credentials) (Result, error) {
	html, err := f.FetchStatusPage(ctx, creds)
	if err != nil {
		return Result{}, err
	}

	_, span := tracer.Start(ctx, "parse")
	defer span.End()

	doc, err := ParseDocument(html)
	if err != nil {
		f.report(report_flow_parse, err)
		span.SetStatus(codes.Error, "failed to parse status page")
		return Result{}, err
	}
	info, err := StudentInfoFromDocument(doc)
	if err != nil {
		f.report(report_flow_parse, err)
		span.SetStatus(codes.Error, "failed to parse student info")
		return Result{}, err
	}
	return Result{
		StudentInfo:    info,
		ClassicReading: ClassicReadingFromDocument(doc),
		Html:           html,
	}, nil
}
