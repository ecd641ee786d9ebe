// Package sis authenticates against the academic information system (SIS)
// and reads the student's contact details from its user info api.
package sis

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

var tracer = otel.Tracer("sejongauth/sis")

const (
	report_flow_login     = "flow.login"
	report_flow_sso       = "flow.sso"
	report_flow_user_info = "flow.fetch-user-info"
	report_flow_parse     = "flow.parse"
)

type Result struct {
	StudentInfo sejong.StudentInfo
	ContactInfo sejong.ContactInfo
	Json        string
}

// Flow logs into the portal with the academic system as the return url,
// opens the SSO page and calls initUserInfo.
type Flow struct {
	cfg    sejong.Config
	tel    telemetry.API
	output restyutil.InstrumentOutput
}

// NewFlow creates a flow, `tel` can be nil.
func NewFlow(cfg sejong.Config, tel telemetry.API) Flow {
	return Flow{
		cfg: cfg.WithDefaults(),
		tel: telemetry.NewScopedAPI("sis_flow", tel),
	}
}

func (f Flow) WithOutput(out restyutil.InstrumentOutput) Flow {
	f.output = out
	return f
}

// FetchUserInfo runs the three step login and returns the raw json.
func (f Flow) FetchUserInfo(ctx context.Context, creds sejong.Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchUserInfo")
	defer span.End()

	s, err := session.New(session.OptionsFromConfig(f.cfg, f.tel, f.output))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return "", err
	}

	err = portal.Login(ctx, s, f.cfg.PortalLoginUrl, sejong.SisReturnUrl, creds)
	if err != nil {
		f.report(report_flow_login, err)
		span.SetStatus(codes.Error, "portal login failed")
		return "", err
	}

	err = f.openSsoPage(ctx, s)
	if err != nil {
		f.report(report_flow_sso, err)
		span.SetStatus(codes.Error, "sso page failed")
		return "", err
	}

	raw, err := f.fetchUserInfo(ctx, s)
	if err != nil {
		f.report(report_flow_user_info, err)
		span.SetStatus(codes.Error, "failed to fetch user info")
		return "", err
	}
	return raw, nil
}

func (f Flow) openSsoPage(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "openSsoPage")
	defer span.End()

	req := s.R(ctx).SetHeader("Referer", sejong.PortalOrigin)
	res, err := s.Execute(req, http.MethodGet, f.cfg.SisSsoUrl)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if !res.IsSuccess() {
		return sejong.Errorf(sejong.SessionError, "SIS SSO 페이지 접근 실패: %d", res.StatusCode())
	}
	return nil
}

func (f Flow) fetchUserInfo(ctx context.Context, s *session.Session) (string, error) {
	ctx, span := tracer.Start(ctx, "fetchUserInfo")
	defer span.End()

	addParam, err := EncodeAddParam(EmptyAddParam())
	if err != nil {
		return "", sejong.Errorf(sejong.DataFetchFailed, "encode addParam: %w", err)
	}

	// addParam is appended as is, base64 padding is not escaped
	req := s.R(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json; charset=UTF-8").
		SetHeader("Referer", f.cfg.SisSsoUrl).
		SetHeader("Origin", sejong.SisOrigin).
		SetBody("{}")
	res, err := s.Execute(req, http.MethodPost, f.cfg.SisUserInfoUrl+"?addParam="+addParam)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))

	switch {
	case res.StatusCode() == http.StatusUnauthorized:
		return "", sejong.Errorf(sejong.AuthenticationFailed, "initUserInfo returned 401")
	case res.StatusCode() != http.StatusOK || len(res.Body()) == 0:
		return "", sejong.Errorf(sejong.DataFetchFailed, "initUserInfo API 요청 실패: %d", res.StatusCode())
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

func (f Flow) scrape(ctx context.Context, creds sejong.Credentials, identity bool) (Result, error) {
	raw, err := f.FetchUserInfo(ctx, creds)
	if err != nil {
		return Result{}, err
	}

	_, span := tracer.Start(ctx, "parse")
	defer span.End()

	doc, err := ParseDocument(raw)
	if err != nil {
		f.report(report_flow_parse, err)
		span.SetStatus(codes.Error, "failed to parse user info")
		return Result{}, err
	}
	result := Result{
		ContactInfo: doc.ContactInfo(),
		Json:        raw,
	}
	if !identity {
		return result, nil
	}
	result.StudentInfo, err = doc.StudentInfo()
	if err != nil {
		f.report(report_flow_parse, err)
		span.SetStatus(codes.Error, "failed to parse student info")
		return Result{}, err
	}
	return result, nil
}

// Scrape fetches the user info and parses both the identity and the
// contact fields out of it.
func (f Flow) Scrape(ctx context.Context, creds sejong.Credentials) (Result, error) {
	return f.scrape(ctx, creds, true)
}

// ScrapeContact only parses the contact fields, a response without
// dm_UserInfo still succeeds and StudentInfo is left empty.
func (f Flow) ScrapeContact(ctx context.Context, creds sejong.Credentials) (Result, error) {
	return f.scrape(ctx, creds, false)
}
