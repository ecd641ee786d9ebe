// Package portal implements the single sign on login shared by every
// service behind portal.sejong.ac.kr.
package portal

import (
	"context"
	"net/http"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sejongauth/portal")

// LoginForm builds the form fields of the portal login, `returnUrl` decides
// which service the portal issues a ticket for.
func LoginForm(creds sejong.Credentials, returnUrl string) map[string]string {
	return map[string]string{
		"mainLogin": "N",
		"rtUrl":     returnUrl,
		"id":        creds.StudentId,
		"password":  creds.Password,
	}
}

// Login posts the login form to `loginUrl`, leaving the portal session
// cookies in `s`. The response body is read and discarded, the portal does
// not report bad credentials here, so a successful Login does not mean the
// credentials are correct.
func Login(ctx context.Context, s *session.Session, loginUrl, returnUrl string, creds sejong.Credentials) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()
	span.SetAttributes(attribute.String("return_url", returnUrl))

	req := s.R(ctx).
		SetHeader("Host", sejong.PortalHost).
		SetHeader("Referer", sejong.PortalOrigin).
		SetHeader("Cookie", "chknos=false").
		SetFormData(LoginForm(creds, returnUrl))

	res, err := s.ExecuteWithRetry(req, http.MethodPost, loginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login request failed")
		return err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	return nil
}
