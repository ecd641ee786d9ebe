// Package engine runs the portal flows for a set of credentials and merges
// what they return into one result.
//
// The classic reading portal (DHC) is the primary source, it is the system
// of record for identity and certifications and any failure there fails the
// call. The academic information system (SIS) is the secondary source, it
// only contributes contact details and its failures are reported and
// otherwise ignored.
package engine

import (
	"context"
	"fmt"
	"sejongauth/lib/restyutil"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/classic"
	"sejongauth/lib/sejong/sis"
	"sejongauth/lib/telemetry"
	"sejongauth/lib/timezone"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("sejongauth/engine")
var meter = otel.Meter("sejongauth/engine")

const (
	report_auth_start       = "auth.start"
	report_auth_done        = "auth.done"
	report_secondary_failed = "auth.secondary-failed"
)

const (
	variantMerged = "merged"
	variantBasic  = "basic"
	variantDhc    = "dhc"
	variantSis    = "sis"
)

// PrimarySource produces the identity and certification records, it is
// implemented by classic.Flow.
type PrimarySource interface {
	Scrape(ctx context.Context, creds sejong.Credentials) (classic.Result, error)
}

// SecondarySource produces the contact details, it is implemented by
// sis.Flow. ScrapeContact backs the merged result, Scrape the academic
// system only variants.
type SecondarySource interface {
	Scrape(ctx context.Context, creds sejong.Credentials) (sis.Result, error)
	ScrapeContact(ctx context.Context, creds sejong.Credentials) (sis.Result, error)
}

type Option func(e *Engine)

// WithTelemetry sets the api reports go to, the default is slog.
func WithTelemetry(tel telemetry.API) Option {
	return func(e *Engine) {
		e.tel = tel
	}
}

// WithClock replaces the clock used for AuthenticatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithOutput dumps every http exchange of both flows to `out`.
func WithOutput(out restyutil.InstrumentOutput) Option {
	return func(e *Engine) {
		e.output = out
	}
}

func WithPrimarySource(src PrimarySource) Option {
	return func(e *Engine) {
		e.primary = src
	}
}

func WithSecondarySource(src SecondarySource) Option {
	return func(e *Engine) {
		e.secondary = src
	}
}

// WithConcurrentSecondary starts the secondary flow alongside the primary
// one in Authenticate. A primary failure is still returned as soon as it
// happens, the secondary flow is cancelled.
func WithConcurrentSecondary() Option {
	return func(e *Engine) {
		e.concurrent = true
	}
}

type Engine struct {
	tel        telemetry.API
	now        func() time.Time
	output     restyutil.InstrumentOutput
	primary    PrimarySource
	secondary  SecondarySource
	concurrent bool

	attempts          metric.Int64Counter
	secondaryFailures metric.Int64Counter
}

func New(cfg sejong.Config, opts ...Option) (*Engine, error) {
	attempts, err := meter.Int64Counter(
		"sejong.auth.attempts",
		metric.WithDescription("The total amount of authentication attempts."),
	)
	if err != nil {
		return nil, err
	}
	secondaryFailures, err := meter.Int64Counter(
		"sejong.auth.secondary_failures",
		metric.WithDescription("The total amount of times the academic system could not be read."),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		now:               timezone.Now,
		attempts:          attempts,
		secondaryFailures: secondaryFailures,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tel = telemetry.NewScopedAPI("engine", e.tel)

	cfg = cfg.WithDefaults()
	if e.primary == nil {
		e.primary = classic.NewFlow(cfg, e.tel).WithOutput(e.output)
	}
	if e.secondary == nil {
		e.secondary = sis.NewFlow(cfg, e.tel).WithOutput(e.output)
	}
	return e, nil
}

// begin validates the credentials and counts the attempt, no request is
// made for invalid credentials.
func (e *Engine) begin(ctx context.Context, variant string, creds sejong.Credentials) error {
	e.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", variant)))
	err := creds.Validate()
	if err != nil {
		return err
	}
	e.tel.ReportDebug(report_auth_start, variant, creds)
	return nil
}

// secondaryOutcome is whatever the secondary source returned, a failure
// is part of the outcome rather than an error of the call.
type secondaryOutcome struct {
	result sis.Result
	err    error
}

func (e *Engine) runSecondary(ctx context.Context, creds sejong.Credentials) (outcome secondaryOutcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = secondaryOutcome{
				err: fmt.Errorf("secondary source panicked: %v", recovered),
			}
		}
	}()
	result, err := e.secondary.ScrapeContact(ctx, creds)
	return secondaryOutcome{result: result, err: err}
}

// merge joins the primary result with the secondary outcome. The primary
// student info is authoritative, the secondary source only ever adds
// ContactInfo and a failed secondary outcome leaves it nil.
func (e *Engine) merge(ctx context.Context, primary classic.Result, secondary secondaryOutcome) sejong.AuthResult {
	result := sejong.AuthResult{
		Success:         true,
		StudentInfo:     primary.StudentInfo,
		ClassicReading:  primary.ClassicReading,
		AuthenticatedAt: e.now(),
		RawHtml:         primary.Html,
	}
	if secondary.err != nil {
		e.secondaryFailures.Add(ctx, 1)
		e.tel.ReportWarning(report_secondary_failed, sejong.KindOf(secondary.err).String(), secondary.err)
		return result
	}
	contact := secondary.result.ContactInfo
	result.ContactInfo = &contact
	return result
}

func (e *Engine) authenticate(ctx context.Context, creds sejong.Credentials) (sejong.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Authenticate")
	defer span.End()

	err := e.begin(ctx, variantMerged, creds)
	if err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return sejong.AuthResult{}, err
	}

	if !e.concurrent {
		primary, err := e.primary.Scrape(ctx, creds)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "primary source failed")
			return sejong.AuthResult{}, err
		}
		result := e.merge(ctx, primary, e.runSecondary(ctx, creds))
		e.tel.ReportDebug(report_auth_done, variantMerged, creds, result.ContactInfo != nil)
		return result, nil
	}

	secondaryCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	// buffered so the goroutine can finish after an early return
	outcome := make(chan secondaryOutcome, 1)
	go func() {
		outcome <- e.runSecondary(secondaryCtx, creds)
	}()

	primary, err := e.primary.Scrape(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "primary source failed")
		return sejong.AuthResult{}, err
	}
	result := e.merge(ctx, primary, <-outcome)
	e.tel.ReportDebug(report_auth_done, variantMerged, creds, result.ContactInfo != nil)
	return result, nil
}

// Authenticate logs into both sources and merges their records. Only the
// primary source can fail the call, ContactInfo is nil when the secondary
// source failed.
func (e *Engine) Authenticate(ctx context.Context, creds sejong.Credentials) (sejong.AuthResult, error) {
	result, err := e.authenticate(ctx, creds)
	result.RawHtml = ""
	return result, err
}

// AuthenticateRaw is Authenticate that keeps the status page html.
func (e *Engine) AuthenticateRaw(ctx context.Context, creds sejong.Credentials) (sejong.AuthResult, error) {
	return e.authenticate(ctx, creds)
}

func (e *Engine) authenticateDHC(ctx context.Context, variant string, creds sejong.Credentials) (classic.Result, error) {
	ctx, span := tracer.Start(ctx, "AuthenticateDHC")
	defer span.End()
	span.SetAttributes(attribute.String("variant", variant))

	err := e.begin(ctx, variant, creds)
	if err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return classic.Result{}, err
	}
	result, err := e.primary.Scrape(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classic reading portal failed")
		return classic.Result{}, err
	}
	e.tel.ReportDebug(report_auth_done, variant, creds)
	return result, nil
}

func (e *Engine) dhcResult(result classic.Result) sejong.DhcAuthResult {
	return sejong.DhcAuthResult{
		Success:         true,
		StudentInfo:     result.StudentInfo,
		ClassicReading:  result.ClassicReading,
		AuthenticatedAt: e.now(),
		RawHtml:         result.Html,
	}
}

// AuthenticateDHC only reads the classic reading portal.
func (e *Engine) AuthenticateDHC(ctx context.Context, creds sejong.Credentials) (sejong.DhcAuthResult, error) {
	result, err := e.authenticateDHC(ctx, variantDhc, creds)
	if err != nil {
		return sejong.DhcAuthResult{}, err
	}
	out := e.dhcResult(result)
	out.RawHtml = ""
	return out, nil
}

func (e *Engine) AuthenticateDHCRaw(ctx context.Context, creds sejong.Credentials) (sejong.DhcAuthResult, error) {
	result, err := e.authenticateDHC(ctx, variantDhc, creds)
	if err != nil {
		return sejong.DhcAuthResult{}, err
	}
	return e.dhcResult(result), nil
}

// AuthenticateBasic only returns the student info of the classic reading
// portal.
func (e *Engine) AuthenticateBasic(ctx context.Context, creds sejong.Credentials) (sejong.StudentInfo, error) {
	result, err := e.authenticateDHC(ctx, variantBasic, creds)
	if err != nil {
		return sejong.StudentInfo{}, err
	}
	return result.StudentInfo, nil
}

func (e *Engine) authenticateSIS(ctx context.Context, creds sejong.Credentials) (sejong.SisAuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthenticateSIS")
	defer span.End()

	err := e.begin(ctx, variantSis, creds)
	if err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return sejong.SisAuthResult{}, err
	}
	result, err := e.secondary.Scrape(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "academic system failed")
		return sejong.SisAuthResult{}, err
	}
	e.tel.ReportDebug(report_auth_done, variantSis, creds)
	return sejong.SisAuthResult{
		Success:         true,
		StudentInfo:     result.StudentInfo,
		ContactInfo:     result.ContactInfo,
		AuthenticatedAt: e.now(),
		RawJson:         result.Json,
	}, nil
}

// AuthenticateSIS only reads the academic information system, unlike in
// Authenticate its failures are returned.
func (e *Engine) AuthenticateSIS(ctx context.Context, creds sejong.Credentials) (sejong.SisAuthResult, error) {
	result, err := e.authenticateSIS(ctx, creds)
	result.RawJson = ""
	return result, err
}

func (e *Engine) AuthenticateSISRaw(ctx context.Context, creds sejong.Credentials) (sejong.SisAuthResult, error) {
	return e.authenticateSIS(ctx, creds)
}
