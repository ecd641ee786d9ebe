// Package sejongauth exposes the engine as a connect service. Messages are
// google.protobuf.Struct values so both the json and the proto codecs work
// without generated stubs.
package sejongauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/store"
	"sejongauth/lib/telemetry"
	"sejongauth/lib/timezone"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/protobuf/types/known/structpb"
)

var tracer = otel.Tracer("services/sejongauth")

const report_snapshot_push = "snapshot.push"

const (
	ServiceName = "sejongauth.v1.AuthService"

	AuthenticateProcedure    = "/" + ServiceName + "/Authenticate"
	AuthenticateDHCProcedure = "/" + ServiceName + "/AuthenticateDHC"
	AuthenticateSISProcedure = "/" + ServiceName + "/AuthenticateSIS"
)

// Authenticator is implemented by *engine.Engine.
type Authenticator interface {
	Authenticate(ctx context.Context, creds sejong.Credentials) (sejong.AuthResult, error)
	AuthenticateRaw(ctx context.Context, creds sejong.Credentials) (sejong.AuthResult, error)
	AuthenticateDHC(ctx context.Context, creds sejong.Credentials) (sejong.DhcAuthResult, error)
	AuthenticateDHCRaw(ctx context.Context, creds sejong.Credentials) (sejong.DhcAuthResult, error)
	AuthenticateSIS(ctx context.Context, creds sejong.Credentials) (sejong.SisAuthResult, error)
	AuthenticateSISRaw(ctx context.Context, creds sejong.Credentials) (sejong.SisAuthResult, error)
}

type Service struct {
	auth  Authenticator
	store *store.Store
	tel   telemetry.API
}

func NewService(auth Authenticator) Service {
	return Service{
		auth: auth,
		tel:  telemetry.NewScopedAPI("sejongauth", telemetry.SlogAPI{}),
	}
}

func (s Service) WithTelemetry(tel telemetry.API) Service {
	s.tel = telemetry.NewScopedAPI("sejongauth", tel)
	return s
}

// WithStore makes the service keep a snapshot of every successful
// Authenticate call.
func (s Service) WithStore(st store.Store) Service {
	s.store = &st
	return s
}

// request is the shape of every request message:
// {"student_id": "...", "password": "...", "raw": false}
type request struct {
	Creds sejong.Credentials
	Raw   bool
}

func readRequest(msg *structpb.Struct) request {
	fields := msg.GetFields()
	return request{
		Creds: sejong.Credentials{
			StudentId: fields["student_id"].GetStringValue(),
			Password:  fields["password"].GetStringValue(),
		},
		Raw: fields["raw"].GetBoolValue(),
	}
}

// toStruct converts a result to a Struct through its json form so the
// field names match the json tags.
func toStruct(value any) (*structpb.Struct, error) {
	serialized, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	err = json.Unmarshal(serialized, &fields)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func respond(value any) (*connect.Response[structpb.Struct], error) {
	msg, err := toStruct(value)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encode result: %w", err))
	}
	return connect.NewResponse(msg), nil
}

func (s Service) Authenticate(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ctx, span := tracer.Start(ctx, "Authenticate")
	defer span.End()

	r := readRequest(req.Msg)
	span.SetAttributes(attribute.String("student_id", r.Creds.StudentId))

	var result sejong.AuthResult
	var err error
	if r.Raw {
		result, err = s.auth.AuthenticateRaw(ctx, r.Creds)
	} else {
		result, err = s.auth.Authenticate(ctx, r.Creds)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return nil, ConnectError(err)
	}

	if s.store != nil {
		err = s.store.Push(ctx, store.PushRequest{
			Time:    timezone.Now(),
			Variant: "merged",
			Result:  result,
		})
		if err != nil {
			// the student is authenticated either way
			span.RecordError(err)
			s.tel.ReportBroken(report_snapshot_push, r.Creds.StudentId, err)
		}
	}
	return respond(result)
}

func (s Service) AuthenticateDHC(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ctx, span := tracer.Start(ctx, "AuthenticateDHC")
	defer span.End()

	r := readRequest(req.Msg)
	span.SetAttributes(attribute.String("student_id", r.Creds.StudentId))

	var result sejong.DhcAuthResult
	var err error
	if r.Raw {
		result, err = s.auth.AuthenticateDHCRaw(ctx, r.Creds)
	} else {
		result, err = s.auth.AuthenticateDHC(ctx, r.Creds)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return nil, ConnectError(err)
	}
	return respond(result)
}

func (s Service) AuthenticateSIS(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ctx, span := tracer.Start(ctx, "AuthenticateSIS")
	defer span.End()

	r := readRequest(req.Msg)
	span.SetAttributes(attribute.String("student_id", r.Creds.StudentId))

	var result sejong.SisAuthResult
	var err error
	if r.Raw {
		result, err = s.auth.AuthenticateSISRaw(ctx, r.Creds)
	} else {
		result, err = s.auth.AuthenticateSIS(ctx, r.Creds)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return nil, ConnectError(err)
	}
	return respond(result)
}

// NewHandler returns the path prefix and handler that serve the service.
func NewHandler(svc Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AuthenticateProcedure, connect.NewUnaryHandler(AuthenticateProcedure, svc.Authenticate, opts...))
	mux.Handle(AuthenticateDHCProcedure, connect.NewUnaryHandler(AuthenticateDHCProcedure, svc.AuthenticateDHC, opts...))
	mux.Handle(AuthenticateSISProcedure, connect.NewUnaryHandler(AuthenticateSISProcedure, svc.AuthenticateSIS, opts...))
	return "/" + ServiceName + "/", mux
}
