package sejongauth

import (
	"errors"
	"sejongauth/lib/sejong"

	"connectrpc.com/connect"
)

// CodeHeader carries the stable error code (ex. SEJONG_AUTH_007) of a
// failed call.
const CodeHeader = "Sejong-Auth-Code"

var kindCodes = map[sejong.Kind]connect.Code{
	sejong.InvalidInput:          connect.CodeInvalidArgument,
	sejong.InvalidCredentials:    connect.CodeUnauthenticated,
	sejong.AuthenticationFailed:  connect.CodeUnauthenticated,
	sejong.ConnectionFailed:      connect.CodeUnavailable,
	sejong.ConnectionTimeout:     connect.CodeDeadlineExceeded,
	sejong.SessionError:          connect.CodeUnavailable,
	sejong.DataFetchFailed:       connect.CodeUnavailable,
	sejong.ParseError:            connect.CodeInternal,
	sejong.SslConfigurationError: connect.CodeFailedPrecondition,
}

// ConnectError converts an engine error into a connect error with the
// matching code.
func ConnectError(err error) *connect.Error {
	kind := sejong.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		code = connect.CodeUnknown
	}
	cerr := connect.NewError(code, err)
	if kind != sejong.KindUnknown {
		cerr.Meta().Set(CodeHeader, kind.Code())
	}
	return cerr
}

// KindFromError recovers the error kind from an error returned by a
// client, it is KindUnknown for errors that did not come from the engine.
func KindFromError(err error) sejong.Kind {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return sejong.KindUnknown
	}
	return sejong.KindFromCode(cerr.Meta().Get(CodeHeader))
}
