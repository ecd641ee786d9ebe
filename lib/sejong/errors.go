package sejong

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure that can occur while authenticating
// against the portal. Every Kind carries a stable code and a user facing
// message.
type Kind uint8

const (
	KindUnknown Kind = iota
	ConnectionFailed
	ConnectionTimeout
	InvalidCredentials
	SessionError
	DataFetchFailed
	ParseError
	SslConfigurationError
	InvalidInput
	AuthenticationFailed
)

type kindInfo struct {
	name    string
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	KindUnknown:           {name: "unknown", code: "SEJONG_AUTH_000", message: "알 수 없는 오류가 발생했습니다."},
	ConnectionFailed:      {name: "connection_failed", code: "SEJONG_AUTH_001", message: "세종대학교 포털에 연결할 수 없습니다."},
	ConnectionTimeout:     {name: "connection_timeout", code: "SEJONG_AUTH_002", message: "세종대학교 포털 연결 시간이 초과되었습니다."},
	InvalidCredentials:    {name: "invalid_credentials", code: "SEJONG_AUTH_003", message: "학번 또는 비밀번호가 올바르지 않습니다."},
	SessionError:          {name: "session_error", code: "SEJONG_AUTH_004", message: "세션 처리 중 오류가 발생했습니다."},
	DataFetchFailed:       {name: "data_fetch_failed", code: "SEJONG_AUTH_005", message: "학생 정보를 가져오는데 실패했습니다."},
	ParseError:            {name: "parse_error", code: "SEJONG_AUTH_006", message: "학생 정보 파싱 중 오류가 발생했습니다."},
	SslConfigurationError: {name: "ssl_configuration_error", code: "SEJONG_AUTH_007", message: "SSL 설정 중 오류가 발생했습니다."},
	InvalidInput:          {name: "invalid_input", code: "SEJONG_AUTH_008", message: "입력값이 유효하지 않습니다."},
	AuthenticationFailed:  {name: "authentication_failed", code: "SEJONG_AUTH_009", message: "세종대학교 포털 인증에 실패했습니다. 학번과 비밀번호를 확인해주세요."},
}

func (k Kind) info() kindInfo {
	info, ok := kinds[k]
	if !ok {
		return kinds[KindUnknown]
	}
	return info
}

func (k Kind) String() string {
	return k.info().name
}

// Code returns the stable error code, ex. SEJONG_AUTH_001.
func (k Kind) Code() string {
	return k.info().code
}

// Message returns the default user facing message.
func (k Kind) Message() string {
	return k.info().message
}

// Error is the single error type returned by every sejong package.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Errorf creates an *Error of the given kind with a formatted detail, the
// cause is taken from the first %w verb if there is one.
func Errorf(kind Kind, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{
		Kind:   kind,
		Detail: wrapped.Error(),
		Err:    errors.Unwrap(wrapped),
	}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s", e.Kind.Code(), e.Kind.Message())
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind.Code(), e.Kind.Message(), e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind that carries no detail, which
// makes the Err* sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Detail == "" && t.Err == nil
}

var (
	ErrConnectionFailed     = &Error{Kind: ConnectionFailed}
	ErrConnectionTimeout    = &Error{Kind: ConnectionTimeout}
	ErrInvalidCredentials   = &Error{Kind: InvalidCredentials}
	ErrSessionError         = &Error{Kind: SessionError}
	ErrDataFetchFailed      = &Error{Kind: DataFetchFailed}
	ErrParseError           = &Error{Kind: ParseError}
	ErrSslConfiguration     = &Error{Kind: SslConfigurationError}
	ErrInvalidInput         = &Error{Kind: InvalidInput}
	ErrAuthenticationFailed = &Error{Kind: AuthenticationFailed}
)

// KindOf returns the kind of the first *Error in err's chain or KindUnknown.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

// IsUserError reports whether err was caused by what the caller supplied
// rather than by the portal or the network.
func IsUserError(err error) bool {
	switch KindOf(err) {
	case InvalidInput, InvalidCredentials, AuthenticationFailed:
		return true
	}
	return false
}

// KindFromCode is the inverse of Kind.Code, unknown codes give KindUnknown.
func KindFromCode(code string) Kind {
	for kind, info := range kinds {
		if info.code == code {
			return kind
		}
	}
	return KindUnknown
}
