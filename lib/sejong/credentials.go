package sejong

import (
	"fmt"
	"log/slog"
	"strings"
)

// Credentials are the portal login. They are passed through a single
// authentication and are never stored or logged.
type Credentials struct {
	StudentId string
	Password  string
}

// Validate rejects blank credentials, whitespace only values count as blank.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.StudentId) == "" {
		return Errorf(InvalidInput, "학번이 비어있습니다.")
	}
	if strings.TrimSpace(c.Password) == "" {
		return Errorf(InvalidInput, "비밀번호가 비어있습니다.")
	}
	return nil
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{StudentId: %s, Password: <redacted>}", c.StudentId)
}

func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("student_id", c.StudentId))
}
