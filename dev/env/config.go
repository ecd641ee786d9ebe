package devenv

// SejongTestConfig is read from dev/.state/sejong_config.json5, it holds a
// real student login for the live portal tests.
type SejongTestConfig struct {
	StudentId string `json:"student_id"`
	Password  string `json:"password"`
	// SslVerification defaults to true when omitted.
	SslVerification *bool `json:"ssl_verification"`
}
