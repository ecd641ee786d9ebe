package sejong

import "time"

const (
	DefaultPortalLoginUrl   = "https://portal.sejong.ac.kr/jsp/login/login_action.jsp"
	DefaultSsoRedirectUrl   = "http://classic.sejong.ac.kr/_custom/sejong/sso/sso-return.jsp?returnUrl=https://classic.sejong.ac.kr/classic/index.do"
	DefaultClassicStatusUrl = "https://classic.sejong.ac.kr/classic/reading/status.do"
	DefaultSisSsoUrl        = "https://sjpt.sejong.ac.kr/main/view/Login/doSsoLogin.do?p="
	DefaultSisUserInfoUrl   = "https://sjpt.sejong.ac.kr/main/sys/UserInfo/initUserInfo.do"

	// PortalHost, PortalOrigin and SisOrigin are sent verbatim as headers, the
	// portal rejects logins that do not look like they came from its own pages.
	PortalHost   = "portal.sejong.ac.kr"
	PortalOrigin = "https://portal.sejong.ac.kr"
	SisOrigin    = "https://sjpt.sejong.ac.kr"

	// ClassicReturnUrl and SisReturnUrl are the rtUrl values of the login form.
	ClassicReturnUrl = "classic.sejong.ac.kr"
	SisReturnUrl     = "sjpt.sejong.ac.kr/main/view/Login/doSsoLogin.do?p="
)

// Config configures every outbound call made while authenticating.
type Config struct {
	SslVerification *bool `json:"ssl_verification"`
	TimeoutSeconds  int   `json:"timeout_seconds"`
	MaxRetry        int   `json:"max_retry"`
	// CaCertFile is an optional PEM bundle appended to the system roots.
	CaCertFile string `json:"ca_cert_file"`

	PortalLoginUrl   string `json:"portal_login_url"`
	SsoRedirectUrl   string `json:"sso_redirect_url"`
	ClassicStatusUrl string `json:"classic_status_url"`
	SisSsoUrl        string `json:"sis_sso_url"`
	SisUserInfoUrl   string `json:"sis_user_info_url"`
}

func DefaultConfig() Config {
	verify := true
	return Config{
		SslVerification:  &verify,
		TimeoutSeconds:   10,
		MaxRetry:         3,
		PortalLoginUrl:   DefaultPortalLoginUrl,
		SsoRedirectUrl:   DefaultSsoRedirectUrl,
		ClassicStatusUrl: DefaultClassicStatusUrl,
		SisSsoUrl:        DefaultSisSsoUrl,
		SisUserInfoUrl:   DefaultSisUserInfoUrl,
	}
}

// WithDefaults fills every zero field with its default.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.SslVerification == nil {
		c.SslVerification = d.SslVerification
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = d.MaxRetry
	}
	if c.PortalLoginUrl == "" {
		c.PortalLoginUrl = d.PortalLoginUrl
	}
	if c.SsoRedirectUrl == "" {
		c.SsoRedirectUrl = d.SsoRedirectUrl
	}
	if c.ClassicStatusUrl == "" {
		c.ClassicStatusUrl = d.ClassicStatusUrl
	}
	if c.SisSsoUrl == "" {
		c.SisSsoUrl = d.SisSsoUrl
	}
	if c.SisUserInfoUrl == "" {
		c.SisUserInfoUrl = d.SisUserInfoUrl
	}
	return c
}

// VerifySsl reports whether certificates should be verified, the default is
// true.
func (c Config) VerifySsl() bool {
	return c.SslVerification == nil || *c.SslVerification
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
