package session

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"sejongauth/lib/sejong"
)

// TrustAllTLSConfig accepts any certificate and host name. It only exists
// for portals behind broken certificate chains and is never the default.
func TrustAllTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
	}
}

func newTLSConfig(verify bool, caCertFile string) (*tls.Config, error) {
	if !verify {
		return TrustAllTLSConfig(), nil
	}
	if caCertFile == "" {
		return &tls.Config{}, nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	pem, err := os.ReadFile(caCertFile)
	if err != nil {
		return nil, sejong.Errorf(sejong.SslConfigurationError, "read ca cert file: %w", err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, sejong.Errorf(sejong.SslConfigurationError, "no certificates found in %s", caCertFile)
	}
	return &tls.Config{RootCAs: pool}, nil
}
