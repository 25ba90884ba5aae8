package apns

import (
	"crypto/tls"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// LoadPEMCredentials loads a tls.Certificate from a PEM-encoded certificate
// and private key pair, the format Apple's developer portal issues by
// default.
func LoadPEMCredentials(certPath, keyPath string) (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("apns: loading PEM credentials: %w", err)
	}
	return cert, nil
}

// LoadPKCS12Credentials loads a tls.Certificate from a PKCS#12 (.p12)
// bundle, the format Apple's developer portal offers as an export
// alternative to a PEM pair.
func LoadPKCS12Credentials(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("apns: reading PKCS#12 file %q: %w", path, err)
	}

	key, leaf, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("apns: decoding PKCS#12 file: %w", err)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range caCerts {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}

	return cert, nil
}

// WithPEMCredentials is a ManagerOption that loads the Manager's TLS
// certificate from a PEM certificate/key pair, overriding whatever
// tls.Certificate was passed to NewManager.
func WithPEMCredentials(certPath, keyPath string) ManagerOption {
	return func(m *Manager) error {
		cert, err := LoadPEMCredentials(certPath, keyPath)
		if err != nil {
			return err
		}
		m.transportConfig.Certificate = cert
		m.feedbackConfig.Certificate = cert
		return nil
	}
}

// WithPKCS12Credentials is a ManagerOption that loads the Manager's TLS
// certificate from a PKCS#12 bundle, overriding whatever tls.Certificate
// was passed to NewManager.
func WithPKCS12Credentials(path, password string) ManagerOption {
	return func(m *Manager) error {
		cert, err := LoadPKCS12Credentials(path, password)
		if err != nil {
			return err
		}
		m.transportConfig.Certificate = cert
		m.feedbackConfig.Certificate = cert
		return nil
	}
}
