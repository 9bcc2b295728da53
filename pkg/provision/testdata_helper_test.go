package provision

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"howett.net/plist"
)

// discardLogger returns a logger whose output is thrown away, so tests
// exercising soft-failure paths stay quiet.
func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeVerifier returns canned verifier output without touching the file.
type fakeVerifier struct {
	payload []byte
	err     error
}

func (f fakeVerifier) DecodeSigned(context.Context, string) ([]byte, error) {
	return f.payload, f.err
}

// plainFileVerifier treats the file contents as the already-decoded
// payload. Repository tests use it so fixture files can be plain XML.
type plainFileVerifier struct{}

func (plainFileVerifier) DecodeSigned(_ context.Context, filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	return data, nil
}

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return key
}

// makeCert builds a self-signed certificate and returns its DER bytes along
// with the key that signed it.
func makeCert(t *testing.T, subject pkix.Name, extraExts ...pkix.Extension) ([]byte, *ecdsa.PrivateKey) {
	t.Helper()
	key := testKey(t)
	template := &x509.Certificate{
		SerialNumber:    big.NewInt(1),
		Subject:         subject,
		NotBefore:       time.Now().Add(-time.Hour),
		NotAfter:        time.Now().Add(24 * time.Hour),
		ExtraExtensions: extraExts,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create test certificate: %v", err)
	}
	return der, key
}

// buildProfilePayload marshals a minimal provisioning profile plist the way
// the security tool would emit it after stripping the signature.
func buildProfilePayload(t *testing.T, name string, created, expires time.Time, entitlements map[string]interface{}, certs [][]byte) []byte {
	t.Helper()
	doc := map[string]interface{}{
		"Name":           name,
		"CreationDate":   created,
		"ExpirationDate": expires,
		"Entitlements":   entitlements,
	}
	if certs != nil {
		doc["DeveloperCertificates"] = certs
	}
	data, err := plist.Marshal(doc, plist.XMLFormat)
	if err != nil {
		t.Fatalf("failed to marshal profile payload: %v", err)
	}
	return data
}
