package provision

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	gop12 "software.sslmate.com/src/go-pkcs12"
)

// SigningIdentity is a developer certificate plus private key loaded from a
// PKCS#12 archive. Pairing an identity with the profile that embeds its
// certificate is the caller's last step before handing off to a signing
// pipeline.
type SigningIdentity struct {
	Certificate *x509.Certificate
	PrivateKey  interface{}
	CertChain   []*x509.Certificate
}

// LoadSigningIdentity decodes a .p12 archive into a signing identity.
func LoadSigningIdentity(p12Data []byte, password string) (*SigningIdentity, error) {
	privateKey, cert, caCerts, err := gop12.DecodeChain(p12Data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode P12: %w", err)
	}

	chain := append([]*x509.Certificate{cert}, caCerts...)
	return &SigningIdentity{
		Certificate: cert,
		PrivateKey:  privateKey,
		CertChain:   chain,
	}, nil
}

// Fingerprint returns the certificate's hex SHA-1 fingerprint.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// MatchesCertificate reports whether the given certificate is one of the
// profile's developer certificates.
func (p *ProvisioningProfile) MatchesCertificate(cert *x509.Certificate) bool {
	fp := Fingerprint(cert)
	for _, c := range p.Certificates {
		if c.Fingerprint == fp {
			return true
		}
	}
	return false
}

// FindProfileForIdentity returns the first profile embedding the identity's
// certificate, or nil when none does. Profiles are expected in the order
// LoadAll returns them, so the newest matching profile wins.
func FindProfileForIdentity(profiles []*ProvisioningProfile, identity *SigningIdentity) *ProvisioningProfile {
	for _, profile := range profiles {
		if profile.MatchesCertificate(identity.Certificate) {
			return profile
		}
	}
	return nil
}
