package provision

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedCertificate indicates a developer certificate that does not
// parse as X.509 or carries no subject summary. The certificate is dropped
// from its profile; the profile itself stays usable.
var ErrMalformedCertificate = errors.New("malformed developer certificate")

// oidInvalidityDate is the X.509 invalidity-date extension (id-ce 24). It
// records when the issuing authority invalidated the certificate, distinct
// from the notAfter validity bound.
var oidInvalidityDate = asn1.ObjectIdentifier{2, 5, 29, 24}

// invalidityDateLayout matches the localized (zh_CN) string some toolchains
// emit for the invalidity-date extension instead of a structured time.
const invalidityDateLayout = "2006年01月02日 15:04:05"

// DeveloperCertificate is one signer certificate embedded in a profile,
// for example "iPhone Developer: Created via API (G7X5J84AUC)".
type DeveloperCertificate struct {
	// Name is the certificate's subject summary.
	Name string
	// Expires is the certificate's invalidity date. Nil means the
	// certificate carries no invalidity date, not that it never expires.
	Expires *time.Time
	// Fingerprint is the hex SHA-1 of the certificate, the value Apple
	// tooling uses to identify signing certificates.
	Fingerprint string
}

// IsExpired reports whether the certificate's invalidity date has passed.
// Certificates without an invalidity date are never considered expired.
func (c DeveloperCertificate) IsExpired() bool {
	if c.Expires == nil {
		return false
	}
	return time.Now().After(*c.Expires)
}

// ParseDeveloperCertificate parses one DER certificate blob from a
// profile's DeveloperCertificates array. A missing or undecodable
// invalidity date is not an error; only structural malformation is.
func ParseDeveloperCertificate(der []byte) (DeveloperCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return DeveloperCertificate{}, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	name := subjectSummary(cert)
	if name == "" {
		return DeveloperCertificate{}, fmt.Errorf("%w: certificate has no subject summary", ErrMalformedCertificate)
	}
	return DeveloperCertificate{
		Name:        name,
		Expires:     invalidityDate(cert),
		Fingerprint: Fingerprint(cert),
	}, nil
}

// subjectSummary approximates the display string macOS derives from a
// certificate subject: common name first, then organizational unit, then
// organization.
func subjectSummary(cert *x509.Certificate) string {
	if cn := strings.TrimSpace(cert.Subject.CommonName); cn != "" {
		return cn
	}
	if len(cert.Subject.OrganizationalUnit) > 0 {
		return cert.Subject.OrganizationalUnit[0]
	}
	if len(cert.Subject.Organization) > 0 {
		return cert.Subject.Organization[0]
	}
	return ""
}

// invalidityDate extracts the invalidity-date extension value. Issuers are
// inconsistent about its encoding: most emit an ASN.1 time, some emit a
// localized human-readable string.
func invalidityDate(cert *x509.Certificate) *time.Time {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidInvalidityDate) {
			continue
		}
		var when time.Time
		if rest, err := asn1.Unmarshal(ext.Value, &when); err == nil && len(rest) == 0 {
			return &when
		}
		if when, ok := parseLocalizedDate(ext.Value); ok {
			return &when
		}
		return nil
	}
	return nil
}

// parseLocalizedDate renders the raw extension value as text and parses it
// with the fixed zh_CN layout.
func parseLocalizedDate(value []byte) (time.Time, bool) {
	var s string
	if rest, err := asn1.Unmarshal(value, &s); err != nil || len(rest) != 0 {
		// Not an ASN.1 string, take the raw bytes as text.
		s = string(value)
	}
	when, err := time.Parse(invalidityDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return when, true
}
