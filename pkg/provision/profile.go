package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrMissingField indicates a decoded profile plist lacks one of the keys
// every usable profile must carry.
var ErrMissingField = errors.New("profile is missing a required field")

const (
	applicationIdentifierKey = "application-identifier"
	getTaskAllowKey          = "get-task-allow"
)

// ProvisioningProfile is one decoded .mobileprovision file.
//
// AppID and TeamID are derived from the application-identifier entitlement
// at construction time; teamID + "." + appID reconstructs the original
// identifier. Entitlements may be mutated after construction, the derived
// fields are not re-derived (see Update).
type ProvisioningProfile struct {
	Filename     string
	Name         string
	Created      time.Time
	Expires      time.Time
	AppID        string
	TeamID       string
	Entitlements map[string]interface{}
	Certificates []DeveloperCertificate

	log logrus.FieldLogger
}

// NewProvisioningProfile decodes one profile file. A profile that fails
// verification, plist decoding or the required-field checks yields an
// error; corrupt profiles are an expected steady-state condition and the
// caller is meant to log and skip them.
func NewProvisioningProfile(ctx context.Context, filename string, verifier Verifier, log logrus.FieldLogger) (*ProvisioningProfile, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	out, err := verifier.DecodeSigned(ctx, filename)
	if err != nil {
		return nil, err
	}

	raw, err := decodeProfilePlist(payloadFromOutput(out, log))
	if err != nil {
		return nil, err
	}

	if raw.Name == "" || raw.CreationDate.IsZero() || raw.ExpirationDate.IsZero() || raw.Entitlements == nil {
		return nil, fmt.Errorf("%w: need Name, CreationDate, ExpirationDate and Entitlements", ErrMissingField)
	}
	identifier, ok := raw.Entitlements[applicationIdentifierKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: entitlements carry no %s", ErrMissingField, applicationIdentifierKey)
	}
	teamID, appID, ok := splitApplicationIdentifier(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: application-identifier %q has no team prefix", ErrMissingField, identifier)
	}

	certs := make([]DeveloperCertificate, 0, len(raw.DeveloperCertificates))
	for _, der := range raw.DeveloperCertificates {
		cert, err := ParseDeveloperCertificate(der)
		if err != nil {
			// Unparseable certificates are dropped, the profile stays usable.
			continue
		}
		certs = append(certs, cert)
	}

	return &ProvisioningProfile{
		Filename:     filename,
		Name:         raw.Name,
		Created:      raw.CreationDate,
		Expires:      raw.ExpirationDate,
		AppID:        appID,
		TeamID:       teamID,
		Entitlements: raw.Entitlements,
		Certificates: certs,
		log:          log,
	}, nil
}

// splitApplicationIdentifier splits <teamID>.<appID> at the first period.
// Both halves must be non-empty.
func splitApplicationIdentifier(identifier string) (teamID, appID string, ok bool) {
	teamID, appID, ok = strings.Cut(identifier, ".")
	if !ok || teamID == "" || appID == "" {
		return "", "", false
	}
	return teamID, appID, true
}

// IsExpired reports whether the profile's expiration date has passed.
func (p *ProvisioningProfile) IsExpired() bool {
	return time.Now().After(p.Expires)
}

// RemoveGetTaskAllow drops the get-task-allow entitlement when present.
// Calling it again simply finds nothing to remove.
func (p *ProvisioningProfile) RemoveGetTaskAllow() {
	if _, ok := p.Entitlements[getTaskAllowKey]; ok {
		delete(p.Entitlements, getTaskAllowKey)
		p.log.Info("skipped get-task-allow entitlement")
	} else {
		p.log.Info("get-task-allow entitlement not found")
	}
}

// Update rewrites the application-identifier entitlement to the profile's
// team prefix plus trueAppID. The derived AppID and TeamID fields keep
// their construction-time values; callers that need them consistent with
// the entitlements must re-derive after updating.
func (p *ProvisioningProfile) Update(trueAppID string) {
	oldIdentifier, ok := p.Entitlements[applicationIdentifierKey].(string)
	if !ok {
		p.log.Error("error reading application-identifier")
		return
	}
	newIdentifier := p.TeamID + "." + trueAppID
	p.Entitlements[applicationIdentifierKey] = newIdentifier
	p.log.Infof("updated application-identifier from %q to %q", oldIdentifier, newIdentifier)
}

// EntitlementsPlist serializes the current entitlements as XML plist text.
// Returns the empty string when encoding fails.
func (p *ProvisioningProfile) EntitlementsPlist() string {
	data, err := EncodeEntitlements(p.Entitlements)
	if err != nil {
		p.log.Errorf("failed to encode entitlements plist: %v", err)
		return ""
	}
	return string(data)
}
