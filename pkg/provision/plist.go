package provision

import (
	"fmt"
	"time"

	"howett.net/plist"
)

// profilePlist is the subset of the .mobileprovision plist schema this
// package consumes. Entitlement values stay generic: downstream code type
// switches on the decoded Go value (string, bool, uint64, time.Time,
// []byte, []interface{}, map[string]interface{}).
type profilePlist struct {
	Name                  string                 `plist:"Name"`
	CreationDate          time.Time              `plist:"CreationDate"`
	ExpirationDate        time.Time              `plist:"ExpirationDate"`
	Entitlements          map[string]interface{} `plist:"Entitlements"`
	DeveloperCertificates [][]byte               `plist:"DeveloperCertificates"`
}

func decodeProfilePlist(payload []byte) (*profilePlist, error) {
	var raw profilePlist
	if _, err := plist.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse provisioning profile plist: %w", err)
	}
	return &raw, nil
}

// EncodeEntitlements serializes an entitlements mapping to XML plist text.
func EncodeEntitlements(entitlements map[string]interface{}) ([]byte, error) {
	data, err := plist.MarshalIndent(entitlements, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entitlements: %w", err)
	}
	return data, nil
}

// DecodeEntitlements parses XML plist entitlements into a map.
func DecodeEntitlements(data []byte) (map[string]interface{}, error) {
	var entitlements map[string]interface{}
	if _, err := plist.Unmarshal(data, &entitlements); err != nil {
		return nil, fmt.Errorf("failed to parse entitlements plist: %w", err)
	}
	return entitlements, nil
}
