package provision

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

const profileExtension = ".mobileprovision"

// Repository loads the provisioning profiles installed in one directory.
// All collaborators are injected; the zero value is not usable, construct
// with NewRepository or fill the fields explicitly.
type Repository struct {
	Dir      string
	Verifier Verifier
	Logger   logrus.FieldLogger
}

// NewRepository returns a repository over the user's provisioning profile
// store using the native PKCS#7 verifier.
func NewRepository() *Repository {
	return &Repository{
		Dir:      DefaultProfilesDir(),
		Verifier: PKCS7Verifier{},
		Logger:   logrus.StandardLogger(),
	}
}

// DefaultProfilesDir returns the per-user profile store Xcode installs
// profiles into.
func DefaultProfilesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "MobileDevice", "Provisioning Profiles")
}

// LoadAll decodes every .mobileprovision file in the repository directory,
// sorted most recently created first and deduplicated on the (name, app ID)
// pair, keeping the newest of each. Files that fail to decode are logged
// and skipped. An absent or unreadable profile store is a valid, common
// state and yields an empty result.
func (r *Repository) LoadAll(ctx context.Context) []*ProvisioningProfile {
	log := r.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	matches, err := filepath.Glob(filepath.Join(r.Dir, "*"+profileExtension))
	if err != nil {
		return nil
	}

	var profiles []*ProvisioningProfile
	for _, filename := range matches {
		profile, err := NewProvisioningProfile(ctx, filename, r.Verifier, log)
		if err != nil {
			log.Warnf("skipping %s: %v", filepath.Base(filename), err)
			continue
		}
		profiles = append(profiles, profile)
	}

	// Most recently issued first, so the dedup pass below keeps the newest
	// profile for each (name, app ID) pair.
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Created.After(profiles[j].Created)
	})

	seen := make(map[string]bool, len(profiles))
	deduped := make([]*ProvisioningProfile, 0, len(profiles))
	for _, profile := range profiles {
		key := profile.Name + profile.AppID
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, profile)
		log.Infof("%s, %s", profile.Name, profile.Created)
	}
	return deduped
}
