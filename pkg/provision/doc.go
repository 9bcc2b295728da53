// Package provision decodes Apple mobile provisioning profiles.
//
// A .mobileprovision file is a CMS (PKCS#7) signed container wrapping an XML
// property list that describes an app's code-signing identity: its
// entitlements, application identifier and the developer certificates
// authorized to sign with it.
//
// # Basic Usage
//
// To load every profile installed in the user's profile store:
//
//	repo := provision.NewRepository()
//	profiles := repo.LoadAll(context.Background())
//	for _, p := range profiles {
//	    fmt.Println(p.Name, p.AppID, p.Expires)
//	}
//
// # Features
//
//   - Cross-platform: ships a pure-Go PKCS#7 verifier alongside the
//     macOS security tool based one
//   - Certificate details: recovers each embedded certificate's subject
//     summary and invalidity date, including localized date fallbacks
//   - Entitlement editing: drop get-task-allow, rewrite the application
//     identifier and re-serialize to XML plist form
//   - Deduplication: keeps only the most recently issued profile for each
//     (name, app ID) pair
package provision
