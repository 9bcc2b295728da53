package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aluedeke/go-provision/pkg/provision"
	"github.com/docopt/docopt-go"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

const usage = `go-provision - Apple Provisioning Profile Tool

A command-line tool for listing, inspecting and editing iOS provisioning profiles.

Usage:
  go-provision list [--dir=<path>] [--verifier=<kind>]
  go-provision info --profile=<path> [--verifier=<kind>]
  go-provision entitlements --profile=<path> [--bundleid=<id>] [--remove-get-task-allow] [--verifier=<kind>]
  go-provision -h | --help
  go-provision --version

Commands:
  list          List the profiles installed in the profile store, newest first
  info          Display one profile's identity, dates and embedded certificates
  entitlements  Print a profile's entitlements as XML plist, optionally edited

Options:
  --dir=<path>             Profile store directory (defaults to ~/Library/MobileDevice/Provisioning Profiles)
  --profile=<path>         Path to a .mobileprovision file
  --bundleid=<id>          Rewrite the application-identifier to this bundle ID before printing
  --remove-get-task-allow  Drop the get-task-allow entitlement before printing
  --verifier=<kind>        Signature stripper: pkcs7 (native, any platform) or security (macOS tool) [default: pkcs7]
  -h --help                Show this help message
  --version                Show version

Examples:
  # List installed profiles
  go-provision list

  # Inspect one profile
  go-provision info --profile=dev.mobileprovision

  # Print distribution-ready entitlements
  go-provision entitlements --profile=dev.mobileprovision --bundleid=com.example.newapp --remove-get-task-allow

  # Strip the signature with the macOS security tool instead of the native parser
  go-provision info --profile=dev.mobileprovision --verifier=security
`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}

	if list, _ := opts.Bool("list"); list {
		if err := runList(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else if info, _ := opts.Bool("info"); info {
		if err := runInfo(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else if entitlements, _ := opts.Bool("entitlements"); entitlements {
		if err := runEntitlements(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func verifierFromOpts(opts docopt.Opts) (provision.Verifier, error) {
	kind, _ := opts.String("--verifier")
	switch kind {
	case "", "pkcs7":
		return provision.PKCS7Verifier{}, nil
	case "security":
		return provision.SecurityCMSVerifier{}, nil
	}
	return nil, fmt.Errorf("unknown verifier %q (want pkcs7 or security)", kind)
}

func runList(opts docopt.Opts) error {
	verifier, err := verifierFromOpts(opts)
	if err != nil {
		return err
	}

	repo := provision.NewRepository()
	repo.Verifier = verifier
	if dir, _ := opts.String("--dir"); dir != "" {
		repo.Dir = dir
	}

	profiles := repo.LoadAll(context.Background())
	if len(profiles) == 0 {
		fmt.Println("No provisioning profiles found")
		return nil
	}

	for _, profile := range profiles {
		status := ""
		if profile.IsExpired() {
			status = " (expired)"
		}
		fmt.Printf("%s%s\n", profile.Name, status)
		fmt.Printf("  App ID:   %s.%s\n", profile.TeamID, profile.AppID)
		fmt.Printf("  Created:  %s\n", profile.Created.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Expires:  %s\n", profile.Expires.Format("2006-01-02 15:04:05"))
		fmt.Printf("  File:     %s\n", profile.Filename)
	}
	return nil
}

func runInfo(opts docopt.Opts) error {
	verifier, err := verifierFromOpts(opts)
	if err != nil {
		return err
	}
	profilePath, _ := opts.String("--profile")

	profile, err := provision.NewProvisioningProfile(context.Background(), profilePath, verifier, logrus.StandardLogger())
	if err != nil {
		return err
	}

	fmt.Printf("Name:       %s\n", profile.Name)
	fmt.Printf("Team ID:    %s\n", profile.TeamID)
	fmt.Printf("App ID:     %s\n", profile.AppID)
	fmt.Printf("Created:    %s\n", profile.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Expires:    %s (expired: %v)\n", profile.Expires.Format("2006-01-02 15:04:05"), profile.IsExpired())
	fmt.Printf("Certificates (%d):\n", len(profile.Certificates))
	for _, cert := range profile.Certificates {
		expires := "no invalidity date"
		if cert.Expires != nil {
			expires = cert.Expires.Format("2006-01-02 15:04:05")
			if cert.IsExpired() {
				expires += " (expired)"
			}
		}
		fmt.Printf("  %s\n", cert.Name)
		fmt.Printf("    SHA-1:   %s\n", cert.Fingerprint)
		fmt.Printf("    Expires: %s\n", expires)
	}
	return nil
}

func runEntitlements(opts docopt.Opts) error {
	verifier, err := verifierFromOpts(opts)
	if err != nil {
		return err
	}
	profilePath, _ := opts.String("--profile")

	// Keep diagnostics off stdout, it carries the plist output.
	log := logrus.New()
	log.SetOutput(os.Stderr)

	profile, err := provision.NewProvisioningProfile(context.Background(), profilePath, verifier, log)
	if err != nil {
		return err
	}

	if removeGTA, _ := opts.Bool("--remove-get-task-allow"); removeGTA {
		profile.RemoveGetTaskAllow()
	}
	if bundleID, _ := opts.String("--bundleid"); bundleID != "" {
		profile.Update(bundleID)
	}

	out := profile.EntitlementsPlist()
	if out == "" {
		return fmt.Errorf("failed to serialize entitlements")
	}
	fmt.Println(out)
	return nil
}
