package provision

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestPayloadFromOutput(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?><plist/>`)
	out := append([]byte("security: some diagnostic chatter\n"), payload...)

	got := payloadFromOutput(out, discardLogger())
	if !bytes.Equal(got, payload) {
		t.Errorf("expected payload from the xml marker onward, got %q", got)
	}
}

func TestPayloadFromOutput_NoMarker(t *testing.T) {
	// Output without the marker is decoded as-is; the warning is the only
	// observable difference.
	out := []byte("bplist00 something unexpected")
	got := payloadFromOutput(out, discardLogger())
	if !bytes.Equal(got, out) {
		t.Errorf("expected whole output, got %q", got)
	}
}

func TestSecurityCMSVerifier_NonzeroExit(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	v := SecurityCMSVerifier{Tool: "false"}
	_, err := v.DecodeSigned(context.Background(), "whatever.mobileprovision")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestSecurityCMSVerifier_CapturesOutput(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}

	v := SecurityCMSVerifier{Tool: "echo"}
	out, err := v.DecodeSigned(context.Background(), "profile.mobileprovision")
	if err != nil {
		t.Fatalf("DecodeSigned failed: %v", err)
	}
	if !bytes.Contains(out, []byte("profile.mobileprovision")) {
		t.Errorf("expected the tool output to be captured, got %q", out)
	}
}

func TestPKCS7Verifier_MissingFile(t *testing.T) {
	_, err := PKCS7Verifier{}.DecodeSigned(context.Background(), "/nonexistent/profile.mobileprovision")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestPKCS7Verifier_NotSigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mobileprovision")
	if err := os.WriteFile(path, []byte("<?xml version=\"1.0\"?><plist/>"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := PKCS7Verifier{}.DecodeSigned(context.Background(), path)
	if !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("expected ErrVerificationFailed for unsigned input, got %v", err)
	}
}
