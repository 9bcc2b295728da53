package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
	"go.mozilla.org/pkcs7"
)

// ErrVerificationFailed indicates the CMS signature could not be stripped
// from a profile file. The file is skipped, not fatal.
var ErrVerificationFailed = errors.New("profile signature verification failed")

// Verifier strips the CMS/PKCS#7 envelope from a signed provisioning
// profile and returns the embedded payload bytes. Any tool exposing the
// "exit status + decoded payload on stdout" contract is substitutable here.
type Verifier interface {
	DecodeSigned(ctx context.Context, filename string) ([]byte, error)
}

// SecurityCMSVerifier shells out to the macOS security tool, equivalent to
// running "security cms -D -i <filename>". The signature is checked against
// the system trust store by the tool itself.
//
// No timeout is applied by this verifier: a hung security invocation blocks
// the caller until the process exits. Pass a context with a deadline to
// bound the call.
type SecurityCMSVerifier struct {
	// Tool overrides the verifier binary. Defaults to "security".
	Tool string
}

// DecodeSigned runs the external verifier and returns its combined output.
// A nonzero exit status yields ErrVerificationFailed.
func (v SecurityCMSVerifier) DecodeSigned(ctx context.Context, filename string) ([]byte, error) {
	tool := v.Tool
	if tool == "" {
		tool = "security"
	}
	out, err := exec.CommandContext(ctx, tool, "cms", "-D", "-i", filename).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: %s cms -D -i %s: %v", ErrVerificationFailed, tool, filename, err)
	}
	return out, nil
}

// PKCS7Verifier parses the CMS envelope natively and returns its content.
// It works on any platform and does not consult a trust store; signature
// trust is assumed to be established elsewhere.
type PKCS7Verifier struct{}

// DecodeSigned reads the file and unwraps the PKCS#7 container.
func (PKCS7Verifier) DecodeSigned(_ context.Context, filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	p7, err := pkcs7.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse PKCS#7 container: %v", ErrVerificationFailed, err)
	}
	return p7.Content, nil
}

var xmlStart = []byte("<?xml")

// payloadFromOutput locates the plist payload within the verifier output.
// The security tool can prepend diagnostics before the payload, so the
// payload starts at the first "<?xml" marker. Output without the marker is
// returned whole: the profile's format may differ from expectation, but
// decoding is still attempted.
func payloadFromOutput(out []byte, log logrus.FieldLogger) []byte {
	if i := bytes.Index(out, xmlStart); i >= 0 {
		return out[i:]
	}
	log.Warn("unable to find xml start tag in profile")
	return out
}
