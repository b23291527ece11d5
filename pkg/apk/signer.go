// pkg/apk/signer.go
package apk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Signer is the capability interface for the package-signing step. The
// default implementation shells out to apksigner; tests substitute a fake.
type Signer interface {
	// Sign reads the unsigned archive at in and writes the signed
	// archive to out. It must not modify in.
	Sign(ctx context.Context, in, out string, key Key) error
}

// ApksignerSigner signs through the platform's apksigner tool
type ApksignerSigner struct {
	// Apksigner is the tool path; default "apksigner"
	Apksigner string
	Runner    Runner
}

// Sign implements Signer
func (s ApksignerSigner) Sign(ctx context.Context, in, out string, key Key) error {
	if key.Store == "" {
		return &SigningError{Reason: "no keystore configured"}
	}
	if _, err := os.Stat(key.Store); err != nil {
		return &SigningError{Reason: fmt.Sprintf("keystore %s: %v", key.Store, err), Err: err}
	}

	apksigner := s.Apksigner
	if apksigner == "" {
		apksigner = "apksigner"
	}
	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	err := run(ctx, runner, apksigner,
		"sign",
		"--ks", key.Store,
		"--ks-pass", "pass:"+key.Password,
		"--out", out,
		"--in", in,
	)
	if err != nil {
		return &SigningError{Reason: err.Error(), Err: err}
	}
	return nil
}

// DebugKey resolves the developer debug keystore the platform tooling
// writes to ~/.android. It never generates one; key generation is the
// SDK's job.
func DebugKey() (Key, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Key{}, err
	}
	store := filepath.Join(home, ".android", "debug.keystore")
	if _, err := os.Stat(store); err != nil {
		return Key{}, &SigningError{Reason: "no debug keystore; run a platform build once or supply a keystore", Err: err}
	}
	return Key{Store: store, Password: "android"}, nil
}
