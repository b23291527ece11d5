// pkg/apk/staging.go
package apk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// staging is the scratch area for one build. It is namespaced with a fresh
// identifier, never reused, and left in place on failure for diagnosis.
type staging struct {
	// root is the per-build directory under the configured build dir
	root string
	// tree is the subtree that becomes the archive
	tree string
}

func newStaging(buildDir string) (*staging, error) {
	root := filepath.Join(buildDir, "build-"+uuid.NewString())
	tree := filepath.Join(root, "apk")
	if err := os.MkdirAll(tree, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &staging{root: root, tree: tree}, nil
}

// discard removes the staging area after a fully successful build
func (s *staging) discard() {
	os.RemoveAll(s.root)
}

// copyFile copies src to dst, creating dst's directory if absent
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyTree copies the regular files under src into dst, keeping layout
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}
