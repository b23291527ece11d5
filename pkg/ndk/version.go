// pkg/ndk/version.go
package ndk

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// parseSourceProperties extracts Pkg.Revision from the installation's
// source.properties file. The file is java-properties shaped:
//
//	Pkg.Desc = Android NDK
//	Pkg.Revision = 25.1.8937393
//
// Beta releases carry a pre-release marker (25.0.8775105-beta1).
func parseSourceProperties(data []byte) (Version, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) != "Pkg.Revision" {
			continue
		}
		return parseRevision(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return Version{}, fmt.Errorf("reading source.properties: %w", err)
	}
	return Version{}, fmt.Errorf("source.properties has no Pkg.Revision")
}

// parseRevision parses a major.minor.patch revision with an optional
// pre-release marker
func parseRevision(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("malformed revision %q: %w", s, err)
	}
	return Version{
		Major: int(v.Major()),
		Minor: int(v.Minor()),
		Patch: int(v.Patch()),
		Beta:  v.Prerelease(),
	}, nil
}
