// pkg/apk/zip.go
package apk

import (
	"archive/zip"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
)

// soAlignment is the byte boundary uncompressed entries must start on so
// the installer can map them directly
const soAlignment = 4

// localHeaderLen is the fixed part of a zip local file header
const localHeaderLen = 30

// storedSuffixes are entries kept uncompressed in the package. Shared
// libraries so the loader can mmap them, the resource table because the
// platform requires it.
var storedSuffixes = []string{".so", ".arsc"}

// apkWriter writes package entries with deterministic bytes: fixed zero
// timestamps, a fixed compressor, and alignment padding applied through
// the entry's extra field rather than the payload. Offsets are tracked
// arithmetically; every entry goes through CreateRaw so nothing else is
// emitted between entries.
type apkWriter struct {
	zw     *zip.Writer
	offset int64
}

func newApkWriter(w io.Writer) *apkWriter {
	return &apkWriter{zw: zip.NewWriter(w)}
}

func stored(name string) bool {
	for _, suffix := range storedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// add writes one entry. Stored entries get zero-byte extra-field padding,
// the same filler zipalign emits, so their data starts on a soAlignment
// boundary.
func (w *apkWriter) add(name string, data []byte) error {
	fh := &zip.FileHeader{
		Name:               name,
		CRC32:              crc32.ChecksumIEEE(data),
		UncompressedSize64: uint64(len(data)),
	}

	payload := data
	if stored(name) {
		fh.Method = zip.Store
		dataStart := w.offset + localHeaderLen + int64(len(name))
		if pad := (soAlignment - dataStart%soAlignment) % soAlignment; pad != 0 {
			fh.Extra = make([]byte, pad)
		}
	} else {
		fh.Method = zip.Deflate
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return fmt.Errorf("deflate %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("deflate %s: %w", name, err)
		}
		if err := fw.Close(); err != nil {
			return fmt.Errorf("deflate %s: %w", name, err)
		}
		payload = buf.Bytes()
	}
	fh.CompressedSize64 = uint64(len(payload))

	ew, err := w.zw.CreateRaw(fh)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := ew.Write(payload); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	w.offset += localHeaderLen + int64(len(name)) + int64(len(fh.Extra)) + int64(len(payload))
	return nil
}

func (w *apkWriter) Close() error {
	return w.zw.Close()
}

// writeArchive walks the staging tree depth-first in lexicographic path
// order and produces the package archive at out. Identical tree bytes
// produce identical archive bytes.
func writeArchive(root, out string) error {
	var names []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking staging tree: %w", err)
	}
	sort.Strings(names)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	w := newApkWriter(f)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := w.add(name, data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return f.Close()
}
