package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"NexoraPanel/publishers"

	"github.com/h2non/filetype"
	ftypes "github.com/h2non/filetype/types"
)

// allowedImageTypes are the upload formats Graph accepts for page photos,
// matched by magic number rather than extension.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsRemoteImage reports whether an image reference is a URL rather than a
// file in the image folder.
func IsRemoteImage(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

type ImageLibrary struct {
	dir string
}

func NewImageLibrary(dir string) *ImageLibrary {
	return &ImageLibrary{dir: dir}
}

// Resolve maps an image filename to a readable file inside the library and
// detects its MIME type.
func (l *ImageLibrary) Resolve(filename string) (string, string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", "", fmt.Errorf("%w: empty filename", publishers.ErrImageNotFound)
	}

	path := filepath.Join(l.dir, filename)
	rel, err := filepath.Rel(l.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s is outside %s", publishers.ErrImageNotFound, filename, l.dir)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", publishers.ErrImageNotFound, path)
	}

	kind, err := detectFileType(path)
	if err != nil {
		return "", "", err
	}
	if kind == ftypes.Unknown || !allowedImageTypes[kind.MIME.Value] {
		return "", "", fmt.Errorf("%w: %s (detected %s)", publishers.ErrNotImage, path, kind.MIME.Value)
	}

	return path, kind.MIME.Value, nil
}

func detectFileType(path string) (ftypes.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return ftypes.Unknown, fmt.Errorf("%w: %s", publishers.ErrImageNotFound, path)
	}
	defer f.Close()

	// filetype needs at least 262 bytes; we read 512 to be safe.
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ftypes.Unknown, fmt.Errorf("read image header: %w", err)
	}

	kind, err := filetype.Match(buf[:n])
	if err != nil {
		return ftypes.Unknown, fmt.Errorf("image type detection failed: %w", err)
	}
	return kind, nil
}
