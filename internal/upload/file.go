// Package upload describes local files selected for upload and the
// allowlists they are checked against before any request is made.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// File is a local file picked for upload. Content is opened lazily so a
// large selection costs nothing until a payload is encoded.
type File struct {
	Name        string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("open %s: no content source", f.Name)
	}
	return f.open()
}

// FromBytes builds a File over in-memory content.
func FromBytes(name, contentType string, data []byte) File {
	cp := append([]byte(nil), data...)
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(cp)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(cp)), nil
		},
	}
}

// FromPath stats path and builds a File that reads it on demand. The
// content type comes from the extension, falling back to sniffing the first
// 512 bytes.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	contentType, err := detectContentType(path)
	if err != nil {
		return File{}, err
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromPaths builds a File per path, stopping at the first failure.
func FromPaths(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := FromPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func detectContentType(path string) (string, error) {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		// Strip parameters such as "; charset=utf-8".
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = strings.TrimSpace(ct[:i])
		}
		return ct, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	ct := http.DetectContentType(head[:n])
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct, nil
}
