package upload

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
)

// SelectedFile is the local file the user picked.
type SelectedFile interface {
	// Name is the original file name, without directories.
	Name() string
	// Size is the byte count, or -1 if unknown.
	Size() int64
	ContentType() string
	// Open returns a fresh reader over the file's bytes.
	Open() (io.ReadCloser, error)
}

// LocalFile is a SelectedFile on a billy filesystem.
type LocalFile struct {
	fs          billy.Filesystem
	path        string
	name        string
	size        int64
	contentType string
}

// NewLocalFile stats path on fs and sniffs its content type.
func NewLocalFile(fs billy.Filesystem, path string) (*LocalFile, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %q: %w", path, err)
	}

	return &LocalFile{
		fs:          fs,
		path:        path,
		name:        filepath.Base(path),
		size:        info.Size(),
		contentType: mt.String(),
	}, nil
}

func (f *LocalFile) Name() string        { return f.name }
func (f *LocalFile) Size() int64         { return f.size }
func (f *LocalFile) ContentType() string { return f.contentType }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}
