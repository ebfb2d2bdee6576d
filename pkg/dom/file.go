package dom

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// File is a file selected into a file input. Open is called once per
// submission; an empty File (no name, nil Open) stands for an input with no
// selection.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Empty reports whether the file stands for an empty selection.
func (f File) Empty() bool {
	return f.Name == "" && f.Open == nil
}

// Reader opens the file contents. Empty files yield an empty reader.
func (f File) Reader() (io.ReadCloser, error) {
	if f.Open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return f.Open()
}

// FileFromPath selects a file from disk. The file is opened lazily.
func FileFromPath(path string) (File, error) {
	if path == "" {
		return File{}, errors.New("dom: file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, errors.New("dom: " + path + " is a directory")
	}
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileFromBytes selects an in-memory file.
func FileFromBytes(name string, data []byte) File {
	clone := append([]byte(nil), data...)
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(clone)), nil
		},
	}
}
