package sphio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Dumps with a .gz suffix are transparently gzip-compressed on write and
// decompressed on read; the wire layout underneath is unchanged.

type gzipWriteCloser struct {
	*gzip.Writer
	f *os.File
}

func (w gzipWriteCloser) Close() error {
	if err := w.Writer.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (r gzipReadCloser) Close() error {
	if err := r.Reader.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

func createStream(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		return gzipWriteCloser{gzip.NewWriter(f), f}, nil
	}
	return f, nil
}

func openStream(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return gzipReadCloser{zr, f}, nil
	}
	return f, nil
}
