package mamanalysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Input is an opened, possibly decompressed, data file.
type Input struct {
	io.Reader
	Path        string
	Compression DataType
	closers     []func() error
}

// Close releases the underlying file or storage object.
func (in *Input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a local path (with ~/ expansion) or a gs://bucket/object path
// and transparently decompresses it.
func Open(ctx context.Context, path string) (*Input, error) {
	in := &Input{Path: path}

	var raw io.Reader
	if strings.HasPrefix(path, "gs://") {
		rc, closeClient, err := openGoogleStorage(ctx, path)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, closeClient, rc.Close)
		raw = rc
	} else {
		expanded, err := ExpandHome(path)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(expanded)
		if err != nil {
			return nil, pfx.Err(err)
		}
		in.closers = append(in.closers, f.Close)
		raw = f
	}

	r, dt, err := MaybeDecompress(raw)
	if err != nil {
		in.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	if c, ok := r.(io.Closer); ok && dt != DataTypeNoCompression {
		in.closers = append(in.closers, c.Close)
	}
	in.Reader = r
	in.Compression = dt

	return in, nil
}

// SplitGoogleStoragePath splits gs://bucket/object into its bucket and object
// names.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}
	return pathParts[0], pathParts[1], nil
}

func openGoogleStorage(ctx context.Context, path string) (io.ReadCloser, func() error, error) {
	bucketName, objectName, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, nil, err
	}

	// Default application credentials
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return rdr, client.Close, nil
}
