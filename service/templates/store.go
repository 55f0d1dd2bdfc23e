package templates

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thirukguru/check42/shared/awserr"
)

//go:embed defaults/*.txt defaults/*.html
var defaultFiles embed.FS

type fsStore struct {
	fsys fs.FS
}

// NewDirStore reads templates from a local directory.
func NewDirStore(dir string) Store {
	return fsStore{fsys: os.DirFS(dir)}
}

// NewFSStore reads templates from any fs.FS.
func NewFSStore(fsys fs.FS) Store {
	return fsStore{fsys: fsys}
}

// EmbeddedStore returns the templates compiled into the binary.
func EmbeddedStore() Store {
	sub, err := fs.Sub(defaultFiles, "defaults")
	if err != nil {
		panic(err)
	}
	return fsStore{fsys: sub}
}

func (s fsStore) Read(_ context.Context, name string) ([]byte, bool, error) {
	if !fs.ValidPath(name) {
		return nil, false, fmt.Errorf("invalid template name %q", name)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return data, true, nil
}

type s3Store struct {
	client S3ClientAPI
	bucket string
	prefix string
}

// NewS3Store reads templates from s3://bucket/prefix.
func NewS3Store(cfg aws.Config, bucket, prefix string) Store {
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix)
}

// NewS3StoreWithClient creates an S3 store with a provided client (for testing).
func NewS3StoreWithClient(client S3ClientAPI, bucket, prefix string) Store {
	return s3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s s3Store) Read(ctx context.Context, name string) ([]byte, bool, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if awserr.HasCode(err, "NoSuchKey", "NotFound") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, false, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return buf.Bytes(), true, nil
}

// Chain reads from the first store that has the file.
type Chain []Store

func (c Chain) Read(ctx context.Context, name string) ([]byte, bool, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		data, ok, err := s.Read(ctx, name)
		if err != nil || ok {
			return data, ok, err
		}
	}
	return nil, false, nil
}
