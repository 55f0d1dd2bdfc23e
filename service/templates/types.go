package templates

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thirukguru/check42/model"
)

// Template file names.
const (
	MainName    = "main"
	DefaultName = "default"
	itemSuffix  = "_item"
	extText     = ".txt"
	extHTML     = ".html"
)

// Store reads named template files. ok is false when the file does not exist.
type Store interface {
	Read(ctx context.Context, name string) (data []byte, ok bool, err error)
}

// S3ClientAPI defines the S3 client methods used by S3Store.
type S3ClientAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Set is the loaded templates of one run.
type Set struct {
	main     model.Template
	fallback model.Template
	checks   map[string]model.Template
}

// Repository loads template sets from a store, falling back to the embedded defaults.
type Repository struct {
	store Store
}
