package flag

import "github.com/thirukguru/check42/model"

// Environment variables consulted when a flag is not given.
const (
	EnvTablePrefix     = "CHECK42_TABLE_PREFIX"
	EnvTemplatesDir    = "CHECK42_TEMPLATES_DIR"
	EnvTemplatesBucket = "CHECK42_TEMPLATES_BUCKET"
	EnvLogLevel        = "CHECK42_LOG_LEVEL"
)

// DefaultCommand runs the checks.
const DefaultCommand = "run"

type service struct{}

// Service is the interface for CLI flag service.
type Service interface {
	GetParsedFlags() (model.Flags, error)
}
