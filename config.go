package gram

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the .gram.yaml configuration file.
type Config struct {
	// Neo4j holds the connection used by `gram load`. Nil when unset.
	Neo4j *Neo4jConfig `yaml:"neo4j,omitempty"`

	Format FormatOptions `yaml:"format,omitempty"`

	Corpus CorpusConfig `yaml:"corpus,omitempty"`

	// Extensions lists the file extensions treated as gram documents when
	// walking directories, without the leading dot.
	Extensions []string `yaml:"extensions,omitempty" validate:"dive,required,excludes=."`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"                validate:"required,uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty" validate:"required_with=Username"`
	Database string `yaml:"database,omitempty"`
}

// CorpusConfig locates the conformance corpus.
type CorpusConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// DefaultExtensions are used when a config does not list any.
var DefaultExtensions = []string{"gram"}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".gram.yaml", ".gram.yml", "gram.yaml", "gram.yml"}

// FileExtensions returns the configured extensions, or DefaultExtensions.
func (c *Config) FileExtensions() []string {
	if c == nil || len(c.Extensions) == 0 {
		return DefaultExtensions
	}

	return c.Extensions
}

// LoadConfig finds and loads the nearest .gram.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads and validates a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their yaml names so messages match the file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Validate checks the config for missing or malformed settings.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	// Drop the root struct name: "Config.neo4j.uri" -> "neo4j.uri".
	_, field, _ := strings.Cut(e.Namespace(), ".")

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, strings.ToLower(e.Param()))
	case "uri":
		return field + " must be a valid URI"
	case "excludes":
		return fmt.Sprintf("%s must not contain %q", field, e.Param())
	default:
		return field + " is invalid"
	}
}
