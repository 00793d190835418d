// Package config resolves the parameters the encoding workflow needs from
// layered sources: explicit KEY=VALUE command-line arguments, a TOML file in
// the working directory, process environment variables, and a TOML file in
// the user's home directory, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
)

// Configuration parameter keys. The same names are used across all layers
// (argument names, TOML keys and environment variables).
const (
	KeyAPIKey             = "BITMOVIN_API_KEY"
	KeyTenantOrgID        = "BITMOVIN_TENANT_ORG_ID"
	KeyHTTPInputHost      = "HTTP_INPUT_HOST"
	KeyInputFilePath      = "HTTP_INPUT_FILE_PATH_MULTIPLE_MONO_AUDIO_TRACKS"
	KeyS3OutputBucketName = "S3_OUTPUT_BUCKET_NAME"
	KeyS3OutputAccessKey  = "S3_OUTPUT_ACCESS_KEY"
	KeyS3OutputSecretKey  = "S3_OUTPUT_SECRET_KEY"
	KeyS3OutputBasePath   = "S3_OUTPUT_BASE_PATH"
)

// DefaultFileName is the configuration file looked up in the working
// directory and under ~/.bitmovin/.
const DefaultFileName = "encoding.toml"

// Options configures a Provider.
type Options struct {
	// Args are raw KEY=VALUE command-line arguments (highest precedence).
	Args []string
	// LocalFile overrides the working-directory configuration file path.
	// Defaults to ./encoding.toml.
	LocalFile string
	// HomeFile overrides the home-directory configuration file path.
	// Defaults to ~/.bitmovin/encoding.toml.
	HomeFile string
	// Logger receives layer-resolution debug logs.
	Logger logger.Logger
}

// Provider resolves configuration values across layers. Create instances
// using New.
type Provider struct {
	layers []layer
	logger logger.Logger
}

type layer struct {
	name   string
	lookup func(key string) (string, bool)
}

// New builds a Provider, reading both configuration files up front. A missing
// file is skipped; a malformed one is an error.
func New(opts Options) (*Provider, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger()
	}
	if opts.LocalFile == "" {
		opts.LocalFile = DefaultFileName
	}
	if opts.HomeFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.HomeFile = filepath.Join(home, ".bitmovin", DefaultFileName)
		}
	}

	p := &Provider{logger: opts.Logger}

	args := parseArgs(opts.Args)
	p.layers = append(p.layers, layer{
		name: "command line arguments",
		lookup: func(key string) (string, bool) {
			v, ok := args[key]
			return v, ok
		},
	})

	localValues, err := readTOMLFile(opts.LocalFile)
	if err != nil {
		return nil, err
	}
	p.layers = append(p.layers, mapLayer("local configuration file", localValues))

	p.layers = append(p.layers, layer{
		name:   "environment variables",
		lookup: os.LookupEnv,
	})

	if opts.HomeFile != "" {
		homeValues, err := readTOMLFile(opts.HomeFile)
		if err != nil {
			return nil, err
		}
		p.layers = append(p.layers, mapLayer("home directory configuration file", homeValues))
	}

	return p, nil
}

func mapLayer(name string, values map[string]string) layer {
	return layer{
		name: name,
		lookup: func(key string) (string, bool) {
			v, ok := values[key]
			return v, ok
		},
	}
}

// parseArgs extracts KEY=VALUE pairs, ignoring arguments without '='.
func parseArgs(args []string) map[string]string {
	values := make(map[string]string)
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

// readTOMLFile loads string values from a TOML file. A missing file yields an
// empty map; non-string values are ignored.
func readTOMLFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrap(err, errors.ConfigError, "Failed to read configuration file", errors.ErrConfigFileInvalid)
	}

	var parsed map[string]interface{}
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ConfigError,
			fmt.Sprintf("Failed to parse configuration file %s", path), errors.ErrConfigFileInvalid)
	}

	values := make(map[string]string, len(parsed))
	for key, value := range parsed {
		if s, ok := value.(string); ok {
			values[key] = s
		}
	}
	return values, nil
}

// Get resolves a required key across the layers, in precedence order.
func (p *Provider) Get(key string) (string, error) {
	for _, l := range p.layers {
		if value, ok := l.lookup(key); ok && value != "" {
			p.logger.Debug("Resolved configuration parameter", "config", map[string]interface{}{
				"key":    key,
				"source": l.name,
			})
			return value, nil
		}
	}
	return "", errors.New(errors.ConfigError,
		fmt.Sprintf("Configuration parameter %s is not set", key), "", errors.ErrConfigKeyMissing)
}

// GetOptional resolves an optional key, returning the empty string when it is
// not set in any layer.
func (p *Provider) GetOptional(key string) string {
	value, err := p.Get(key)
	if err != nil {
		return ""
	}
	return value
}

// APIKey returns the API key for the encoding service (required).
func (p *Provider) APIKey() (string, error) { return p.Get(KeyAPIKey) }

// TenantOrgID returns the optional organisation ID for multi-tenant accounts.
func (p *Provider) TenantOrgID() string { return p.GetOptional(KeyTenantOrgID) }

// HTTPInputHost returns the host of the HTTP server providing input files.
func (p *Provider) HTTPInputHost() (string, error) { return p.Get(KeyHTTPInputHost) }

// InputFilePath returns the path of the source file carrying the video track
// and the eight mono audio tracks.
func (p *Provider) InputFilePath() (string, error) { return p.Get(KeyInputFilePath) }

// S3OutputBucketName returns the S3 output bucket name.
func (p *Provider) S3OutputBucketName() (string, error) { return p.Get(KeyS3OutputBucketName) }

// S3OutputAccessKey returns the access key of the S3 output bucket.
func (p *Provider) S3OutputAccessKey() (string, error) { return p.Get(KeyS3OutputAccessKey) }

// S3OutputSecretKey returns the secret key of the S3 output bucket.
func (p *Provider) S3OutputSecretKey() (string, error) { return p.Get(KeyS3OutputSecretKey) }

// S3OutputBasePath returns the base path under which content is written.
func (p *Provider) S3OutputBasePath() (string, error) { return p.Get(KeyS3OutputBasePath) }
