package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile = ".env"

	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultPageSize     = 12
	defaultSectionLimit = 6

	defaultContentSource  = ContentSourceStatic
	defaultContentTimeout = 5 * time.Second

	defaultCatalogCollection = "cheatsheets"

	defaultCacheBackend    = CacheBackendMemory
	defaultCacheFile       = ".cheatstack-cache.json"
	defaultCacheCollection = "session_cache"

	defaultContributionsTopic = "cheatsheet-contributions"

	defaultPreviewMaxBytes = 64 << 10
)

// Content source identifiers accepted by CHEATSTACK_CONTENT_SOURCE.
const (
	ContentSourceStatic    = "static"
	ContentSourceRemote    = "remote"
	ContentSourceFirestore = "firestore"
)

// Cache backend identifiers accepted by CHEATSTACK_CACHE_BACKEND.
const (
	CacheBackendMemory    = "memory"
	CacheBackendFile      = "file"
	CacheBackendFirestore = "firestore"
)

// Config is the root configuration object for the CheatStack service.
type Config struct {
	Server        ServerConfig
	Catalog       CatalogConfig
	Content       ContentConfig
	Firestore     FirestoreConfig
	Cache         CacheConfig
	Contributions ContributionsConfig
	Preview       PreviewConfig
}

// ServerConfig encapsulates HTTP server tuning parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig controls listing sizes.
type CatalogConfig struct {
	PageSize     int
	SectionLimit int
}

// ContentConfig describes where catalog entries and detail templates come from.
type ContentConfig struct {
	Source  string
	BaseURL string
	Token   string
	Timeout time.Duration
	Dir     string
}

// FirestoreConfig configures Firestore connectivity.
type FirestoreConfig struct {
	ProjectID         string
	EmulatorHost      string
	CatalogCollection string
}

// CacheConfig selects the persistence slot backing the session cache.
type CacheConfig struct {
	Backend    string
	File       string
	Collection string
}

// ContributionsConfig configures the contribution queue.
type ContributionsConfig struct {
	ProjectID string
	Topic     string
}

// Enabled reports whether a Pub/Sub topic should be used.
func (c ContributionsConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.Topic) != ""
}

// PreviewConfig controls the live Markdown preview endpoint.
type PreviewConfig struct {
	Sanitize bool
	MaxBytes int64
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env path. An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Load assembles configuration from defaults, the .env file, the process environment and
// explicit overrides, in increasing order of precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "CHEATSTACK_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "CHEATSTACK_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "CHEATSTACK_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "CHEATSTACK_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			PageSize:     intWithDefault(lookup, "CHEATSTACK_CATALOG_PAGE_SIZE", defaultPageSize),
			SectionLimit: intWithDefault(lookup, "CHEATSTACK_CATALOG_SECTION_LIMIT", defaultSectionLimit),
		},
		Content: ContentConfig{
			Source:  strings.ToLower(stringWithDefault(lookup, "CHEATSTACK_CONTENT_SOURCE", defaultContentSource)),
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "CHEATSTACK_CONTENT_BASE_URL", ""), "/"),
			Token:   stringWithDefault(lookup, "CHEATSTACK_CONTENT_TOKEN", ""),
			Timeout: durationWithDefault(lookup, "CHEATSTACK_CONTENT_TIMEOUT", defaultContentTimeout),
			Dir:     stringWithDefault(lookup, "CHEATSTACK_CONTENT_DIR", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:         stringWithDefault(lookup, "CHEATSTACK_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:      stringWithDefault(lookup, "CHEATSTACK_FIRESTORE_EMULATOR_HOST", ""),
			CatalogCollection: stringWithDefault(lookup, "CHEATSTACK_FIRESTORE_CATALOG_COLLECTION", defaultCatalogCollection),
		},
		Cache: CacheConfig{
			Backend:    strings.ToLower(stringWithDefault(lookup, "CHEATSTACK_CACHE_BACKEND", defaultCacheBackend)),
			File:       stringWithDefault(lookup, "CHEATSTACK_CACHE_FILE", defaultCacheFile),
			Collection: stringWithDefault(lookup, "CHEATSTACK_CACHE_COLLECTION", defaultCacheCollection),
		},
		Contributions: ContributionsConfig{
			ProjectID: stringWithDefault(lookup, "CHEATSTACK_CONTRIBUTIONS_PROJECT_ID", ""),
			Topic:     stringWithDefault(lookup, "CHEATSTACK_CONTRIBUTIONS_TOPIC", defaultContributionsTopic),
		},
		Preview: PreviewConfig{
			Sanitize: boolWithDefault(lookup, "CHEATSTACK_PREVIEW_SANITIZE", false),
			MaxBytes: int64(intWithDefault(lookup, "CHEATSTACK_PREVIEW_MAX_BYTES", defaultPreviewMaxBytes)),
		},
	}

	resolved, err := resolveSecret(ctx, cfg.Content.Token, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Content.Token = resolved

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Catalog.PageSize <= 0 {
		missing = append(missing, "Catalog.PageSize")
	}
	if cfg.Catalog.SectionLimit <= 0 {
		missing = append(missing, "Catalog.SectionLimit")
	}
	if cfg.Content.Timeout <= 0 {
		missing = append(missing, "Content.Timeout")
	}

	switch cfg.Content.Source {
	case ContentSourceStatic:
	case ContentSourceRemote:
		if cfg.Content.BaseURL == "" {
			missing = append(missing, "Content.BaseURL")
		}
	case ContentSourceFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Content.Source")
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendFile:
		if strings.TrimSpace(cfg.Cache.File) == "" {
			missing = append(missing, "Cache.File")
		}
	case CacheBackendFirestore:
		if cfg.Firestore.ProjectID == "" && cfg.Content.Source != ContentSourceFirestore {
			missing = append(missing, "Firestore.ProjectID")
		}
		if strings.TrimSpace(cfg.Cache.Collection) == "" {
			missing = append(missing, "Cache.Collection")
		}
	default:
		missing = append(missing, "Cache.Backend")
	}

	if cfg.Preview.MaxBytes <= 0 {
		missing = append(missing, "Preview.MaxBytes")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
