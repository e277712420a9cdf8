// Package secrets resolves secret:// configuration references against Google Secret Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNoProject is returned when a reference names no project and no default is configured.
var ErrNoProject = errors.New("secrets: no project for reference")

type accessClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Resolver fetches secret payloads and memoises them for the life of the process.
type Resolver struct {
	client     accessClient
	ownsClient bool
	project    string
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDefaultProject sets the project used when a reference has no ?project= override.
func WithDefaultProject(project string) Option {
	return func(r *Resolver) { r.project = strings.TrimSpace(project) }
}

func withClient(client accessClient) Option {
	return func(r *Resolver) { r.client = client }
}

// NewResolver connects to Secret Manager unless a client was injected.
func NewResolver(ctx context.Context, clientOpts []option.ClientOption, opts ...Option) (*Resolver, error) {
	r := &Resolver{logger: zap.NewNop(), cache: make(map[string]string)}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		client, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("secrets: create client: %w", err)
		}
		r.client = client
		r.ownsClient = true
	}
	return r, nil
}

// ResolveSecret returns the payload for ref, e.g. secret://content-token?version=3&project=p.
func (r *Resolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}
	project := parsed.project
	if project == "" {
		project = r.project
	}
	if project == "" {
		return "", fmt.Errorf("%w: %s", ErrNoProject, parsed.secret)
	}
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, parsed.secret, parsed.version)

	r.mu.Lock()
	value, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return value, nil
	}

	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secrets: access %s: %w", parsed.secret, err)
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", parsed.secret)
	}
	value = string(resp.GetPayload().GetData())

	r.mu.Lock()
	r.cache[name] = value
	r.mu.Unlock()
	r.logger.Debug("secret resolved", zap.String("secret", parsed.secret), zap.String("version", parsed.version))
	return value, nil
}

// Close releases the client when the resolver created it.
func (r *Resolver) Close() error {
	if r.ownsClient && r.client != nil {
		return r.client.Close()
	}
	return nil
}

type reference struct {
	secret  string
	version string
	project string
}

func parseReference(ref string) (reference, error) {
	if strings.TrimSpace(ref) == "" {
		return reference{}, errors.New("secrets: empty reference")
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return reference{}, fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return reference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	secret := strings.Trim(u.Host+u.Path, "/")
	if secret == "" {
		return reference{}, fmt.Errorf("secrets: missing secret name in %q", ref)
	}
	query := u.Query()
	version := strings.TrimSpace(query.Get("version"))
	if version == "" {
		version = "latest"
	}
	return reference{
		secret:  secret,
		version: version,
		project: strings.TrimSpace(query.Get("project")),
	}, nil
}
