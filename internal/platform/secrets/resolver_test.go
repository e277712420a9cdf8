package secrets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResolveCachesRemoteSecret(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/cheatstack/secrets/content-token/versions/latest"
	client.values[resource] = "token-value"

	resolver, err := NewResolver(context.Background(), nil, withClient(client), WithDefaultProject("cheatstack"))
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	defer resolver.Close()

	for i := 0; i < 2; i++ {
		got, err := resolver.ResolveSecret(context.Background(), "secret://content-token")
		if err != nil {
			t.Fatalf("ResolveSecret returned error: %v", err)
		}
		if got != "token-value" {
			t.Fatalf("expected token-value, got %s", got)
		}
	}
	if calls := client.callCount(resource); calls != 1 {
		t.Fatalf("expected one remote fetch, got %d", calls)
	}
}

func TestResolveHonoursVersionAndProjectOverride(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/other/secrets/content-token/versions/7"
	client.values[resource] = "pinned"

	resolver, err := NewResolver(context.Background(), nil, withClient(client), WithDefaultProject("cheatstack"))
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}

	got, err := resolver.ResolveSecret(context.Background(), "secret://content-token?version=7&project=other")
	if err != nil {
		t.Fatalf("ResolveSecret returned error: %v", err)
	}
	if got != "pinned" {
		t.Fatalf("expected pinned, got %s", got)
	}
}

func TestResolveWithoutProjectFails(t *testing.T) {
	resolver, err := NewResolver(context.Background(), nil, withClient(newFakeSecretClient()))
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	if _, err := resolver.ResolveSecret(context.Background(), "secret://content-token"); !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

func TestResolvePropagatesNotFound(t *testing.T) {
	resolver, err := NewResolver(context.Background(), nil, withClient(newFakeSecretClient()), WithDefaultProject("cheatstack"))
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	_, err = resolver.ResolveSecret(context.Background(), "secret://missing")
	if status.Code(errors.Unwrap(err)) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestParseReferenceRejectsOtherSchemes(t *testing.T) {
	if _, err := parseReference("https://example.com/secret"); err == nil {
		t.Fatal("expected scheme error")
	}
	if _, err := parseReference("secret://"); err == nil {
		t.Fatal("expected missing name error")
	}
}

type fakeSecretClient struct {
	mu      sync.Mutex
	values  map[string]string
	counter map[string]int
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{values: make(map[string]string), counter: make(map[string]int)}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[req.GetName()]++
	if value, ok := f.values[req.GetName()]; ok {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
		}, nil
	}
	return nil, status.Error(codes.NotFound, "not found")
}

func (f *fakeSecretClient) Close() error { return nil }

func (f *fakeSecretClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counter[name]
}
