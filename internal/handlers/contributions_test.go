package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

type stubPublisher struct {
	err   error
	calls int
}

func (s *stubPublisher) PublishContribution(_ context.Context, c domain.Contribution) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "msg-" + c.ID, nil
}

func newContributionRouter(t *testing.T, publisher services.ContributionPublisher) http.Handler {
	t.Helper()
	svc, err := services.NewContributionService(services.ContributionServiceDeps{
		Publisher:   publisher,
		IDGenerator: func() string { return "01JCONTRIB" },
	})
	require.NoError(t, err)
	return NewRouter(WithContributionRoutes(NewContributionHandlers(svc).Routes))
}

func postContribution(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	return rr, decoded
}

func TestContributionHandlers_Accepted(t *testing.T) {
	publisher := &stubPublisher{}
	router := newContributionRouter(t, publisher)

	rr, body := postContribution(t, router, `{"title":"Zig","category":"languages","content":"# Zig"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, "01JCONTRIB", body["id"])
	require.Equal(t, "new", body["kind"])
	require.Equal(t, "Your cheatsheet has been submitted for review!", body["message"])
	require.Equal(t, 1, publisher.calls)

	rr, body = postContribution(t, router, `{"kind":"improvement","cheatsheet":"git","content":"git switch"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, "Your improvement has been submitted for review!", body["message"])
}

func TestContributionHandlers_Validation(t *testing.T) {
	publisher := &stubPublisher{}
	router := newContributionRouter(t, publisher)

	rr, body := postContribution(t, router, `{"kind":"improvement"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "validation_failed", body["error"])
	require.Equal(t, "This field is required", body["message"])
	require.Equal(t, []any{"content", "cheatsheet"}, body["fields"])
	require.Zero(t, publisher.calls)
}

func TestContributionHandlers_PublishFailure(t *testing.T) {
	router := newContributionRouter(t, &stubPublisher{err: errors.New("pubsub down")})

	rr, body := postContribution(t, router, `{"kind":"improvement","cheatsheet":"go","content":"x"}`)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "contribution_unavailable", body["error"])
}

func TestContributionHandlers_InvalidJSON(t *testing.T) {
	router := newContributionRouter(t, &stubPublisher{})

	rr, body := postContribution(t, router, `[1,2]`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_json", body["error"])
}
