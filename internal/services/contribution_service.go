package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

const (
	newCheatsheetMessage = "Your cheatsheet has been submitted for review!"
	improvementMessage   = "Your improvement has been submitted for review!"
)

// ErrContributionPublisherMissing signals that no publisher was configured.
var ErrContributionPublisherMissing = errors.New("contribution service: publisher is not configured")

// ValidationError lists the contribute form fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "contribution: required fields missing: " + strings.Join(e.Fields, ", ")
}

// ContributionServiceDeps groups constructor parameters for the contribution service.
type ContributionServiceDeps struct {
	Publisher   ContributionPublisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
}

type contributionService struct {
	publisher ContributionPublisher
	clock     func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// NewContributionService constructs the contribution intake.
func NewContributionService(deps ContributionServiceDeps) (ContributionService, error) {
	if deps.Publisher == nil {
		return nil, ErrContributionPublisherMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &contributionService{
		publisher: deps.Publisher,
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger.Named("contributions"),
	}, nil
}

func (s *contributionService) Submit(ctx context.Context, input ContributionInput) (ContributionReceipt, error) {
	contribution, err := s.validate(input)
	if err != nil {
		return ContributionReceipt{}, err
	}
	contribution.ID = s.newID()
	contribution.SubmittedAt = s.clock()

	messageID, err := s.publisher.PublishContribution(ctx, contribution)
	if err != nil {
		return ContributionReceipt{}, fmt.Errorf("contribution service: publish %s: %w", contribution.ID, err)
	}
	s.logger.Info("contribution accepted",
		zap.String("contributionId", contribution.ID),
		zap.String("kind", string(contribution.Kind)),
		zap.String("messageId", messageID),
	)

	message := newCheatsheetMessage
	if contribution.Kind == domain.ContributionImprovement {
		message = improvementMessage
	}
	return ContributionReceipt{
		ID:        contribution.ID,
		Kind:      contribution.Kind,
		Message:   message,
		MessageID: messageID,
	}, nil
}

func (s *contributionService) validate(input ContributionInput) (domain.Contribution, error) {
	var missing []string

	kind, ok := domain.ParseContributionKind(input.Kind)
	if !ok {
		missing = append(missing, "kind")
	}
	contribution := domain.Contribution{
		Kind:    kind,
		Content: strings.TrimSpace(input.Content),
		Email:   strings.TrimSpace(input.Email),
	}
	if contribution.Content == "" {
		missing = append(missing, "content")
	}

	switch kind {
	case domain.ContributionNew:
		contribution.Title = strings.TrimSpace(input.Title)
		if contribution.Title == "" {
			missing = append(missing, "title")
		}
		category, ok := domain.ParseCategory(input.Category)
		if !ok {
			missing = append(missing, "category")
		}
		contribution.Category = category
	case domain.ContributionImprovement:
		contribution.Cheatsheet = strings.TrimSpace(input.Cheatsheet)
		if contribution.Cheatsheet == "" {
			missing = append(missing, "cheatsheet")
		}
	}

	if len(missing) > 0 {
		return domain.Contribution{}, &ValidationError{Fields: missing}
	}
	return contribution, nil
}

// LogContributionPublisher records contributions in the log when no queue is configured.
type LogContributionPublisher struct {
	Logger *zap.Logger
}

func (p LogContributionPublisher) PublishContribution(_ context.Context, c domain.Contribution) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("contribution queued to log",
		zap.String("contributionId", c.ID),
		zap.String("kind", string(c.Kind)),
		zap.String("cheatsheet", c.Cheatsheet),
		zap.String("title", c.Title),
		zap.Int("contentBytes", len(c.Content)),
	)
	return c.ID, nil
}
