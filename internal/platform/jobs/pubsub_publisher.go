package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

// PubSubContributionPublisher publishes accepted contributions to a Pub/Sub topic for review.
type PubSubContributionPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubContributionPublisher constructs a Pub/Sub backed contribution publisher.
func NewPubSubContributionPublisher(topic *pubsub.Topic) (*PubSubContributionPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub contribution publisher: topic is required")
	}
	return &PubSubContributionPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishContribution enqueues the contribution and returns the server message id.
func (p *PubSubContributionPublisher) PublishContribution(ctx context.Context, contribution domain.Contribution) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub contribution publisher: not initialised")
	}

	data, err := p.marshal(contribution)
	if err != nil {
		return "", fmt.Errorf("marshal contribution: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: contributionAttributes(contribution),
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish contribution: %w", err)
	}
	return id, nil
}

func contributionAttributes(c domain.Contribution) map[string]string {
	attrs := make(map[string]string)
	setAttr(attrs, "contributionId", c.ID)
	setAttr(attrs, "kind", string(c.Kind))
	setAttr(attrs, "cheatsheet", c.Cheatsheet)
	setAttr(attrs, "category", string(c.Category))
	return attrs
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
