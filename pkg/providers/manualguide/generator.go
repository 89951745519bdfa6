package manualguide

import (
	"context"
	"fmt"

	"unsubly-be/internal/entity"
	"unsubly-be/pkg/cancellation"

	"github.com/google/uuid"
)

// Generator produces human-followable cancellation instructions locally.
// It implements the manual-instruction collaborator contract; confirmation
// is a pure acknowledgement since the human outcome is recorded by the
// engine itself.
type Generator struct {
	supportURL string
}

// NewGenerator creates a manual instruction generator.
func NewGenerator(supportURL string) cancellation.ManualClient {
	if supportURL == "" {
		supportURL = "https://help.unsubly.app/manual-cancellation"
	}
	return &Generator{supportURL: supportURL}
}

func (g *Generator) ProvideInstructions(ctx context.Context, user *entity.User, req *cancellation.ManualRequest) (*cancellation.ManualResponse, error) {
	if req.ProviderName == "" {
		return nil, fmt.Errorf("provider name is required to generate instructions")
	}

	provider := req.ProviderName
	steps := []string{
		fmt.Sprintf("Sign in to your %s account using the email on file (%s).", provider, user.Email),
		fmt.Sprintf("Open the account or membership settings page for %s.", provider),
		"Locate the subscription or billing section and choose \"Cancel subscription\".",
		"Decline any retention or discount offers shown during the flow.",
		"Complete every confirmation step until the provider states the subscription is cancelled.",
		"Save or screenshot the confirmation number and the effective date.",
		fmt.Sprintf("Report the outcome back here so we can finish tracking it. Help: %s", g.supportURL),
	}

	return &cancellation.ManualResponse{
		RequestId:    uuid.NewString(),
		Instructions: steps,
	}, nil
}

func (g *Generator) Confirm(ctx context.Context, user *entity.User, requestId string, outcome *cancellation.ManualConfirmation) error {
	if outcome == nil {
		return fmt.Errorf("confirmation outcome is required")
	}
	// Nothing external to notify; the engine persists the reported outcome.
	return nil
}
