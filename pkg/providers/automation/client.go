package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/pkg/cancellation"
)

// Client talks to the external browser-automation workflow service.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates an automation-workflow client.
func NewClient(baseURL, apiKey string) cancellation.AutomationClient {
	if baseURL == "" {
		baseURL = "http://localhost:8082"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			// Workflow kickoff only; the workflow itself runs async.
			Timeout: 60 * time.Second,
		},
	}
}

type startWorkflowRequest struct {
	UserId         string          `json:"user_id"`
	UserEmail      string          `json:"user_email"`
	SubscriptionId string          `json:"subscription_id"`
	Priority       string          `json:"priority"`
	Notes          string          `json:"notes,omitempty"`
	Notifications  map[string]bool `json:"notification_preferences,omitempty"`
}

type startWorkflowResponse struct {
	RequestId           string     `json:"request_id"`
	WorkflowId          *string    `json:"workflow_id"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

func (c *Client) Initiate(ctx context.Context, user *entity.User, req *cancellation.AutomationRequest) (*cancellation.AutomationResponse, error) {
	body, err := json.Marshal(startWorkflowRequest{
		UserId:         user.Id.String(),
		UserEmail:      user.Email,
		SubscriptionId: req.SubscriptionId.String(),
		Priority:       string(req.Priority),
		Notes:          req.Notes,
		Notifications:  req.NotificationPreferences,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/workflows/cancellation", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("automation service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out startWorkflowResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}

	return &cancellation.AutomationResponse{
		RequestId:           out.RequestId,
		WorkflowId:          out.WorkflowId,
		EstimatedCompletion: out.EstimatedCompletion,
	}, nil
}
