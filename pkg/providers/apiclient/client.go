package apiclient

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

// Client talks to the external provider-API cancellation service.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates an api-cancel client.
func NewClient(baseURL, apiKey string) cancellation.APICancelClient {
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type initiateRequest struct {
	UserId         string `json:"user_id"`
	UserEmail      string `json:"user_email"`
	SubscriptionId string `json:"subscription_id"`
	Priority       string `json:"priority"`
	Notes          string `json:"notes,omitempty"`
}

type initiateResponse struct {
	RequestId        string     `json:"request_id"`
	Status           string     `json:"status"`
	ConfirmationCode *string    `json:"confirmation_code"`
	EffectiveDate    *time.Time `json:"effective_date"`
	RefundAmount     *float64   `json:"refund_amount"`
}

func (c *Client) Initiate(ctx context.Context, user *entity.User, req *cancellation.APICancelRequest) (*cancellation.APICancelResponse, error) {
	body, err := json.Marshal(initiateRequest{
		UserId:         user.Id.String(),
		UserEmail:      user.Email,
		SubscriptionId: req.SubscriptionId.String(),
		Priority:       string(req.Priority),
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/cancellations", c.BaseURL)
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
		return nil, fmt.Errorf("api cancel service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out initiateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}

	return &cancellation.APICancelResponse{
		RequestId:        out.RequestId,
		Status:           out.Status,
		ConfirmationCode: out.ConfirmationCode,
		EffectiveDate:    out.EffectiveDate,
		RefundAmount:     out.RefundAmount,
	}, nil
}
