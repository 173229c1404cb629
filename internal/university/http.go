package university

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPVerifier asks a university directory service whether a student exists
// and is active. The service takes POST {"student_id": id} and answers
// {"exists": bool, "active": bool}.
type HTTPVerifier struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPVerifier(endpoint, token string, logger *slog.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, universityID string) (bool, error) {
	payload, err := json.Marshal(map[string]string{"student_id": universityID})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call university api: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			v.logger.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("university api returned status %d", resp.StatusCode)
	}

	var body struct {
		Exists bool `json:"exists"`
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	ok := body.Exists && body.Active
	v.logger.Info("university id checked", "university_id", universityID, "valid", ok)
	return ok, nil
}
