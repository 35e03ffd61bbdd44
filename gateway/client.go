package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fieldops-client/models"
	"fieldops-client/utils/logger"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client talks to the remote field-service API. Every call runs under a
// deadline taken from config; hitting the deadline cancels the in-flight
// request rather than abandoning it.
type Client struct {
	http   *http.Client
	config *models.Config
	logger logger.Logger
}

// NewClient creates a new remote API client
func NewClient(cfg *models.Config, log logger.Logger) *Client {
	return &Client{
		http:   &http.Client{},
		config: cfg,
		logger: log,
	}
}

// GetJobs fetches the technician's full job list.
func (c *Client) GetJobs(ctx context.Context, technicianID string) ([]*models.Job, error) {
	var jobs []*models.Job
	path := fmt.Sprintf("/technicians/%s/jobs", technicianID)
	if err := c.get(ctx, path, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobStats fetches the per-status job counts.
func (c *Client) GetJobStats(ctx context.Context, technicianID string) (*models.JobStats, error) {
	var stats models.JobStats
	path := fmt.Sprintf("/technicians/%s/jobs/stats", technicianID)
	if err := c.get(ctx, path, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetClockRecord fetches the clock record for (technician, date).
func (c *Client) GetClockRecord(ctx context.Context, technicianID, date string) (*models.ClockRecord, error) {
	var record models.ClockRecord
	path := fmt.Sprintf("/technicians/%s/clock/%s", technicianID, date)
	if err := c.get(ctx, path, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// AcceptJob confirms an accept transition with the remote source.
func (c *Client) AcceptJob(ctx context.Context, jobID, technicianID string) error {
	body := map[string]interface{}{"technicianID": technicianID}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/accept", jobID), body, nil)
}

// StartJob confirms a start transition, carrying the location fix that gated it.
func (c *Client) StartJob(ctx context.Context, jobID, technicianID string, location models.Location) error {
	body := map[string]interface{}{
		"technicianID": technicianID,
		"location":     location,
	}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/start", jobID), body, nil)
}

// UpdateJobStatus pushes a status change that has no dedicated endpoint,
// e.g. pausing back to accepted.
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, notes string) error {
	body := map[string]interface{}{
		"status": status,
		"notes":  notes,
	}
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/jobs/%s/status", jobID), body, nil)
}

// CompleteJob confirms a complete transition.
func (c *Client) CompleteJob(ctx context.Context, jobID, technicianID string, timeSpentHours float64, notes string) error {
	body := map[string]interface{}{
		"technicianID":   technicianID,
		"timeSpentHours": timeSpentHours,
		"notes":          notes,
	}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/complete", jobID), body, nil)
}

// SubmitSignOff persists a work-in-progress or final sign-off record.
func (c *Client) SubmitSignOff(ctx context.Context, record *models.SignOffRecord) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/signoff", record.JobID), record, nil)
}

// get issues a read. Failures of any kind, error statuses included, come
// back as SyncFailureError so the sync layer can treat every poll failure
// identically and fall back to the snapshot cache.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	return c.decodeEnvelope(path, body, out, false)
}

// send issues a write. A non-success response becomes RemoteRejectionError.
func (c *Client) send(ctx context.Context, method, path string, payload, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	body, err := c.do(ctx, method, path, reader, true)
	if err != nil {
		return err
	}
	return c.decodeEnvelope(path, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, write bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	url := strings.TrimRight(c.config.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &models.SyncFailureError{Kind: models.SyncFailureNetwork, Endpoint: path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := models.SyncFailureNetwork
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			kind = models.SyncFailureTimeout
		}
		c.logger.Debugf("%s %s failed after %v: %v", method, path, time.Since(started), err)
		return nil, &models.SyncFailureError{Kind: kind, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.SyncFailureError{Kind: models.SyncFailureNetwork, Endpoint: path, Err: err}
	}

	if resp.StatusCode >= 300 {
		if write {
			return nil, &models.RemoteRejectionError{
				Endpoint: path,
				Code:     resp.StatusCode,
				Message:  gjson.GetBytes(raw, "message").String(),
			}
		}
		return nil, &models.SyncFailureError{
			Kind:     models.SyncFailureRemote,
			Endpoint: path,
			Err:      fmt.Errorf("http status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "message").String()),
		}
	}

	return raw, nil
}

// decodeEnvelope unwraps the {status, code, message, data} envelope. Bodies
// that do not parse are a sync failure, never a panic.
func (c *Client) decodeEnvelope(path string, raw []byte, out interface{}, write bool) error {
	if !gjson.ValidBytes(raw) {
		return &models.SyncFailureError{
			Kind:     models.SyncFailureMalformed,
			Endpoint: path,
			Err:      fmt.Errorf("response is not valid JSON"),
		}
	}

	status := gjson.GetBytes(raw, "status")
	if !status.Exists() || status.String() != "success" {
		message := gjson.GetBytes(raw, "message").String()
		if write {
			return &models.RemoteRejectionError{
				Endpoint: path,
				Code:     int(gjson.GetBytes(raw, "code").Int()),
				Message:  message,
			}
		}
		return &models.SyncFailureError{
			Kind:     models.SyncFailureRemote,
			Endpoint: path,
			Err:      fmt.Errorf("remote status %q: %s", status.String(), message),
		}
	}

	if out == nil {
		return nil
	}

	data := gjson.GetBytes(raw, "data")
	if !data.Exists() {
		return &models.SyncFailureError{
			Kind:     models.SyncFailureMalformed,
			Endpoint: path,
			Err:      fmt.Errorf("success envelope carries no data"),
		}
	}

	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return &models.SyncFailureError{Kind: models.SyncFailureMalformed, Endpoint: path, Err: err}
	}

	return nil
}
