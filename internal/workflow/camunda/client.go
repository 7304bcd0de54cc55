// Package camunda notifies a Camunda-style BPM engine about request lifecycle events over its REST API.
package camunda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/YusovID/service-requests/internal/config"
	"github.com/YusovID/service-requests/pkg/logger/sl"
)

// ErrNoActiveTask is returned when the process instance of a request has no open user task.
var ErrNoActiveTask = errors.New("no active task for request")

type Client struct {
	baseURL    string
	processKey string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.Workflow, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		processKey: cfg.ProcessKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With(slog.String("adapter", "camunda")),
	}
}

type variable struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

type startRequest struct {
	Variables   map[string]variable `json:"variables"`
	BusinessKey string              `json:"businessKey"`
}

type completeRequest struct {
	Variables map[string]variable `json:"variables"`
}

type task struct {
	ID string `json:"id"`
}

// StartProcess starts a process instance whose business key is the request id.
func (c *Client) StartProcess(ctx context.Context, requestID int64) error {
	const op = "internal.workflow.camunda.StartProcess"

	reqURL := fmt.Sprintf("%s/process-definition/key/%s/start", c.baseURL, url.PathEscape(c.processKey))

	body := startRequest{
		Variables: map[string]variable{
			"requestId": {Value: requestID, Type: "Integer"},
		},
		BusinessKey: strconv.FormatInt(requestID, 10),
	}

	if err := c.do(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		notificationsTotal.WithLabelValues("start", resultError).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	notificationsTotal.WithLabelValues("start", resultOK).Inc()
	c.log.InfoContext(ctx, "process started", slog.Int64("request_id", requestID))

	return nil
}

// CompleteTask completes the first open task of the request's process with a status variable.
func (c *Client) CompleteTask(ctx context.Context, requestID int64, status string) error {
	const op = "internal.workflow.camunda.CompleteTask"
	log := c.log.With(slog.Int64("request_id", requestID), slog.String("status", status))

	query := url.Values{}
	query.Set("processInstanceBusinessKey", strconv.FormatInt(requestID, 10))

	var tasks []task
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/task?"+query.Encode(), nil, &tasks); err != nil {
		notificationsTotal.WithLabelValues("complete", resultError).Inc()
		return fmt.Errorf("%s: failed to fetch tasks: %w", op, err)
	}

	if len(tasks) == 0 {
		notificationsTotal.WithLabelValues("complete", resultNoTask).Inc()
		log.WarnContext(ctx, "no active tasks found")

		return fmt.Errorf("%s: %w '%d'", op, ErrNoActiveTask, requestID)
	}

	body := completeRequest{
		Variables: map[string]variable{
			"status": {Value: status, Type: "String"},
		},
	}

	reqURL := fmt.Sprintf("%s/task/%s/complete", c.baseURL, url.PathEscape(tasks[0].ID))
	if err := c.do(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		notificationsTotal.WithLabelValues("complete", resultError).Inc()
		log.ErrorContext(ctx, "failed to complete task", slog.String("task_id", tasks[0].ID), sl.Err(err))

		return fmt.Errorf("%s: failed to complete task '%s': %w", op, tasks[0].ID, err)
	}

	notificationsTotal.WithLabelValues("complete", resultOK).Inc()
	log.InfoContext(ctx, "task completed", slog.String("task_id", tasks[0].ID))

	return nil
}

// do sends an optional JSON body and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, method, reqURL string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}
