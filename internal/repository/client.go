package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/balkashynov/todus/internal/models"
)

// DefaultTimeout bounds every call to the task service
const DefaultTimeout = 15 * time.Second

// Client talks JSON over HTTP to the remote task service
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	timeout time.Duration
	base    *http.Client
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient sets the transport used underneath the auth layer
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.base = c
	}
}

// NewClient creates a task service client. token is sent as a bearer token
// on every request; an empty token sends unauthenticated requests.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("task service base URL is empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid task service URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid task service URL %q: scheme must be http or https", baseURL)
	}

	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	base := o.base
	if base == nil {
		base = &http.Client{}
	}

	httpClient := &http.Client{Transport: base.Transport}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	httpClient.Timeout = o.timeout

	return &Client{baseURL: u, http: httpClient}, nil
}

// ListTasks returns every task of the authenticated user, trashed or not
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var dtos []taskDTO
	if err := c.do(ctx, http.MethodGet, "/api/tasks/list", nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return toModels(dtos)
}

// ListTrashed returns the trashed tasks, optionally of a single category
func (c *Client) ListTrashed(ctx context.Context, categoryID *int64) ([]models.Task, error) {
	query := url.Values{}
	if categoryID != nil {
		query.Set("categoryId", strconv.FormatInt(*categoryID, 10))
	}
	var dtos []taskDTO
	if err := c.do(ctx, http.MethodGet, "/api/tasks/trash", query, nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list trashed tasks: %w", err)
	}
	return toModels(dtos)
}

// CreateTask creates a pending task
func (c *Client) CreateTask(ctx context.Context, fields TaskFields) (*models.Task, error) {
	if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
		return nil, errors.New("task name is required")
	}
	var dto taskDTO
	if err := c.do(ctx, http.MethodPost, "/api/tasks/create", nil, newTaskRequest(fields), &dto); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if dto.ID != 0 {
		return c.decoded(dto)
	}
	return c.readBackCreated(ctx, fields), nil
}

// UpdateTask applies a partial update to task id
func (c *Client) UpdateTask(ctx context.Context, id int64, fields TaskFields) (*models.Task, error) {
	var dto taskDTO
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, newTaskRequest(fields), &dto); err != nil {
		return nil, fmt.Errorf("failed to update task #%d: %w", id, err)
	}
	return c.resolved(ctx, id, dto)
}

// DeleteTask permanently removes task id
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task #%d: %w", id, err)
	}
	return nil
}

// SetTrashed moves task id to the trash or restores it
func (c *Client) SetTrashed(ctx context.Context, id int64, trashed bool) (*models.Task, error) {
	path := fmt.Sprintf("/api/tasks/restore/%d", id)
	if trashed {
		path = fmt.Sprintf("/api/tasks/trash/%d", id)
	}
	var dto taskDTO
	if err := c.do(ctx, http.MethodPut, path, nil, struct{}{}, &dto); err != nil {
		return nil, fmt.Errorf("failed to set trashed=%t on task #%d: %w", trashed, id, err)
	}
	return c.resolved(ctx, id, dto)
}

// ListCategories returns the user's categories
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories/all", nil, nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListPriorities returns the user's priorities
func (c *Client) ListPriorities(ctx context.Context) ([]models.Priority, error) {
	var priorities []models.Priority
	if err := c.do(ctx, http.MethodGet, "/api/priorities/all", nil, nil, &priorities); err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	return priorities, nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}

func (c *Client) decoded(dto taskDTO) (*models.Task, error) {
	t, err := dto.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolved returns the task a write answered with. Some endpoints answer
// with a message body only; the task is then read back by id. The write
// already went through, so a failed read back yields a bare task with just
// the id rather than an error.
func (c *Client) resolved(ctx context.Context, id int64, dto taskDTO) (*models.Task, error) {
	if dto.ID != 0 {
		return c.decoded(dto)
	}
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return &models.Task{ID: id}, nil
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return &models.Task{ID: id}, nil
}

// readBackCreated finds a task created by a message-only response: the
// newest untrashed task with the requested name. Without a match the task
// is built from the request fields and has no id.
func (c *Client) readBackCreated(ctx context.Context, fields TaskFields) *models.Task {
	name := strings.TrimSpace(*fields.Name)
	if tasks, err := c.ListTasks(ctx); err == nil {
		var found *models.Task
		for i := range tasks {
			t := &tasks[i]
			if t.Trashed || t.Name != name {
				continue
			}
			if found == nil || t.ID > found.ID {
				found = t
			}
		}
		if found != nil {
			return found
		}
	}
	return &models.Task{
		Name:        name,
		Description: deref(fields.Description),
		Status:      models.StatusPending,
		PriorityID:  fields.PriorityID,
		CategoryID:  fields.CategoryID,
		DueDate:     fields.DueDate,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

// SaveCategory creates the category when it has no id, otherwise updates it
func (c *Client) SaveCategory(ctx context.Context, category *models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if category.ID == 0 {
		var created models.Category
		if err := c.do(ctx, http.MethodPost, "/api/categories/create", nil, category, &created); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		if created.ID != 0 {
			category.ID = created.ID
		}
		return nil
	}
	path := fmt.Sprintf("/api/categories/update/%d", category.ID)
	if err := c.do(ctx, http.MethodPut, path, nil, category, nil); err != nil {
		return fmt.Errorf("failed to update category #%d: %w", category.ID, err)
	}
	return nil
}
