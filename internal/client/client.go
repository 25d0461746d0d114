// Package client is the HTTP client of the ExpenseFlow API used by the
// terminal wizard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/autosave"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
)

// DefaultTimeout bounds every request unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

const apiKeyHeader = "x-api-key"

// Client talks to one ExpenseFlow server. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu     sync.RWMutex
	bearer string
	apiKey string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAPIKey authenticates with a personal API token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBearerToken authenticates with an access token.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearer = token }
}

// WithHTTPClient replaces the underlying client. Its cookie jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ autosave.Saver = (*Client)(nil)

// SetBearerToken replaces the access token. An empty token removes it.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

// HasCredentials reports whether requests carry a token or API key.
func (c *Client) HasCredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer != "" || c.apiKey != ""
}

// ListOptions filters ListExpenses.
type ListOptions struct {
	Status    domain.ExpenseStatus
	Type      domain.ExpenseType
	Limit     int
	NextToken *string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Type != "" {
		q.Set("type", string(o.Type))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.NextToken != nil {
		q.Set("nextToken", *o.NextToken)
	}
	return q
}

// ListExpenses returns one page of the caller's expenses and the token of the next page.
func (c *Client) ListExpenses(ctx context.Context, opts ListOptions) ([]domain.Expense, *string, error) {
	var resp dto.ListExpensesResponse
	if err := c.do(ctx, http.MethodGet, "/api/expenses", opts.query(), nil, &resp); err != nil {
		return nil, nil, err
	}
	expenses := make([]domain.Expense, 0, len(resp.Expenses))
	for _, r := range resp.Expenses {
		e, err := r.ToDomainExpense()
		if err != nil {
			return nil, nil, fmt.Errorf("decode expense %s: %w", r.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, resp.NextToken, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	var resp dto.ExpenseResponse
	if err := c.do(ctx, http.MethodGet, "/api/expenses/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	e, err := resp.ToDomainExpense()
	if err != nil {
		return nil, fmt.Errorf("decode expense %s: %w", resp.ID, err)
	}
	return &e, nil
}

// CreateExpense persists a new draft.
func (c *Client) CreateExpense(ctx context.Context, form domain.ExpenseForm) (*domain.Expense, error) {
	return c.sendForm(ctx, http.MethodPost, "/api/expenses", form)
}

// UpdateExpense overwrites the draft with the given id.
func (c *Client) UpdateExpense(ctx context.Context, id string, form domain.ExpenseForm) (*domain.Expense, error) {
	return c.sendForm(ctx, http.MethodPut, "/api/expenses/"+url.PathEscape(id), form)
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(id), nil, nil, nil)
}

// SaveDraft creates the draft when it has no id and updates it otherwise.
func (c *Client) SaveDraft(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	form := domain.RecordToForm(expense)
	if expense.ID == "" {
		return c.CreateExpense(ctx, form)
	}
	return c.UpdateExpense(ctx, expense.ID, form)
}

// SubmitExpense submits a draft. The returned message tells whether it was
// self-approved.
func (c *Client) SubmitExpense(ctx context.Context, id string) (*domain.Expense, string, error) {
	var resp dto.ExpenseEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/expenses/"+url.PathEscape(id)+"/submit", nil, nil, &resp); err != nil {
		return nil, "", err
	}
	e, err := resp.Expense.ToDomainExpense()
	if err != nil {
		return nil, "", fmt.Errorf("decode expense %s: %w", resp.Expense.ID, err)
	}
	return &e, resp.Message, nil
}

// Decide approves or rejects a submitted expense.
func (c *Client) Decide(ctx context.Context, id string, action domain.ApprovalAction, notes *string) (domain.ExpenseStatus, error) {
	var resp dto.DecisionResponse
	body := dto.DecisionRequest{Action: string(action), Notes: notes}
	if err := c.do(ctx, http.MethodPost, "/api/expenses/"+url.PathEscape(id)+"/approve", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// PendingApprovals lists the expenses awaiting the caller's decision.
func (c *Client) PendingApprovals(ctx context.Context) ([]domain.Expense, error) {
	var resp dto.PendingApprovalsResponse
	if err := c.do(ctx, http.MethodGet, "/api/approvals/pending", nil, nil, &resp); err != nil {
		return nil, err
	}
	expenses := make([]domain.Expense, 0, len(resp.Expenses))
	for _, r := range resp.Expenses {
		e, err := r.ToDomainExpense()
		if err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", r.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (c *Client) Profile(ctx context.Context) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CanAccess asks the server whether the caller may open path.
func (c *Client) CanAccess(ctx context.Context, path string) (bool, error) {
	var resp dto.AccessResponse
	if err := c.do(ctx, http.MethodGet, "/api/access", url.Values{"path": {path}}, nil, &resp); err != nil {
		return false, err
	}
	return resp.Allowed, nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, form domain.ExpenseForm) (*domain.Expense, error) {
	var resp dto.ExpenseEnvelope
	if err := c.do(ctx, method, path, nil, dto.ExpenseRequest{Expense: &form}, &resp); err != nil {
		return nil, err
	}
	e, err := resp.Expense.ToDomainExpense()
	if err != nil {
		return nil, fmt.Errorf("decode expense %s: %w", resp.Expense.ID, err)
	}
	return &e, nil
}

// do sends one JSON request. A nil out discards the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
