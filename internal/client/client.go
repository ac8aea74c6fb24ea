package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/go-resty/resty/v2"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the registry API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry api: %d %s", e.Status, e.Message)
}

// Client talks to the registry API on behalf of one user.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: rc}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/login")
	if err := checkResponse(resp, err); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// SetToken reuses a token obtained elsewhere.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// CreateProduct saves one candidate into registryID and returns the new product id.
func (c *Client) CreateProduct(ctx context.Context, registryID int64, cand models.Candidate, storeURL string) (int64, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return 0, err
	}

	body := map[string]any{
		"name":        cand.Name,
		"price":       cand.Price,
		"description": cand.Description,
		"imageUrl":    cand.ImageURL,
		"rating":      cand.Rating,
		"reviewCount": cand.ReviewCount,
		"productUrl":  cand.ProductURL,
		"storeUrl":    storeURL,
	}

	var out struct {
		ID int64 `json:"id"`
	}

	resp, err := req.
		SetPathParam("registryID", strconv.FormatInt(registryID, 10)).
		SetBody(body).
		SetResult(&out).
		Post("/registries/{registryID}/products")
	if err := checkResponse(resp, err); err != nil {
		return 0, err
	}

	return out.ID, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("productID", strconv.FormatInt(id, 10)).
		Delete("/products/{productID}")
	return checkResponse(resp, err)
}

type ListQuery struct {
	RegistryID int64
	Query      string
	Page       int
	Limit      int
}

func (c *Client) ListProducts(ctx context.Context, q ListQuery) ([]models.SavedProduct, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}

	if q.RegistryID > 0 {
		req.SetQueryParam("registryId", strconv.FormatInt(q.RegistryID, 10))
	}
	if q.Query != "" {
		req.SetQueryParam("q", q.Query)
	}
	if q.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}

	var out struct {
		Items []models.SavedProduct `json:"items"`
	}

	resp, err := req.SetResult(&out).Get("/products")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	if out.Items == nil {
		out.Items = []models.SavedProduct{}
	}
	return out.Items, nil
}

func (c *Client) authed(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == "" {
		return nil, ErrNotLoggedIn
	}

	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetError(&errorBody{}), nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("registry api request failed: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*errorBody); ok && e.Error != "" {
		msg = e.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
