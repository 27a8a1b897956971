package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/stockdesk/api/transport"
)

func (c *Client) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthData, error) {
	var env transport.Envelope[transport.AuthData]
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthData, error) {
	var env transport.Envelope[transport.AuthData]
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Validate succeeds only when the remote accepts token.
func (c *Client) Validate(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodGet, path: "/auth/validate", token: token}, nil)
}

func (c *Client) Welcome(ctx context.Context, token string, req transport.WelcomeRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/reports/welcome", token: token, body: req}, nil)
}

func (c *Client) ListProducts(ctx context.Context, token string, page, size int) (*transport.ProductPage, error) {
	var out transport.ProductPage
	in := call{
		method: http.MethodGet,
		path:   "/products",
		token:  token,
		query:  map[string]int{"page": page, "size": size},
	}
	if err := c.do(ctx, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, token, id string) (*transport.ProductResponse, error) {
	var out transport.ProductResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: productPath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, req transport.ProductRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/products", token: token, body: req}, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, req transport.ProductRequest) error {
	return c.do(ctx, call{method: http.MethodPut, path: productPath(id), token: token, body: req}, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: productPath(id), token: token}, nil)
}

func (c *Client) GenerateReport(ctx context.Context, token string, req transport.ReportRequest) (*transport.ReportResponse, error) {
	var out transport.ReportResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/reports/generate", token: token, body: req, lenient: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func productPath(id string) string {
	return "/products/" + url.PathEscape(id)
}
