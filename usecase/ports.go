package usecase

import (
	"context"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
)

// AuthGateway is the remote authentication surface.
type AuthGateway interface {
	Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthData, error)
	Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthData, error)
	Validate(ctx context.Context, token string) error
	Welcome(ctx context.Context, token string, req transport.WelcomeRequest) error
}

// ProductGateway is the remote catalog surface.
type ProductGateway interface {
	ListProducts(ctx context.Context, token string, page, size int) (*transport.ProductPage, error)
	GetProduct(ctx context.Context, token, id string) (*transport.ProductResponse, error)
	CreateProduct(ctx context.Context, token string, req transport.ProductRequest) error
	UpdateProduct(ctx context.Context, token, id string, req transport.ProductRequest) error
	DeleteProduct(ctx context.Context, token, id string) error
}

// ReportGateway submits generated reports.
type ReportGateway interface {
	GenerateReport(ctx context.Context, token string, req transport.ReportRequest) (*transport.ReportResponse, error)
}

// SessionReader exposes the token and identity snapshot other stores read at
// the start of each operation.
type SessionReader interface {
	Token() string
	Current() domain.Session
}

// WhatsAppSource returns the remembered delivery number, if any.
type WhatsAppSource interface {
	WhatsApp() string
}
