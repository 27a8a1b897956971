package transport

import "encoding/json"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type WelcomeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductRequest carries price as a JSON number, not a quoted decimal.
type ProductRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Quantity    int64       `json:"quantity"`
}

// ReportRequest keeps the remote's Portuguese aggregate field names.
type ReportRequest struct {
	Type          string      `json:"type"`
	Email         string      `json:"email,omitempty"`
	WhatsApp      string      `json:"whatsapp,omitempty"`
	Name          string      `json:"name,omitempty"`
	StartDate     string      `json:"startDate,omitempty"`
	EndDate       string      `json:"endDate,omitempty"`
	TotalProdutos int64       `json:"totalProdutos"`
	ValorTotal    json.Number `json:"valorTotal"`
}
