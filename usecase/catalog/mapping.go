package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
)

// createdAtLayouts are tried in order. Zoneless layouts are read in local time.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MapProducts converts raw catalog entries. Entries with a missing or
// unreadable creation time are stamped with now.
func MapProducts(raw []transport.ProductResponse, now time.Time) []domain.Product {
	out := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, MapProduct(p, now))
	}
	return out
}

func MapProduct(p transport.ProductResponse, now time.Time) domain.Product {
	createdAt, ok := ParseCreatedAt(p.CreatedAt)
	if !ok {
		createdAt = now
	}
	return domain.Product{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    int64(p.Quantity),
		CreatedAt:   createdAt,
	}
}

// ParseCreatedAt reads the remote timestamp formats. ok is false for empty
// or unrecognised input.
func ParseCreatedAt(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toRequest(in domain.ProductInput) transport.ProductRequest {
	return transport.ProductRequest{
		Name:        in.Name,
		Description: in.Description,
		Price:       json.Number(in.Price.String()),
		Quantity:    in.Quantity,
	}
}
