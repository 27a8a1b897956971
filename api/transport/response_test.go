package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductResponse_CoercesNumbers(t *testing.T) {
	body := `{"content":[
		{"id":7,"name":"Pen","description":"Blue","price":10.5,"quantity":3,"createdAt":"2024-01-15T10:00:00"},
		{"id":"8","name":"Ink","description":"Black","price":"2.25","quantity":"4"}
	],"page":0,"size":10,"totalElements":2,"totalPages":1,"last":true}`

	var page ProductPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Content, 2)

	assert.Equal(t, FlexString("7"), page.Content[0].ID)
	assert.Equal(t, "10.5", page.Content[0].Price.String())
	assert.Equal(t, FlexInt(3), page.Content[0].Quantity)

	assert.Equal(t, FlexString("8"), page.Content[1].ID)
	assert.Equal(t, "2.25", page.Content[1].Price.String())
	assert.Equal(t, FlexInt(4), page.Content[1].Quantity)
	assert.Empty(t, page.Content[1].CreatedAt)
}

func TestFlexInt_RejectsGarbage(t *testing.T) {
	var n FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Equal(t, FlexInt(0), n)
	require.NoError(t, json.Unmarshal([]byte(`2.0`), &n))
	assert.Equal(t, FlexInt(2), n)
}

func TestReportRequest_NumbersStayUnquoted(t *testing.T) {
	out, err := json.Marshal(ReportRequest{
		Type:          "Custom",
		Email:         "a@b.com",
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-31",
		TotalProdutos: 3,
		ValorTotal:    json.Number("30.00"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Custom","email":"a@b.com","startDate":"2024-01-01","endDate":"2024-01-31","totalProdutos":3,"valorTotal":30.00}`, string(out))
}
