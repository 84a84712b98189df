package libs

import (
	"testing"

	"ooru-foods/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRupee(t *testing.T) {
	tests := map[float64]string{
		0:          "0.00",
		49:         "49.00",
		999.999:    "1,000.00",
		1234.5:     "1,234.50",
		1234567.89: "1,234,567.89",
		-250.5:     "-250.50",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatRupee(in), "FormatRupee(%v)", in)
	}
}

func TestNewMailer_RequiresSMTP(t *testing.T) {
	_, err := NewMailer("", 587, "user", "pass", "orders@oorufoods.in")
	assert.Error(t, err)
}

func TestOrderConfirmationBody(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, Quantity: 2, Product: &models.Product{ID: 1, Name: "Podi Idli", Price: 100}},
	}

	body := orderConfirmationBody(42, 1249, items)
	require.NotEmpty(t, body)
	assert.Contains(t, body, "Podi Idli")
	assert.Contains(t, body, "1,249.00")
	assert.Contains(t, body, "42")
}

func TestOrderConfirmationBody_EscapesNames(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 2, Quantity: 1, Product: &models.Product{ID: 2, Name: "<b>Dosa</b>", Price: 250.5}},
	}

	body := orderConfirmationBody(7, 250.5, items)
	assert.Contains(t, body, "&lt;b&gt;Dosa&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Dosa</b>")
}
