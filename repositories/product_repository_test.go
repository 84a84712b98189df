package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTable(t *testing.T) {
	assert.NoError(t, validTable(TableProducts))
	assert.NoError(t, validTable(TableEnhancedProducts))
	assert.Error(t, validTable("users; DROP TABLE products"))
}
