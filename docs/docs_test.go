package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))
	assert.Equal(t, "2.0", spec["swagger"])
	paths, _ := spec["paths"].(map[string]any)
	assert.Contains(t, paths, "/api/items/{id}/adjust-stock")
	assert.Contains(t, paths, "/api/orders/{id}/status")
	assert.Contains(t, paths, "/api/reports/sales.pdf")
	assert.Contains(t, paths, "/api/users/{id}/change-password")
}
