package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCatalog_UTF8(t *testing.T) {
	raw := []byte("\ufeffsku,name,category,unit_price,cost_price,quantity,reorder_point\n" +
		"MTR-01,Martillo de uña,tools,30.5,18,12,3\n" +
		"\n" +
		"DST-02,Destornillador,tools,\"12,75\",7,0,2\n")

	rows, err := ParseCatalog(raw, "auto", ',')
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MTR-01", rows[0].SKU)
	assert.Equal(t, "Martillo de uña", rows[0].Name)
	assert.True(t, rows[0].UnitPrice.Equal(decimal.RequireFromString("30.5")))
	assert.Equal(t, int64(12), rows[0].InitialQuantity)
	assert.Equal(t, int64(3), rows[0].ReorderPoint)
	assert.True(t, rows[1].UnitPrice.Equal(decimal.RequireFromString("12.75")))
}

func TestParseCatalog_Latin1Automatico(t *testing.T) {
	utf := "sku;name;brand\nPLN-01;Pinza pequeña;Ñandú\n"
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(utf))
	require.NoError(t, err)

	rows, err := ParseCatalog(raw, "auto", ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pinza pequeña", rows[0].Name)
	assert.Equal(t, "Ñandú", rows[0].Brand)
}

func TestParseCatalog_Errores(t *testing.T) {
	_, err := ParseCatalog([]byte("name\nSolo nombre\n"), "utf8", ',')
	assert.ErrorContains(t, err, `"sku"`)

	_, err = ParseCatalog([]byte("sku,name,quantity\nA,B,muchos\n"), "utf8", ',')
	assert.ErrorContains(t, err, "línea 2: quantity")

	_, err = ParseCatalog([]byte("sku,name\n"), "utf8", ',')
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("sku,name\nA,B\n"), "ebcdic", ',')
	assert.ErrorContains(t, err, "codificación desconocida")
}
