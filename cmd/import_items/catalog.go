package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
)

// decodeReader devuelve un lector UTF-8 sobre raw. "auto" elige ISO-8859-1 si raw no es UTF-8 válido.
func decodeReader(raw []byte, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "utf8", "utf-8":
		return transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(transform.Nop)), nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	case "auto", "":
		if utf8.Valid(raw) {
			return decodeReader(raw, "utf8")
		}
		return decodeReader(raw, "latin1")
	}
	return nil, fmt.Errorf("codificación desconocida: %s", encoding)
}

// ParseCatalog convierte el CSV en solicitudes de creación. Los errores indican la línea del archivo.
func ParseCatalog(raw []byte, encoding string, delim rune) ([]dto.CreateItemRequest, error) {
	r, err := decodeReader(raw, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("archivo vacío")
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"sku", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var out []dto.CreateItemRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get("sku") == "" && get("name") == "" {
			continue
		}
		row := dto.CreateItemRequest{
			SKU:           get("sku"),
			Name:          get("name"),
			Barcode:       get("barcode"),
			Description:   get("description"),
			Category:      get("category"),
			Brand:         get("brand"),
			Model:         get("model"),
			UnitOfMeasure: get("unit_of_measure"),
			SupplierID:    get("supplier_id"),
			Notes:         get("notes"),
		}
		if row.UnitPrice, err = parseMoney(get("unit_price")); err != nil {
			return nil, fmt.Errorf("línea %d: unit_price: %w", line, err)
		}
		if row.CostPrice, err = parseMoney(get("cost_price")); err != nil {
			return nil, fmt.Errorf("línea %d: cost_price: %w", line, err)
		}
		if row.InitialQuantity, err = parseInt(get("quantity")); err != nil {
			return nil, fmt.Errorf("línea %d: quantity: %w", line, err)
		}
		if row.MinimumStockLevel, err = parseInt(get("minimum_stock_level")); err != nil {
			return nil, fmt.Errorf("línea %d: minimum_stock_level: %w", line, err)
		}
		if row.ReorderPoint, err = parseInt(get("reorder_point")); err != nil {
			return nil, fmt.Errorf("línea %d: reorder_point: %w", line, err)
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, errors.New("el archivo no tiene filas de datos")
	}
	return out, nil
}

// parseMoney acepta "1234.50" o "1234,50" (coma decimal sin separador de miles).
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
