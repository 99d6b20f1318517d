package extract

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"neo-platform/internal/models"
)

// cadDocument is the layout of the JPL close-approach data API response
type cadDocument struct {
	Signature map[string]interface{} `json:"signature"`
	Count     json.Number            `json:"count"`
	Fields    []string               `json:"fields"`
	Data      [][]interface{}        `json:"data"`
}

// ReadNEORecords reads a headed NEO catalog CSV into raw records keyed by column name
func ReadNEORecords(r io.Reader) ([]models.RawRecord, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("neo catalog is empty: missing header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		rec := make(models.RawRecord, len(header))
		for i, col := range header {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	return records, header, nil
}

// ReadCADRecords reads a close-approach JSON document into raw records keyed by field name
// JSON nulls are left out of the record so they read as absent
func ReadCADRecords(r io.Reader) ([]models.RawRecord, []string, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var doc cadDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode close approach document: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, nil, fmt.Errorf("close approach document has no fields")
	}

	records := make([]models.RawRecord, 0, len(doc.Data))
	for i, row := range doc.Data {
		if len(row) != len(doc.Fields) {
			return nil, nil, fmt.Errorf("row %d: expected %d values, got %d", i, len(doc.Fields), len(row))
		}

		rec := make(models.RawRecord, len(doc.Fields))
		for j, field := range doc.Fields {
			switch v := row[j].(type) {
			case nil:
			case string:
				rec[field] = v
			case json.Number:
				rec[field] = v.String()
			default:
				rec[field] = fmt.Sprint(v)
			}
		}
		records = append(records, rec)
	}

	return records, doc.Fields, nil
}
