package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Token is the login result.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dataset is an uploaded file with its summary statistics.
type Dataset struct {
	ID               string         `json:"id"`
	Uploader         *string        `json:"uploader"`
	UploaderUsername *string        `json:"uploader_username"`
	File             string         `json:"file"`
	FileName         string         `json:"file_name"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	TotalCount       int            `json:"total_count"`
	AvgFlowrate      float64        `json:"avg_flowrate"`
	AvgPressure      float64        `json:"avg_pressure"`
	AvgTemperature   float64        `json:"avg_temperature"`
	TypeDistribution map[string]int `json:"type_distribution"`
}

// Row is one raw-data row with the server's column order preserved.
type Row struct {
	Columns []string
	Values  []any
}

// UnmarshalJSON reads a JSON object keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("raw row: expected object, got %v", tok)
	}

	r.Columns, r.Values = nil, nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("raw row: column %q: %w", key, err)
		}
		r.Columns = append(r.Columns, key)
		r.Values = append(r.Values, v)
	}
	_, err = dec.Token()
	return err
}

// Format renders the cell of column i for display; missing values are empty.
func (r Row) Format(i int) string {
	if i < 0 || i >= len(r.Values) || r.Values[i] == nil {
		return ""
	}
	return fmt.Sprint(r.Values[i])
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status         int      `json:"-"`
	Message        string   `json:"message"`
	Action         string   `json:"action"`
	Code           string   `json:"code"`
	MissingColumns []string `json:"missing_columns"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
