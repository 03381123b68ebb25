package domain

import (
	"fmt"
	"strings"
	"time"
)

// CustomFields is the open extension map of a project. Values are limited to
// strings and numbers so billing code never has to reason about them.
type CustomFields map[string]any

// Normalize validates every value and converts integer kinds to float64.
func (f CustomFields) Normalize() (CustomFields, error) {
	if f == nil {
		return nil, nil
	}
	out := make(CustomFields, len(f))
	for k, v := range f {
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, NewValidationError("custom_fields", "field name must not be empty")
		}
		if reservedProjectField(key) {
			return nil, NewValidationError("custom_fields", fmt.Sprintf("%q is a reserved field name", key))
		}
		switch n := v.(type) {
		case string:
			out[key] = n
		case float64:
			out[key] = n
		case float32:
			out[key] = float64(n)
		case int:
			out[key] = float64(n)
		case int32:
			out[key] = float64(n)
		case int64:
			out[key] = float64(n)
		default:
			return nil, NewValidationError("custom_fields", fmt.Sprintf("%q must be a string or a number", key))
		}
	}
	return out, nil
}

func reservedProjectField(name string) bool {
	switch name {
	case "id", "_id", "client", "name", "rate", "rate_type", "created_at", "updated_at":
		return true
	}
	return false
}

// Project is a billable engagement for a client.
type Project struct {
	ID           string       `json:"id" bson:"_id"`
	Client       string       `json:"client" bson:"client"`
	Name         string       `json:"name" bson:"name"`
	Rate         float64      `json:"rate" bson:"rate"`
	RateType     RateType     `json:"rate_type" bson:"rate_type"`
	CustomFields CustomFields `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// ProjectPatch is a partial update of a project.
type ProjectPatch struct {
	Client   *string
	Name     *string
	Rate     *float64
	RateType *RateType
	// SetFields are merged into the custom fields; UnsetFields are removed.
	SetFields   CustomFields
	UnsetFields []string
}

// ProjectWithTotals is the listing view of a project.
type ProjectWithTotals struct {
	Project
	TotalHours    float64 `json:"total_hours"`
	TotalEarnings float64 `json:"total_earnings"`
}

// ClientFromProjectName derives a client from names shaped "Client - Project".
func ClientFromProjectName(name string) string {
	client, _, found := strings.Cut(name, " - ")
	if !found {
		return ""
	}
	return strings.TrimSpace(client)
}
