package models

import (
	"github.com/uptrace/bun"
)

// Setting is a named business setting stored as text. Typed access
// with defaults lives in internal/settings.
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:setting"`

	Key   string `bun:"key,pk" json:"key"`
	Value string `bun:"value,notnull" json:"value"`
}
