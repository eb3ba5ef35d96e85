package models

import (
	"strings"
	"time"
)

// Category groups products.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// CategorySummary is the category projection nested in products.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryInput is used for creating categories.
type CategoryInput struct {
	Name string `json:"name"`
}

func (c *CategoryInput) Validate() string {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "name is required"
	}
	return ""
}
