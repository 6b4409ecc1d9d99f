// Package catalog describes the event and the ticket types on sale.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TicketType is one purchasable ticket tier.
type TicketType struct {
	Code        string `yaml:"code" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Price       int    `yaml:"price" json:"price"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog is the public event description.
type Catalog struct {
	Name        string       `yaml:"name" json:"name"`
	Date        string       `yaml:"date" json:"date"`
	Venue       string       `yaml:"venue" json:"venue"`
	Currency    string       `yaml:"currency" json:"currency"`
	MaxQuantity int          `yaml:"max_quantity" json:"max_quantity"`
	TicketTypes []TicketType `yaml:"ticket_types" json:"ticket_types"`
}

// Default is used when no catalog file is configured.
func Default() *Catalog {
	return &Catalog{
		Name:        "Sanskruthi 2K25",
		Date:        "2025-05-17",
		Venue:       "Dr. Ambedkar Institute of Technology, Bengaluru",
		Currency:    "INR",
		MaxQuantity: 5,
		TicketTypes: []TicketType{
			{Code: "general", Name: "General", Price: 299, Description: "Entry to all open events"},
			{Code: "vip", Name: "VIP", Price: 599, Description: "Reserved seating for the pro-show"},
			{Code: "premium", Name: "Premium", Price: 899, Description: "VIP benefits plus fest merchandise"},
		},
	}
}

// Load reads a catalog file; an empty path yields Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, rejecting unknown fields.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog can be sold from.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("catalog: name is required")
	}
	if c.MaxQuantity <= 0 {
		return fmt.Errorf("catalog: max_quantity must be positive")
	}
	if len(c.TicketTypes) == 0 {
		return fmt.Errorf("catalog: at least one ticket type is required")
	}
	seen := make(map[string]bool, len(c.TicketTypes))
	for _, t := range c.TicketTypes {
		if t.Code == "" || t.Price <= 0 {
			return fmt.Errorf("catalog: ticket type %q needs a code and a positive price", t.Name)
		}
		if seen[t.Code] {
			return fmt.Errorf("catalog: duplicate ticket type %q", t.Code)
		}
		seen[t.Code] = true
	}
	return nil
}

// TicketType looks a tier up by code.
func (c *Catalog) TicketType(code string) (TicketType, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, t := range c.TicketTypes {
		if t.Code == code {
			return t, true
		}
	}
	return TicketType{}, false
}
