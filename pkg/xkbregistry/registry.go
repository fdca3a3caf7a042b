// Package xkbregistry reads the xkb layout registry (evdev.xml) so
// configuration may name the avoidance layout either by code ("ru") or by
// description ("Russian").
package xkbregistry

import (
	"encoding/xml"
	"fmt"
	"os"
)

type Registry struct {
	XMLName xml.Name `xml:"xkbConfigRegistry"`
	Layouts []Layout `xml:"layoutList>layout"`
}

type Layout struct {
	Name        string    `xml:"configItem>name"`
	Description string    `xml:"configItem>description"`
	Variants    []Variant `xml:"variantList>variant"`
}

type Variant struct {
	Name        string `xml:"configItem>name"`
	Description string `xml:"configItem>description"`
}

func Parse(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer file.Close()

	registry := &Registry{}
	if err := xml.NewDecoder(file).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode registry xml: %w", err)
	}

	return registry, nil
}

// Code resolves a layout code or description to its code. Returns "" when
// the registry knows neither.
func (r *Registry) Code(nameOrCode string) string {
	for _, l := range r.Layouts {
		if l.Name == nameOrCode || l.Description == nameOrCode {
			return l.Name
		}
		for _, v := range l.Variants {
			if v.Description == nameOrCode {
				return l.Name
			}
		}
	}
	return ""
}

// Description returns the human-readable name for a layout code, or "" when
// unknown.
func (r *Registry) Description(code string) string {
	for _, l := range r.Layouts {
		if l.Name == code {
			return l.Description
		}
	}
	return ""
}
