// Package theme maps the cosmetic theme setting to a color palette. It has no
// bearing on the computed data.
package theme

import (
	"fmt"
	"strings"
)

type Name string

const (
	Light    Name = "light"
	Dark     Name = "dark"
	Black    Name = "black"
	Blue     Name = "blue"
	Orange   Name = "orange"
	Graffiti Name = "graffiti"

	Default = Black
)

var Names = []Name{Light, Dark, Black, Blue, Orange, Graffiti}

// Palette holds CSS color values. Card is an RGB triple, combined with an
// opacity by the caller.
type Palette struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Accent     string `json:"accent"`
	Animated   bool   `json:"animated"`
}

var palettes = map[Name]Palette{
	Light:    {Background: "#F5F7FA", Text: "#2D3748", Card: "255, 255, 255", Accent: "#4A5568"},
	Dark:     {Background: "#1A202C", Text: "#E2E8F0", Card: "45, 55, 72", Accent: "#A0AEC0"},
	Black:    {Background: "#000000", Text: "#FFFFFF", Card: "26, 32, 44", Accent: "#CBD5E0"},
	Blue:     {Background: "#0E1B3D", Text: "#E6F3FF", Card: "44, 82, 130", Accent: "#90CDF4"},
	Orange:   {Background: "#3C1A00", Text: "#FFE8D6", Card: "124, 45, 18", Accent: "#F6AD55"},
	Graffiti: {Background: "linear-gradient(135deg, #FF0066, #00FFCC, #FFCC00, #FF0066)", Text: "#000000", Card: "255, 255, 255", Accent: "#FFFFFF", Animated: true},
}

func Parse(s string) (Name, error) {
	if s == "" {
		return Default, nil
	}
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palettes[n]; !ok {
		return "", fmt.Errorf("invalid theme %q (want one of %v)", s, Names)
	}
	return n, nil
}

// Lookup returns the palette for n, falling back to the default theme.
func Lookup(n Name) Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[Default]
}
