package paint

import (
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"lightgray":   {211, 211, 211, 255},
	"lightgrey":   {211, 211, 211, 255},
	"lightblue":   {173, 216, 230, 255},
	"darkgray":    {169, 169, 169, 255},
	"darkgrey":    {169, 169, 169, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor translates a CSS color string (named, #rgb/#rrggbb[aa],
// rgb(...)/rgba(...)) into a color.RGBA, ported from
// rendering/color_utils.py's parse_color.
func ParseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 || len(hex) == 8 {
			r := hexByte(hex[0:2])
			g := hexByte(hex[2:4])
			b := hexByte(hex[4:6])
			a := byte(255)
			if len(hex) == 8 {
				a = hexByte(hex[6:8])
			}
			return color.RGBA{r, g, b, a}
		}
	}
	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[5:len(s)-1], ",")
		if len(parts) == 4 {
			r := atoiDefault(parts[0])
			g := atoiDefault(parts[1])
			b := atoiDefault(parts[2])
			af, _ := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			return color.RGBA{byte(r), byte(g), byte(b), byte(af * 255)}
		}
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) == 3 {
			return color.RGBA{byte(atoiDefault(parts[0])), byte(atoiDefault(parts[1])), byte(atoiDefault(parts[2])), 255}
		}
	}
	return color.RGBA{0, 0, 0, 255}
}

func hexByte(s string) byte {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return byte(v)
}

func atoiDefault(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
