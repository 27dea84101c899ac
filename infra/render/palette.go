package render

import (
	"strconv"
	"strings"
)

// yearPalette colours the year header cells. A year takes the entry at its
// position in the sorted year list, wrapping around.
var yearPalette = []string{
	"4472C4", "ED7D31", "A5A5A5", "FFC000", "5B9BD5", "70AD47",
	"264478", "9E480E", "636363", "997300", "255E91", "43682B",
}

// YearColor returns the fill colour for the year at index i.
func YearColor(i int) string {
	if i < 0 {
		i = -i
	}
	return yearPalette[i%len(yearPalette)]
}

// IsLight reports whether text on a background of hex colour should be
// black, using luminance 0.299R + 0.587G + 0.114B above one half.
func IsLight(hex string) bool {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return true
	}
	var rgb [3]float64
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return true
		}
		rgb[i] = float64(v)
	}
	return (0.299*rgb[0]+0.587*rgb[1]+0.114*rgb[2])/255 > 0.5
}

// FontColor picks black or white text for the given background.
func FontColor(background string) string {
	if IsLight(background) {
		return "000000"
	}
	return "FFFFFF"
}
