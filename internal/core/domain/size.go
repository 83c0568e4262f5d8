package domain

import (
	"math"
	"strconv"
	"strings"
)

// PrintPPI is the resolution maps are rendered at.
const PrintPPI = 300

type SizeUnit string

const (
	UnitPx SizeUnit = "px"
	UnitCm SizeUnit = "cm"
	UnitIn SizeUnit = "in"
)

type PrintSize struct {
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Unit   SizeUnit `json:"unit"`
}

func pxToIn(px float64) float64 {
	return math.Round(px/PrintPPI*10) / 10
}

func pxToCm(px float64) float64 {
	return math.Round(px/PrintPPI*2.54*10) / 10
}

// CalculatePrintSize derives the height for a pixel width and a "W:H"
// aspect, optionally in landscape, and converts both sides to unit.
// A malformed aspect falls back to 1:1 and an unknown unit to px.
func CalculatePrintSize(widthPx float64, aspect string, unit SizeUnit, landscape bool) PrintSize {
	w, h := parseAspect(aspect)
	if landscape {
		w, h = h, w
	}
	width := widthPx
	height := widthPx * h / w

	switch unit {
	case UnitCm:
		return PrintSize{Width: math.Ceil(pxToCm(width)), Height: math.Ceil(pxToCm(height)), Unit: UnitCm}
	case UnitIn:
		return PrintSize{Width: math.Ceil(pxToIn(width)), Height: math.Ceil(pxToIn(height)), Unit: UnitIn}
	default:
		return PrintSize{Width: math.Round(width), Height: math.Round(height), Unit: UnitPx}
	}
}

func parseAspect(aspect string) (float64, float64) {
	parts := strings.Split(aspect, ":")
	if len(parts) != 2 {
		return 1, 1
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 1, 1
	}
	return w, h
}
