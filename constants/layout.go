package constants

import (
	"strings"
)

type Layout string

const (
	LayoutMinimalist  Layout = "minimalist"
	LayoutLeftHeader  Layout = "leftHeader"
	LayoutCentered    Layout = "centered"
	LayoutCompactGrid Layout = "compactGrid"
)

var allLayouts = []Layout{
	LayoutMinimalist,
	LayoutLeftHeader,
	LayoutCentered,
	LayoutCompactGrid,
}

func LayoutsAsStringSlice() []string {
	result := make([]string, len(allLayouts))
	for i, l := range allLayouts {
		result[i] = string(l)
	}
	return result
}

// DetectLayout picks the layout an utterance asks for. Only utterances that
// mention "layout" or "template" are considered.
func DetectLayout(utterance string) (Layout, bool) {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if !strings.Contains(normalized, "layout") && !strings.Contains(normalized, "template") {
		return "", false
	}

	switch {
	case strings.Contains(normalized, "minimalist"):
		return LayoutMinimalist, true
	case strings.Contains(normalized, "left"), strings.Contains(normalized, "header"):
		return LayoutLeftHeader, true
	case strings.Contains(normalized, "center"):
		return LayoutCentered, true
	case strings.Contains(normalized, "compact"), strings.Contains(normalized, "grid"):
		return LayoutCompactGrid, true
	}
	return "", false
}
