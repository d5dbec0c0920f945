// Package detector decides when a static fetch should be promoted to the
// headless render fallback.
package detector

import (
	"bytes"
	"strings"
)

// Heuristic flags bodies whose usable text falls below a threshold, plus
// a handful of rule-based signals for script-rendered pages.
type Heuristic struct {
	MinTextBytes int
}

// NewHeuristic creates a detector. A zero threshold gets a default.
func NewHeuristic(minTextBytes int) *Heuristic {
	if minTextBytes == 0 {
		minTextBytes = 2048
	}
	return &Heuristic{MinTextBytes: minTextBytes}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// NeedsRender reports whether the body looks too empty to extract from.
func (h *Heuristic) NeedsRender(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if len(body) < h.MinTextBytes && scriptDensityHigh(body) {
		return true
	}
	if len(body) < h.MinTextBytes {
		for _, marker := range spaMarkers {
			if bytes.Contains(body, marker) {
				return true
			}
		}
	}
	return false
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			// Treat the rest of the document as part of the malformed script.
			scriptCoverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		relativeEnd := strings.Index(lower[contentStart:], closeTag)
		var nextSearch int
		if relativeEnd == -1 {
			// Script tag never closes; count the rest.
			nextSearch = total
		} else {
			nextSearch = contentStart + relativeEnd + len(closeTag)
		}

		scriptCoverage += nextSearch - start
		searchPos = nextSearch
	}

	if scriptCoverage == 0 {
		return false
	}
	return scriptCoverage*100/total >= 25
}
