package extractor

import (
	"strings"
)

// Mode selects the layout shape
type Mode string

const (
	// ModeFlat emits positioned text elements
	ModeFlat Mode = "flat"
	// ModePage emits a page-builder document
	ModePage Mode = "page"
)

// ParseMode accepts "flat"/"elements" and "page"/"elementor"; empty means flat
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat", "elements":
		return ModeFlat, nil
	case "page", "elementor":
		return ModePage, nil
	}
	return "", NewBadRequestError("unknown mode %q (expected flat or page)", s)
}

func (m Mode) String() string {
	return string(m)
}
