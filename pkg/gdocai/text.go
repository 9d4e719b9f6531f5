package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// tokenText returns the token text without the break character Document AI
// appends to the anchor of tokens followed by a space or newline
func tokenText(token *documentaipb.Document_Page_Token, fullText string) string {
	txt := textFromLayout(token.GetLayout(), fullText)
	if token.GetDetectedBreak().GetType() == documentaipb.Document_Page_Token_DetectedBreak_TYPE_UNSPECIFIED {
		return txt
	}
	runes := []rune(txt)
	if n := len(runes); n > 0 {
		switch runes[n-1] {
		case ' ', '\n', '\r', '\t':
			return string(runes[:n-1])
		}
	}
	return txt
}
