// Package hocr implements parsing and generation of hOCR, the HTML microformat
// tesseract uses to report recognized words with their positions.
//
// The object model follows the hOCR hierarchy:
// Document → Pages → Areas → Paragraphs → Lines → Words, each with a bounding
// box and the remaining title properties kept as metadata.
//
// Main Functions:
//
// - ParseHOCR: parses hOCR HTML (UTF-8 or ISO-8859-1) into the object model
// - Words: flattens a document into its words in reading order
// - FromWords: builds a single page document from positioned words
// - GenerateHOCRDocument: renders the object model back to hOCR HTML
package hocr
