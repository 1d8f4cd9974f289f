// Package handler holds the fallback HTTP handlers of an application.
package handler

import (
	"mime"
	"strconv"
	"strings"
)

// Response formats picked from the Accept header
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatText = "text"
)

var mediaFormats = map[string]string{
	"text/html":             FormatHTML,
	"application/xhtml+xml": FormatHTML,
	"application/json":      FormatJSON,
	"application/xml":       FormatXML,
	"text/xml":              FormatXML,
	"text/plain":            FormatText,
}

// Negotiate returns the format best matching an Accept header. Ties keep the
// header order. Wildcards and an empty header give html.
func Negotiate(accept string) string {
	best, bestQ := FormatHTML, -1.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		format, ok := mediaFormats[mediaType]
		if !ok {
			if mediaType != "*/*" && mediaType != "text/*" {
				continue
			}
			format = FormatHTML
		}
		if q > bestQ {
			best, bestQ = format, q
		}
	}
	if bestQ <= 0 {
		return FormatHTML
	}
	return best
}
