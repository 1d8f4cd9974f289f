package handler

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
)

const notFoundMessage = "Page not found"

// NotFound responds 404 in the format asked for by the request.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, notFoundMessage, "The requested resource could not be found.")
	})
}

type xmlMessage struct {
	XMLName xml.Name `xml:"root"`
	Message string   `xml:"message"`
}

// writeMessage writes title and body in the negotiated format.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, title, body string) {
	switch Negotiate(r.Header.Get("Accept")) {
	case FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": body})
	case FormatXML:
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		out, _ := xml.Marshal(xmlMessage{Message: body})
		_, _ = w.Write(append([]byte(xml.Header), out...))
	case FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w,
			"<!DOCTYPE html>\n<html>\n<head><title>%s</title></head>\n<body><h1>%s</h1><p>%s</p></body>\n</html>\n",
			html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
	}
}
