package core

import (
	"encoding/json"
	"net/http"
)

const MimeTypeJSON = "application/json"

// HeadersJson are the default headers for API JSON responses.
var HeadersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// mitigate MIME-type sniffing
	"X-Content-Type-Options": "nosniff",

	// auth responses must never be cached
	"Cache-Control": "no-store, no-cache, must-revalidate",

	"X-Frame-Options": "DENY",

	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// HeadersSse are the headers for the chat event stream.
var HeadersSse = map[string]string{
	"Content-Type":           "text/event-stream",
	"Cache-Control":          "no-cache",
	"Connection":             "keep-alive",
	"X-Content-Type-Options": "nosniff",
}

func setHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses have them.
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data
type JsonWithData struct {
	JsonBasic
	Data interface{} `json:"data,omitempty"`
}

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonWithData writes a structured JSON response with the provided data
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}
