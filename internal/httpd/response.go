// Package httpd serves static pages over raw TCP, handing every accepted
// connection to a worker pool as a single job
package httpd

import (
	"bytes"
	"fmt"
)

const (
	// Protocol is the protocol line written on every response
	Protocol = "HTTP/1.1"

	// StatusOK is the status for the index page
	StatusOK = "200 OK"

	// StatusNotFound is the status for every other request
	StatusNotFound = "404 NOT FOUND"
)

// indexRequestPrefix is the only request line prefix served with the index page
var indexRequestPrefix = []byte("GET / ")

// Response is a minimal HTTP response: a status line followed by the body
type Response struct {
	Protocol string
	Status   string
	Body     string
}

// Bytes formats the response as "<protocol> <status>\r\n\r\n<body>"
func (r Response) Bytes() []byte {
	return []byte(fmt.Sprintf("%s %s\r\n\r\n%s", r.Protocol, r.Status, r.Body))
}

// route picks the status and page for a raw request
func route(request []byte) (status, page string) {
	if bytes.HasPrefix(request, indexRequestPrefix) {
		return StatusOK, "index.html"
	}
	return StatusNotFound, "404.html"
}
