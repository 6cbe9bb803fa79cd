// Package wkt holds the well-known message types shared by every generated
// service client, together with their canonical JSON encodings.
package wkt
