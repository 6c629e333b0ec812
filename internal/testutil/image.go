package testutil

import (
	"time"

	"flipbutton/internal/button"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// PNG returns bytes that sniff as image/png, distinct per seed.
func PNG(seed string) []byte {
	return append(append([]byte{}, pngSignature...), seed...)
}

// NewImageFile returns a picked PNG named name with a fixed mtime.
func NewImageFile(name string) *button.File {
	data := PNG(name)
	return &button.File{
		Name:         name,
		Type:         "image/png",
		Size:         int64(len(data)),
		LastModified: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Data:         data,
	}
}
