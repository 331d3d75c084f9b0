// Package storage keeps uploaded images outside the database.
package storage

import (
	"context" // ImageStore signature
	"fmt"     // Error wrapping
	"regexp"  // Delivery URL parsing
	"strings" // Extension checks

	"github.com/gabriel-vasile/mimetype" // Content sniffing

	"social_network/internal/domain" // Error classes
)

// Upload is an image received from a client
type Upload struct {
	Filename string
	Data     []byte
}

// Image is a stored image: a public URL and the provider reference needed to delete it
type Image struct {
	URL string
	Ref string
}

// ImageStore uploads and deletes images
type ImageStore interface {
	Upload(ctx context.Context, u Upload) (Image, error)
	Delete(ctx context.Context, ref string) error
}

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Check sniffs the payload and returns the file extension for an accepted image.
func Check(u Upload, maxBytes int64) (string, error) {
	if len(u.Data) == 0 {
		return "", domain.Invalid("image is empty")
	}
	if maxBytes > 0 && int64(len(u.Data)) > maxBytes {
		return "", domain.Invalid("image exceeds %d MB", maxBytes>>20)
	}
	mt := mimetype.Detect(u.Data)
	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return mt.Extension(), nil
		}
	}
	return "", domain.Invalid("unsupported image type %s (jpg, jpeg, png, gif)", mt.String())
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v1712/posts/abc.jpg -> posts/abc.
// It returns "" when the URL is not a Cloudinary upload URL.
func PublicIDFromURL(url string) string {
	parts := strings.Split(url, "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(parts) {
		return ""
	}
	rest := parts[idx+1:]
	if versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	id := strings.Join(rest, "/")
	if dot := strings.LastIndex(id, "."); dot > strings.LastIndex(id, "/") {
		id = id[:dot]
	}
	return id
}

// Ref returns the stored reference, falling back to one derived from the URL.
func Ref(ref, url string) string {
	if ref != "" {
		return ref
	}
	return PublicIDFromURL(url)
}

func wrap(op string, err error) error {
	return fmt.Errorf("image %s: %w", op, err)
}
