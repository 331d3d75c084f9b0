package api

import (
	"errors"   // Error classification
	"io"       // Reading uploads
	"net/http" // Multipart errors

	"github.com/gin-gonic/gin" // Gin web framework

	"social_network/internal/domain"  // Error classes
	"social_network/internal/service" // Post input
	"social_network/internal/storage" // Upload payloads
)

// readImage returns the optional image part of a multipart request
func readImage(c *gin.Context, field string, maxBytes int64) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil // No image attached
	}
	if err != nil {
		return nil, domain.Invalid("invalid multipart body")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, domain.Invalid("image exceeds %d MB", maxBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &storage.Upload{Filename: fh.Filename, Data: data}, nil
}

// postInput reads content and image from a multipart, form or JSON body
func postInput(c *gin.Context, maxBytes int64) (service.PostInput, error) {
	var in service.PostInput
	if c.ContentType() == gin.MIMEJSON {
		var body struct {
			Content *string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			return in, domain.Invalid("invalid request body")
		}
		in.Content = body.Content
		return in, nil
	}
	if v, ok := c.GetPostForm("content"); ok {
		in.Content = &v
	}
	img, err := readImage(c, "image", maxBytes)
	if err != nil {
		return in, err
	}
	in.Image = img
	return in, nil
}
