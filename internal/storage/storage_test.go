package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_network/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestCheck(t *testing.T) {
	ext, err := Check(Upload{Data: pngBytes}, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	ext, err = Check(Upload{Data: []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")}, 0)
	require.NoError(t, err)
	assert.Equal(t, ".gif", ext)

	_, err = Check(Upload{Data: []byte("plain text, not an image")}, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = Check(Upload{}, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = Check(Upload{Data: pngBytes}, 4)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345/posts/abc.jpg": "posts/abc",
		"https://res.cloudinary.com/demo/image/upload/posts/abc.def.png":      "posts/abc.def",
		"https://res.cloudinary.com/demo/image/upload/avatar":                 "avatar",
		"/uploads/1234.png": "",
		"":                  "",
	}
	for url, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(url), url)
	}
	assert.Equal(t, "stored", Ref("stored", "https://res.cloudinary.com/demo/image/upload/x.png"))
	assert.Equal(t, "x", Ref("", "https://res.cloudinary.com/demo/image/upload/x.png"))
}

func TestLocalStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads", 1<<20)
	require.NoError(t, err)
	ctx := context.Background()

	img, err := store.Upload(ctx, Upload{Filename: "a.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+img.Ref, img.URL)
	assert.FileExists(t, filepath.Join(dir, img.Ref))

	require.NoError(t, store.Delete(ctx, img.Ref))
	_, err = os.Stat(filepath.Join(dir, img.Ref))
	assert.True(t, os.IsNotExist(err))

	// deleting twice or deleting nothing is fine
	assert.NoError(t, store.Delete(ctx, img.Ref))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestLocalStoreRejectsNonImages(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), Upload{Data: []byte("hello")})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
