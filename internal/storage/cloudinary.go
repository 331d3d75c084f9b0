package storage

import (
	"bytes"   // Upload body
	"context" // Provider calls
	"errors"  // Error construction

	"github.com/cloudinary/cloudinary-go/v2"              // Cloudinary SDK
	"github.com/cloudinary/cloudinary-go/v2/api/uploader" // Upload and destroy params
	"github.com/google/uuid"                              // Public ids
)

// CloudinaryStore keeps images on Cloudinary
type CloudinaryStore struct {
	cld      *cloudinary.Cloudinary
	folder   string
	maxBytes int64
}

// NewCloudinaryStore builds a store from account credentials
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string, maxBytes int64) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, wrap("configure cloudinary", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, folder: folder, maxBytes: maxBytes}, nil
}

// Upload checks the image and sends it to Cloudinary under a fresh public id
func (s *CloudinaryStore) Upload(ctx context.Context, u Upload) (Image, error) {
	if _, err := Check(u, s.maxBytes); err != nil {
		return Image{}, err
	}
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(u.Data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return Image{}, wrap("upload", err)
	}
	if res.Error.Message != "" {
		return Image{}, wrap("upload", errors.New(res.Error.Message))
	}
	return Image{URL: res.SecureURL, Ref: res.PublicID}, nil
}

// Delete destroys the asset with public id ref
func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: ref})
	if err != nil {
		return wrap("delete", err)
	}
	if res.Error.Message != "" {
		return wrap("delete", errors.New(res.Error.Message))
	}
	return nil
}
