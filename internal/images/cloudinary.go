// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package images

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/cartatlas/cartatlas/internal/config"
)

const defaultFolder = "foodCartFinder"

// CloudinaryStore implements Store on the Cloudinary upload API.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds a store from explicit credentials. Credentials
// come from the config struct, never from ambient environment lookups.
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = defaultFolder
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload stores the image, normalized to an 800x600 jpg so clients get
// consistently sized assets regardless of what was submitted.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader) (UploadedImage, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.folder,
		Format:         "jpg",
		Transformation: "c_fill,w_800,h_600,q_auto",
	})
	if err != nil {
		return UploadedImage{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadedImage{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Destroy removes an uploaded asset by public id.
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
