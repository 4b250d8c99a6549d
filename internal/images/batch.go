// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/logging"
)

// BatchError reports a rejected upload batch before any file reaches the
// image store.
type BatchError struct {
	Filename string
	Reason   string
}

func (e *BatchError) Error() string {
	if e.Filename == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
}

// BatchUploader validates and uploads multipart image batches. Result order
// matches input order, which callers rely on for image slot assignment.
type BatchUploader struct {
	store       Store
	maxFiles    int
	maxFileSize int64
}

// NewBatchUploader bounds batches by the configured file count and size.
func NewBatchUploader(store Store, cfg config.UploadConfig) *BatchUploader {
	return &BatchUploader{
		store:       store,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
	}
}

// UploadAll uploads every file concurrently. All-or-nothing: if any upload
// fails, images already stored for this batch are destroyed best-effort and
// the first error is returned.
func (b *BatchUploader) UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]UploadedImage, error) {
	if len(files) == 0 {
		return nil, &BatchError{Reason: "no files in upload"}
	}
	if len(files) > b.maxFiles {
		return nil, &BatchError{Reason: fmt.Sprintf("too many files: %d exceeds limit of %d", len(files), b.maxFiles)}
	}
	for _, fh := range files {
		if fh.Size > b.maxFileSize {
			return nil, &BatchError{Filename: fh.Filename, Reason: fmt.Sprintf("exceeds size limit of %d bytes", b.maxFileSize)}
		}
	}

	results := make([]UploadedImage, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, fh := range files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			results[i], errs[i] = b.uploadOne(ctx, fh)
		}(i, fh)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			b.cleanup(results)
			return nil, err
		}
	}
	return results, nil
}

func (b *BatchUploader) uploadOne(ctx context.Context, fh *multipart.FileHeader) (UploadedImage, error) {
	f, err := fh.Open()
	if err != nil {
		return UploadedImage{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// Sniff the real content type rather than trusting the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return UploadedImage{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return UploadedImage{}, &BatchError{Filename: fh.Filename, Reason: "not an image"}
	}

	return b.store.Upload(ctx, io.MultiReader(bytes.NewReader(head), f))
}

// cleanup destroys any images that made it into the store before the batch
// failed. Best-effort with a fresh context so cleanup survives request
// cancellation.
func (b *BatchUploader) cleanup(results []UploadedImage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, img := range results {
		if img.PublicID == "" {
			continue
		}
		if err := b.store.Destroy(ctx, img.PublicID); err != nil {
			logging.Warn().Err(err).Str("public_id", img.PublicID).Msg("failed to clean up orphaned image")
		}
	}
}
