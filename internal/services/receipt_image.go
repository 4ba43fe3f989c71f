package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/sjperalta/fintera-coop/internal/storage"
)

// maxReceiptEdge bounds the long side of a stored receipt photo
const maxReceiptEdge = 2000

// prepareReceipt checks that image receipts decode and shrinks oversized
// photos to a JPEG no larger than maxReceiptEdge on either side. PDFs and
// small images are stored as uploaded.
func prepareReceipt(file io.Reader, filename, contentType string) (io.Reader, string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
	default:
		return file, filename, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxFileSize()+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read receipt: %w", err)
	}
	if int64(len(data)) > storage.MaxFileSize() {
		return nil, "", storage.ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", validationError("receipt is not a readable image")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxReceiptEdge && bounds.Dy() <= maxReceiptEdge {
		return bytes.NewReader(data), filename, nil
	}

	resized := imaging.Fit(img, maxReceiptEdge, maxReceiptEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode receipt: %w", err)
	}
	return &buf, strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg", nil
}
