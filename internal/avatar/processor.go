// Package avatar validates and normalizes profile images. Every accepted
// upload is cropped/resized to a fixed square and re-encoded as PNG, so the
// store only ever holds one format at one size.
package avatar

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/fatihgnc/taskman-api/internal/domain"
)

const (
	// MaxUploadBytes is the size ceiling for avatar uploads.
	MaxUploadBytes = 1 << 20 // 1 MB

	// Dimension is the side length of the stored square image.
	Dimension = 250
)

// allowedExtensions are the accepted upload file extensions.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Processor normalizes avatar images.
type Processor struct{}

// NewProcessor creates an avatar Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Normalize validates the upload (extension, size, decodability) and returns
// the image cropped to a Dimension×Dimension square, PNG encoded. All
// rejections wrap domain.ErrValidation so they surface as 400s, not 500s.
func (p *Processor) Normalize(data []byte, filename string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, domain.NewValidationError("avatar", "must be a jpg, jpeg or png file", nil)
	}

	if len(data) == 0 {
		return nil, domain.NewValidationError("avatar", "is empty", nil)
	}
	if len(data) > MaxUploadBytes {
		return nil, domain.NewValidationError("avatar", "exceeds the 1 MB size limit", nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewValidationError("avatar", "is not a decodable image", nil)
	}

	// Fill crops to the center and resizes, preserving aspect ratio.
	normalized := imaging.Fill(img, Dimension, Dimension, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, normalized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
