package storage

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/disintegration/imaging"
)

// Pipeline normalises images for the remote backends: it limits the image to
// MaxWidth x MaxHeight (never upscaling) and re-encodes it as JPEG.
type Pipeline struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

const (
	pipelineExt         = ".jpg"
	pipelineContentType = "image/jpeg"
)

func (p Pipeline) Apply(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	b := img.Bounds()
	if p.MaxWidth > 0 && p.MaxHeight > 0 && (b.Dx() > p.MaxWidth || b.Dy() > p.MaxHeight) {
		img = imaging.Fit(img, p.MaxWidth, p.MaxHeight, imaging.Lanczos)
	}
	q := p.Quality
	if q <= 0 || q > 100 {
		q = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// process checks and transforms an upload.
func (p Pipeline) process(file *multipart.FileHeader) ([]byte, error) {
	if _, err := CheckImage(file); err != nil {
		return nil, err
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return p.Apply(src)
}
