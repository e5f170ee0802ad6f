package upload

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

var ErrUnsupportedType = errors.New("only jpeg, png, gif and webp images are allowed")

type ImageType struct {
	Format      string
	Ext         string
	ContentType string
}

var allowed = map[string]ImageType{
	"jpeg": {Format: "jpeg", Ext: ".jpg", ContentType: "image/jpeg"},
	"png":  {Format: "png", Ext: ".png", ContentType: "image/png"},
	"gif":  {Format: "gif", Ext: ".gif", ContentType: "image/gif"},
	"webp": {Format: "webp", Ext: ".webp", ContentType: "image/webp"},
}

// DetectImageType sniffs the image header from r. The client's filename and
// Content-Type are never trusted.
func DetectImageType(r io.Reader) (ImageType, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageType{}, ErrUnsupportedType
	}
	t, ok := allowed[format]
	if !ok {
		return ImageType{}, ErrUnsupportedType
	}
	return t, nil
}
