package util

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidImage = errors.New("image must be a base64 encoded data URI")

// MaxImageSize caps decoded recipe images.
const MaxImageSize = 5 << 20

// DecodedImage is an image payload sent inline as a data URI.
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI decodes "data:image/<type>;base64,<payload>". The declared
// type is not trusted; the content type is sniffed from the bytes.
func DecodeDataURI(uri string) (*DecodedImage, error) {
	header, payload, found := strings.Cut(uri, ",")
	if !found || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return nil, ErrInvalidImage
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrInvalidImage
	}

	return &DecodedImage{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}
