// Package qr renders QR codes for invoice payment links.
package qr

import (
	"encoding/base64"
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when there is nothing to encode.
	ErrEmptyContent = errors.New("qr: empty content")

	// ErrGenerateFailed wraps encoder errors.
	ErrGenerateFailed = errors.New("qr: failed to generate code")
)

// defaultSize is the pixel size used when the caller passes zero.
const defaultSize = 256

// PNG renders content as a PNG QR code of the given pixel size.
func PNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerateFailed, err)
	}
	return png, nil
}

// DataURI renders content as a data: URI suitable for inlining in an <img>
// tag on the payment page.
func DataURI(content string, size int) (string, error) {
	png, err := PNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
