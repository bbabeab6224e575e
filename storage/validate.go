package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const MaxImageSize = 2 << 20

var (
	ErrImageType = errors.New("image must be a png, jpg or jpeg file")
	ErrImageSize = errors.New("image may not be greater than 2048 kilobytes")
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ValidateImage checks both the extension and the sniffed content type.
func ValidateImage(file *multipart.FileHeader) error {
	want, ok := imageTypes[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		return ErrImageType
	}
	if file.Size > MaxImageSize {
		return ErrImageSize
	}

	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	got, err := sniff(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if got != want {
		return ErrImageType
	}
	return nil
}

// sniff detects the content type from the first 512 bytes, which is all
// http.DetectContentType looks at. Shorter files are sniffed as they are.
func sniff(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
