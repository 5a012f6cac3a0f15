package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// readImageFile reads the optional "image" part of a multipart submission.
// A missing file is fine (text-only request); anything that is not an image
// is rejected before it can reach the generation client.
func readImageFile(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image upload")
	}
	if len(data) == 0 {
		return nil, "", nil
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("attached file is not an image (%s)", mimeType)
	}
	return data, mimeType, nil
}

// extensionFor maps a result MIME type to a download file extension.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
