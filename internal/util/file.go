package util

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DetectBadgeImageType 按文件头识别徽章图片的 MIME 类型。
// svg 是文本格式，只在扩展名为 .svg 时放行文本类型。
func DetectBadgeImageType(reader io.Reader, ext string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	if strings.HasPrefix(mimeType, MimeImage) {
		return mimeType, nil
	}
	if strings.ToLower(ext) == ".svg" &&
		(strings.HasPrefix(mimeType, "text/xml") || strings.HasPrefix(mimeType, "text/plain")) {
		return "image/svg+xml", nil
	}

	return mimeType, fmt.Errorf("%w: content type %s", ErrInvalidBadgeImage, mimeType)
}
