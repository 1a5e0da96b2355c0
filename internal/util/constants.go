package util

// DateFormat 周期统计起止日期格式
const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage = "image/"
	// 徽章图片上限 2MB
	MaxBadgeImageSize = 2 << 20
)

var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}
