package util

import "errors"

var (
	ErrLevelNotFound      = errors.New("level not found")
	ErrInvalidCompletion  = errors.New("invalid quiz completion")
	ErrNoData             = errors.New("no statistics found for the selected period")
	ErrInvalidPeriodType  = errors.New("period type must be weekly or monthly")
	ErrInvalidDate        = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidWindow      = errors.New("end date must be after start date")
	ErrWindowTooLarge     = errors.New("date range cannot exceed 365 days")
	ErrFutureEndDate      = errors.New("end date cannot be in the future")
	ErrStorageUnavailable = errors.New("storage provider not configured")
	ErrInvalidBadgeImage  = errors.New("invalid badge image")
)

// IsValidationError 判断错误是否应作为 400 返回给调用方
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrLevelNotFound,
		ErrInvalidCompletion,
		ErrInvalidPeriodType,
		ErrInvalidDate,
		ErrInvalidWindow,
		ErrWindowTooLarge,
		ErrFutureEndDate,
		ErrInvalidBadgeImage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
