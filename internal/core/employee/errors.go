package employee

import "errors"

var (
	ErrInvalidID           = errors.New("employee: invalid id")
	ErrInvalidName         = errors.New("employee: invalid name")
	ErrInvalidEmail        = errors.New("employee: invalid email")
	ErrInvalidMobile       = errors.New("employee: invalid mobile")
	ErrInvalidStatus       = errors.New("employee: invalid status")
	ErrInvalidPassword     = errors.New("employee: invalid password")
	ErrInvalidPageSize     = errors.New("employee: invalid page size")
	ErrInvalidPageToken    = errors.New("employee: invalid page token")
	ErrEmployeeNotFound    = errors.New("employee: not found")
	ErrStatusNotFound      = errors.New("employee: status not found")
	ErrEmailAlreadyExists  = errors.New("employee: email already exists")
	ErrMobileAlreadyExists = errors.New("employee: mobile already exists")
	ErrEmpNoAlreadyExists  = errors.New("employee: employee number already exists")
	// ErrStatusConflict は現在状態の同時 upsert が一意制約に衝突した場合に返却されます。
	// 呼び出し側は更新としてリトライできます。
	ErrStatusConflict = errors.New("employee: concurrent status update conflict")
)
