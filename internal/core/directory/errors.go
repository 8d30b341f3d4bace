package directory

import "errors"

var (
	ErrInvalidName             = errors.New("directory: invalid name")
	ErrInvalidLevel            = errors.New("directory: invalid level")
	ErrDepartmentNotFound      = errors.New("directory: department not found")
	ErrRoleNotFound            = errors.New("directory: role not found")
	ErrDepartmentAlreadyExists = errors.New("directory: department already exists")
	ErrRoleAlreadyExists       = errors.New("directory: role already exists")
)
