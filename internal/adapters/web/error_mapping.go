package web

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/colink-employee-service/internal/core/directory"
	"github.com/ogurasousui/colink-employee-service/internal/core/employee"
	"github.com/ogurasousui/colink-employee-service/internal/core/member"
)

// writeDomainError はドメインエラーを HTTP ステータスへ写像して書き込みます。
// どの条件にも該当しないエラー(インフラ起因など)は 500 になります。
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, member.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", `Basic realm="colink"`)
		writeError(w, r, "invalid authentication credentials", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, member.ErrNoLinkedEmployee):
		writeError(w, r, "no employee is associated with this account", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidMobile),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPassword),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, directory.ErrInvalidName),
		errors.Is(err, directory.ErrInvalidLevel):
		writeError(w, r, err.Error(), "INVALID_ARGUMENT", http.StatusBadRequest)
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrStatusNotFound),
		errors.Is(err, member.ErrMemberNotFound),
		errors.Is(err, directory.ErrDepartmentNotFound),
		errors.Is(err, directory.ErrRoleNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, employee.ErrEmailAlreadyExists),
		errors.Is(err, employee.ErrMobileAlreadyExists),
		errors.Is(err, employee.ErrEmpNoAlreadyExists),
		errors.Is(err, employee.ErrStatusConflict),
		errors.Is(err, member.ErrLoginIDAlreadyExists),
		errors.Is(err, directory.ErrDepartmentAlreadyExists),
		errors.Is(err, directory.ErrRoleAlreadyExists):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
