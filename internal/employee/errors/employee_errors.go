package employeeerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee profile not found",
		http.StatusNotFound,
	)
	ErrWorkEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"an employee with this work email already exists",
		http.StatusConflict,
	)
	ErrUserAlreadyOnboarded = apperror.New(
		apperror.CodeConflict,
		"this user already has an employee profile",
		http.StatusConflict,
	)
	ErrEmployeeCodeCollision = apperror.New(
		apperror.CodeConflict,
		"employee code collision",
		http.StatusConflict,
	)
	ErrInvalidJoiningDate = apperror.New(
		apperror.CodeInvalidInput,
		"joining_date must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
)
