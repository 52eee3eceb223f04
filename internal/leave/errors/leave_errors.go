package leaveerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee profile not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start date must not be after end date",
		http.StatusBadRequest,
	)
	ErrInvalidTotalDays = apperror.New(
		apperror.CodeInvalidInput,
		"total days must be positive",
		http.StatusBadRequest,
	)
	ErrLeaveNotPending = apperror.New(
		apperror.CodeInvalidState,
		"leave request is no longer pending",
		http.StatusBadRequest,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requester may cancel this leave request",
		http.StatusForbidden,
	)
)
