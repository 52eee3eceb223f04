package balanceerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found for this leave type and year",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance for this leave type",
		http.StatusBadRequest,
	)
	ErrBalanceAlreadySeeded = apperror.New(
		apperror.CodeConflict,
		"leave balances already seeded for this employee and year",
		http.StatusConflict,
	)
	ErrEmployeeProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee profile not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDebitAmount = apperror.New(
		apperror.CodeInvalidInput,
		"debit amount must be positive",
		http.StatusBadRequest,
	)
)
