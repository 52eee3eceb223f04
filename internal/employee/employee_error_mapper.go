package employee

import (
	"errors"
	"strings"

	employeeerrors "go-hrms/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_employee_profiles_email":
				return employeeerrors.ErrWorkEmailAlreadyExists
			case "uq_employee_profiles_user":
				return employeeerrors.ErrUserAlreadyOnboarded
			case "uq_employee_profiles_code":
				return employeeerrors.ErrEmployeeCodeCollision
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		switch {
		case strings.Contains(errMsg, "uq_employee_profiles_email"):
			return employeeerrors.ErrWorkEmailAlreadyExists
		case strings.Contains(errMsg, "uq_employee_profiles_user"):
			return employeeerrors.ErrUserAlreadyOnboarded
		case strings.Contains(errMsg, "uq_employee_profiles_code"):
			return employeeerrors.ErrEmployeeCodeCollision
		}
	}

	return err
}
