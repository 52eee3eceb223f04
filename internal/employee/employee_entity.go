package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_profiles_user"`
	EmployeeCode string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_employee_profiles_code"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100)"`
	WorkEmail    string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_profiles_email"`
	Phone        string    `gorm:"type:varchar(30)"`
	Department   string    `gorm:"type:varchar(100)"`
	Designation  string    `gorm:"type:varchar(100)"`
	JoiningDate  time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (EmployeeProfile) TableName() string {
	return "employee_profiles"
}

func (e EmployeeProfile) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
