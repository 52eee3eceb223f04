package employee

type OnboardEmployeeRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	WorkEmail   string `json:"work_email" binding:"required,email"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	JoiningDate string `json:"joining_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	WorkEmail   string `json:"work_email" binding:"required,email"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
}

type EmployeeResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	EmployeeCode string `json:"employee_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	FullName     string `json:"full_name"`
	WorkEmail    string `json:"work_email"`
	Phone        string `json:"phone,omitempty"`
	Department   string `json:"department,omitempty"`
	Designation  string `json:"designation,omitempty"`
	JoiningDate  string `json:"joining_date"`
}

// EmployeeOption is the trimmed shape used by dropdowns and pickers.
type EmployeeOption struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employee_code"`
	FullName     string `json:"full_name"`
}
