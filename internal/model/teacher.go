package model

// Teacher は教員レコードを表す。
type Teacher struct {
	ID             int64  `json:"teacherId"`
	FirstName      string `json:"teacherFName" validate:"required"`
	LastName       string `json:"teacherLName" validate:"required"`
	EmployeeNumber string `json:"employeeNumber" validate:"omitempty,employee_number"`
	// HireDate は読み出し時 "yyyy/MM/dd HH:mm:ss" 形式。
	HireDate string  `json:"hireDate" validate:"omitempty,date,not_future"`
	Salary   float64 `json:"salary" validate:"gt=0"`

	// Courses は読み出し時に courses テーブルから合成される担当コース。
	// 永続化されない。
	Courses []Course `json:"coursesByTeacher"`
}
