// Package model はドメインモデルを定義する。
package model

// Student は学生レコードを表す。
// IDはストアが採番し、作成後は変更されない。
type Student struct {
	ID            int64  `json:"studentId"`
	FirstName     string `json:"studentFName" validate:"required"`
	LastName      string `json:"studentLName" validate:"required"`
	StudentNumber string `json:"studentNumber" validate:"omitempty,student_number"`
	// EnrolDate は読み出し時 "yyyy/MM/dd" 形式。未設定の場合は空文字列。
	EnrolDate string `json:"enrolDate" validate:"omitempty,date,not_future"`
}
