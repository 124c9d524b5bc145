package model

// Course はコースレコードを表す。
// TeacherID の参照整合性はアプリケーション層でもストアでも検証しない。
type Course struct {
	ID         int64  `json:"courseId"`
	CourseCode string `json:"courseCode" validate:"required"`
	TeacherID  int64  `json:"teacherId" validate:"required"`
	StartDate  string `json:"startDate" validate:"omitempty,date,not_future"`
	FinishDate string `json:"finishDate" validate:"omitempty,date,not_future"`
	CourseName string `json:"courseName" validate:"required"`
}
