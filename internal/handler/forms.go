package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/security"
)

// recordForm はエンティティと画面項目の対応を定義する。
type recordForm[T any] struct {
	name   string
	fields func(T) []field
	parse  func(r *http.Request) T
	clean  func(security.InputSanitizerService, T) T
	id     func(T) int64
	label  func(T) string
	detail func(T) string
	// courses は詳細画面に担当コースを表示するエンティティのみ設定する。
	courses func(T) []model.Course
}

var studentForm = recordForm[model.Student]{
	name: "Student",
	fields: func(s model.Student) []field {
		return []field{
			{Label: "First Name", Name: "StudentFName", Value: s.FirstName, Type: "text"},
			{Label: "Last Name", Name: "StudentLName", Value: s.LastName, Type: "text"},
			{Label: "Student Number", Name: "StudentNumber", Value: s.StudentNumber, Type: "text"},
			{Label: "Enrol Date", Name: "EnrolDate", Value: s.EnrolDate, Type: "text"},
		}
	},
	parse: func(r *http.Request) model.Student {
		return model.Student{
			FirstName:     r.PostFormValue("StudentFName"),
			LastName:      r.PostFormValue("StudentLName"),
			StudentNumber: r.PostFormValue("StudentNumber"),
			EnrolDate:     r.PostFormValue("EnrolDate"),
		}
	},
	clean:  security.CleanStudent,
	id:     func(s model.Student) int64 { return s.ID },
	label:  func(s model.Student) string { return s.FirstName + " " + s.LastName },
	detail: func(s model.Student) string { return s.StudentNumber },
}

var teacherForm = recordForm[model.Teacher]{
	name: "Teacher",
	fields: func(t model.Teacher) []field {
		return []field{
			{Label: "First Name", Name: "TeacherFName", Value: t.FirstName, Type: "text"},
			{Label: "Last Name", Name: "TeacherLName", Value: t.LastName, Type: "text"},
			{Label: "Employee Number", Name: "EmployeeNumber", Value: t.EmployeeNumber, Type: "text"},
			{Label: "Hire Date", Name: "HireDate", Value: t.HireDate, Type: "text"},
			{Label: "Salary", Name: "Salary", Value: strconv.FormatFloat(t.Salary, 'f', 2, 64), Type: "text"},
		}
	},
	parse: func(r *http.Request) model.Teacher {
		return model.Teacher{
			FirstName:      r.PostFormValue("TeacherFName"),
			LastName:       r.PostFormValue("TeacherLName"),
			EmployeeNumber: r.PostFormValue("EmployeeNumber"),
			HireDate:       r.PostFormValue("HireDate"),
			Salary:         parseFloatOrZero(r.PostFormValue("Salary")),
		}
	},
	clean:   security.CleanTeacher,
	id:      func(t model.Teacher) int64 { return t.ID },
	label:   func(t model.Teacher) string { return t.FirstName + " " + t.LastName },
	detail:  func(t model.Teacher) string { return t.HireDate },
	courses: func(t model.Teacher) []model.Course { return t.Courses },
}

var courseForm = recordForm[model.Course]{
	name: "Course",
	fields: func(c model.Course) []field {
		return []field{
			{Label: "Course Code", Name: "CourseCode", Value: c.CourseCode, Type: "text"},
			{Label: "Teacher Id", Name: "TeacherId", Value: strconv.FormatInt(c.TeacherID, 10), Type: "number"},
			{Label: "Start Date", Name: "StartDate", Value: c.StartDate, Type: "date"},
			{Label: "Finish Date", Name: "FinishDate", Value: c.FinishDate, Type: "date"},
			{Label: "Course Name", Name: "CourseName", Value: c.CourseName, Type: "text"},
		}
	},
	parse: func(r *http.Request) model.Course {
		return model.Course{
			CourseCode: r.PostFormValue("CourseCode"),
			TeacherID:  parseIntOrZero(r.PostFormValue("TeacherId")),
			StartDate:  r.PostFormValue("StartDate"),
			FinishDate: r.PostFormValue("FinishDate"),
			CourseName: r.PostFormValue("CourseName"),
		}
	},
	clean:  security.CleanCourse,
	id:     func(c model.Course) int64 { return c.ID },
	label:  func(c model.Course) string { return c.CourseCode + " " + c.CourseName },
	detail: func(c model.Course) string { return c.StartDate + " - " + c.FinishDate },
}

// parseFloatOrZero は数値として解釈できない入力を0として扱う。
func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseIntOrZero は整数として解釈できない入力を0として扱う。
func parseIntOrZero(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
