package repository

import (
	"database/sql"

	"github.com/hitoshi/schoolrecords/internal/datefmt"
	"github.com/hitoshi/schoolrecords/internal/model"
)

// StudentDescriptor は students テーブルの対応表。
var StudentDescriptor = Descriptor[model.Student]{
	Entity:   "student",
	Table:    "students",
	IDColumn: "studentid",
	Columns:  []string{"studentfname", "studentlname", "studentnumber", "enroldate"},
	Scan: func(row Scanner) (model.Student, error) {
		var s model.Student
		var enrol sql.NullTime
		if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.StudentNumber, &enrol); err != nil {
			return model.Student{}, err
		}
		s.EnrolDate = formatNullDate(enrol, datefmt.StudentLayout)
		return s, nil
	},
	Values: func(s model.Student) ([]any, error) {
		enrol, err := parseNullDate("enrolDate", s.EnrolDate)
		if err != nil {
			return nil, err
		}
		return []any{s.FirstName, s.LastName, s.StudentNumber, enrol}, nil
	},
}

// TeacherDescriptor は teachers テーブルの対応表。担当コースは含まない。
var TeacherDescriptor = Descriptor[model.Teacher]{
	Entity:   "teacher",
	Table:    "teachers",
	IDColumn: "teacherid",
	Columns:  []string{"teacherfname", "teacherlname", "employeenumber", "hiredate", "salary"},
	Scan: func(row Scanner) (model.Teacher, error) {
		var t model.Teacher
		var hired sql.NullTime
		if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.EmployeeNumber, &hired, &t.Salary); err != nil {
			return model.Teacher{}, err
		}
		t.HireDate = formatNullDate(hired, datefmt.TeacherLayout)
		return t, nil
	},
	Values: func(t model.Teacher) ([]any, error) {
		hired, err := parseNullDate("hireDate", t.HireDate)
		if err != nil {
			return nil, err
		}
		return []any{t.FirstName, t.LastName, t.EmployeeNumber, hired, t.Salary}, nil
	},
}

// CourseDescriptor は courses テーブルの対応表。
var CourseDescriptor = Descriptor[model.Course]{
	Entity:   "course",
	Table:    "courses",
	IDColumn: "courseid",
	Columns:  []string{"coursecode", "teacherid", "startdate", "finishdate", "coursename"},
	Scan: func(row Scanner) (model.Course, error) {
		var c model.Course
		var start, finish sql.NullTime
		if err := row.Scan(&c.ID, &c.CourseCode, &c.TeacherID, &start, &finish, &c.CourseName); err != nil {
			return model.Course{}, err
		}
		c.StartDate = formatNullDate(start, datefmt.CourseLayout)
		c.FinishDate = formatNullDate(finish, datefmt.CourseLayout)
		return c, nil
	},
	Values: func(c model.Course) ([]any, error) {
		start, err := parseNullDate("startDate", c.StartDate)
		if err != nil {
			return nil, err
		}
		finish, err := parseNullDate("finishDate", c.FinishDate)
		if err != nil {
			return nil, err
		}
		return []any{c.CourseCode, c.TeacherID, start, finish, c.CourseName}, nil
	},
}

// parseNullDate は日付文字列をsql.NullTimeに変換する。空文字列はNULLになる。
func parseNullDate(field, s string) (sql.NullTime, error) {
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := datefmt.Parse(s)
	if err != nil {
		return sql.NullTime{}, model.NewInvalidDateError(field, s)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// formatNullDate はsql.NullTimeをレイアウトで整形する。NULLは空文字列になる。
func formatNullDate(nt sql.NullTime, layout string) string {
	if !nt.Valid {
		return ""
	}
	return datefmt.Format(nt.Time, layout)
}
