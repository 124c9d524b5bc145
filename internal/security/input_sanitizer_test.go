package security

import (
	"testing"

	"github.com/hitoshi/schoolrecords/internal/model"
)

func TestClean_StripsMarkup(t *testing.T) {
	s := NewInputSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Web Development", "Web Development"},
		{"bold tag", "<b>Jane</b>", "Jane"},
		{"script removed entirely", "<script>alert(1)</script>Smith", "Smith"},
		{"event attribute", `<img src=x onerror="alert(1)">Bob`, "Bob"},
		{"ampersand kept literal", "Tom & Jerry", "Tom & Jerry"},
		{"apostrophe kept literal", "O'Brien", "O'Brien"},
		{"surrounding whitespace", "  N1234  ", "N1234"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	s := NewInputSanitizer()

	input := `<a href="javascript:alert(1)">Intro</a> & more`
	first := s.Clean(input)
	second := s.Clean(first)
	if first != second {
		t.Errorf("not idempotent: %q -> %q", first, second)
	}
}

func TestCleanStudent(t *testing.T) {
	got := CleanStudent(NewInputSanitizer(), model.Student{
		FirstName:     "<i>Jane</i>",
		LastName:      " Smith ",
		StudentNumber: "N9876",
		EnrolDate:     " 2024-01-01 ",
	})

	want := model.Student{FirstName: "Jane", LastName: "Smith", StudentNumber: "N9876", EnrolDate: "2024-01-01"}
	if got != want {
		t.Errorf("CleanStudent = %+v, want %+v", got, want)
	}
}

func TestCleanTeacher_KeepsSalary(t *testing.T) {
	got := CleanTeacher(NewInputSanitizer(), model.Teacher{FirstName: "<b>A</b>", EmployeeNumber: "T123", Salary: 42.5})

	if got.FirstName != "A" || got.EmployeeNumber != "T123" || got.Salary != 42.5 {
		t.Errorf("CleanTeacher = %+v", got)
	}
}

func TestCleanCourse(t *testing.T) {
	got := CleanCourse(NewInputSanitizer(), model.Course{CourseCode: "<u>http5110</u>", CourseName: "Web <script>x</script>Dev", TeacherID: 3})

	if got.CourseCode != "http5110" || got.CourseName != "Web Dev" || got.TeacherID != 3 {
		t.Errorf("CleanCourse = %+v", got)
	}
}

func TestInputSanitizerInterface(t *testing.T) {
	var _ InputSanitizerService = NewInputSanitizer()
}
