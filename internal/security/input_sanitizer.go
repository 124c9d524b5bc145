// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizer は画面フォームから受け取った自由記述の文字列から
// HTMLマークアップを取り除く。bluemondayのStrictPolicyを使用し、
// タグは全て除去してテキストのみを残す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/schoolrecords/internal/model"
)

// InputSanitizerService はフォーム入力のサニタイズ機能のインターフェース。
type InputSanitizerService interface {
	// Clean はマークアップを除去し、前後の空白を取り除いたテキストを返す。
	// 同一入力に対して常に同一出力を返す。
	Clean(s string) string
}

// InputSanitizer はInputSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type InputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerを生成する。
func NewInputSanitizer() *InputSanitizer {
	return &InputSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean はマークアップを除去する。
// StrictPolicyはテキストをHTMLエスケープして返すため、テンプレート側での
// 二重エスケープを避けるためにここで元に戻す。
func (s *InputSanitizer) Clean(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

// CleanStudent は学生の自由記述項目をサニタイズしたコピーを返す。
func CleanStudent(s InputSanitizerService, in model.Student) model.Student {
	in.FirstName = s.Clean(in.FirstName)
	in.LastName = s.Clean(in.LastName)
	in.StudentNumber = s.Clean(in.StudentNumber)
	in.EnrolDate = strings.TrimSpace(in.EnrolDate)
	return in
}

// CleanTeacher は教員の自由記述項目をサニタイズしたコピーを返す。
func CleanTeacher(s InputSanitizerService, in model.Teacher) model.Teacher {
	in.FirstName = s.Clean(in.FirstName)
	in.LastName = s.Clean(in.LastName)
	in.EmployeeNumber = s.Clean(in.EmployeeNumber)
	in.HireDate = strings.TrimSpace(in.HireDate)
	return in
}

// CleanCourse はコースの自由記述項目をサニタイズしたコピーを返す。
func CleanCourse(s InputSanitizerService, in model.Course) model.Course {
	in.CourseCode = s.Clean(in.CourseCode)
	in.CourseName = s.Clean(in.CourseName)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.FinishDate = strings.TrimSpace(in.FinishDate)
	return in
}
