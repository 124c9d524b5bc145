// Package validation はフィールド単位の検証規則を提供する。
// 規則は go-playground/validator のカスタムタグとして登録し、
// レコードの validate タグを Struct で評価する。
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/schoolrecords/internal/datefmt"
)

// タグ名
const (
	TagRequired       = "required"
	TagPositive       = "gt"
	TagStudentNumber  = "student_number"
	TagEmployeeNumber = "employee_number"
	TagDate           = "date"
	TagNotFuture      = "not_future"
)

var (
	studentNumberPattern  = regexp.MustCompile(`^N\d{4}$`)
	employeeNumberPattern = regexp.MustCompile(`^T\d{3}$`)
)

// Rules はカスタムタグを登録済みのvalidatorを保持する。
type Rules struct {
	v   *validator.Validate
	now func() time.Time
}

// New はRulesを生成する。nowは未来日判定の基準時刻を返す。
func New(now func() time.Time) *Rules {
	if now == nil {
		now = time.Now
	}
	r := &Rules{v: validator.New(), now: now}

	// RegisterValidation は登録済みタグ名の重複や空名でのみ失敗する。
	must(r.v.RegisterValidation(TagStudentNumber, matches(studentNumberPattern)))
	must(r.v.RegisterValidation(TagEmployeeNumber, matches(employeeNumberPattern)))
	must(r.v.RegisterValidation(TagDate, func(fl validator.FieldLevel) bool {
		_, err := datefmt.Parse(fl.Field().String())
		return err == nil
	}))
	must(r.v.RegisterValidation(TagNotFuture, func(fl validator.FieldLevel) bool {
		t, err := datefmt.Parse(fl.Field().String())
		if err != nil {
			return true
		}
		return !datefmt.IsFuture(t, r.now())
	}))

	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Failures はフィールド名から、そのフィールドで最初に失敗したタグへの対応。
type Failures map[string]string

// Has はfieldがtagで失敗したかどうかを返す。
func (f Failures) Has(field, tag string) bool {
	return f[field] == tag
}

// Check はレコードの validate タグを評価し、失敗したフィールドを返す。
// 全フィールドが通った場合は空のFailuresを返す。
// どの規則を先に報告するかは呼び出し側が決める。
func (r *Rules) Check(rec any) (Failures, error) {
	failures := Failures{}

	err := r.v.Struct(rec)
	if err == nil {
		return failures, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate %T: %w", rec, err)
	}
	for _, fe := range verrs {
		failures[fe.StructField()] = fe.Tag()
	}
	return failures, nil
}
