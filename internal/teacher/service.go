// Package teacher は教員レコードの検証と永続化を担うサービス層を提供する。
package teacher

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/schoolrecords/internal/datefmt"
	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/repository"
	"github.com/hitoshi/schoolrecords/internal/validation"
)

const entity = "teacher"

// Service は教員のサービス層。
// 作成時は給与を検証しない。更新時のみ給与が正であることを要求する。
type Service struct {
	repo    repository.TeacherRepository
	rules   *validation.Rules
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.TeacherRepository, rules *validation.Rules, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{repo: repo, rules: rules, metrics: mc}
}

// List は全教員を担当コース付きで返す。
func (s *Service) List(ctx context.Context) ([]model.Teacher, error) {
	return s.repo.List(ctx)
}

// ListHiredBetween は採用日が[start, end]に含まれる教員を返す。
// どちらかが空の場合は全件を返す。境界の日付が解釈できない場合はエラーを返す。
func (s *Service) ListHiredBetween(ctx context.Context, start, end string) ([]model.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if start == "" || end == "" {
		return teachers, nil
	}

	from, err := datefmt.Parse(start)
	if err != nil {
		return nil, model.NewInvalidDateError("StartDate", start)
	}
	to, err := datefmt.Parse(end)
	if err != nil {
		return nil, model.NewInvalidDateError("EndDate", end)
	}

	filtered := []model.Teacher{}
	for _, t := range teachers {
		hired, ok := parseHireDate(t.HireDate)
		if !ok {
			continue
		}
		if !hired.Before(from) && !hired.After(to) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func parseHireDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := datefmt.Parse(s)
	return t, err == nil
}

// Find は指定IDの教員を返す。見つからない場合はnilを返す。
func (s *Service) Find(ctx context.Context, id int64) (*model.Teacher, error) {
	return s.repo.Find(ctx, id)
}

// Create は入力を検証して教員を作成し、採番されたIDを返す。
// 検証に失敗した場合は*model.ValidationErrorを返し、何も永続化しない。
func (s *Service) Create(ctx context.Context, in model.Teacher) (int64, error) {
	verr, err := s.checkCreate(ctx, in)
	if err != nil {
		return 0, err
	}
	if verr != nil {
		s.metrics.RecordValidationRejection(entity, "create")
		return 0, verr
	}

	id, err := s.repo.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordWrite(entity, "create")
	return id, nil
}

// Update は入力を検証して指定IDの教員を上書きする。
// 該当行がない場合はnilを返す。
func (s *Service) Update(ctx context.Context, id int64, in model.Teacher) (*model.Teacher, error) {
	verr, err := s.checkUpdate(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		s.metrics.RecordValidationRejection(entity, "update")
		return nil, verr
	}

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordWrite(entity, "update")
	return updated, nil
}

// Delete は指定IDの教員を削除する。担当コースはそのまま残る。
func (s *Service) Delete(ctx context.Context, id int64) (model.DeleteOutcome, error) {
	outcome, err := s.repo.Delete(ctx, id)
	if err != nil {
		return outcome, err
	}
	if outcome == model.DeleteRemoved {
		s.metrics.RecordWrite(entity, "delete")
	}
	return outcome, nil
}

func (s *Service) checkCreate(ctx context.Context, in model.Teacher) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if f.Has("EmployeeNumber", validation.TagEmployeeNumber) {
		return model.NewValidationError("employee_number_format",
			"Employee number should start with 'T' followed by 3 digits. Eg: T123"), nil
	}
	if in.EmployeeNumber != "" {
		taken, err := s.numberTaken(ctx, in.EmployeeNumber, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return model.NewValidationError("employee_number_taken",
				"This employee number has already been taken by the teacher"), nil
		}
	}

	if f.Has("HireDate", validation.TagDate) {
		return model.NewValidationError("hire_date_format", "Invalid hire date format."), nil
	}
	if f.Has("HireDate", validation.TagNotFuture) {
		return model.NewValidationError("hire_date_future", "Hire Date cannot be in future."), nil
	}

	first, last := f.Has("FirstName", validation.TagRequired), f.Has("LastName", validation.TagRequired)
	switch {
	case first && last:
		return model.NewValidationError("name_empty", "Teacher first and last name cannot be empty"), nil
	case first:
		return model.NewValidationError("first_name_empty", "Teacher first name cannot be empty"), nil
	case last:
		return model.NewValidationError("last_name_empty", "Teacher last name cannot be empty"), nil
	}
	return nil, nil
}

func (s *Service) checkUpdate(ctx context.Context, id int64, in model.Teacher) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if in.EmployeeNumber == "" {
		return model.NewValidationError("employee_number_empty", "Employee number cannot be empty."), nil
	}
	if f.Has("EmployeeNumber", validation.TagEmployeeNumber) {
		return model.NewValidationError("employee_number_format",
			"Employee number must start with 'T' followed by 3 digits (e.g., T123)."), nil
	}
	taken, err := s.numberTaken(ctx, in.EmployeeNumber, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return model.NewValidationError("employee_number_taken", "This employee number is already taken."), nil
	}

	if in.HireDate == "" {
		return model.NewValidationError("hire_date_empty", "Hire date cannot be empty."), nil
	}
	if f.Has("HireDate", validation.TagDate) {
		return model.NewValidationError("hire_date_format", "Invalid hire date format."), nil
	}
	if f.Has("HireDate", validation.TagNotFuture) {
		return model.NewValidationError("hire_date_future", "Hire date cannot be in the future."), nil
	}

	if f.Has("Salary", validation.TagPositive) {
		return model.NewValidationError("salary_not_positive", "Salary must be greater than zero."), nil
	}

	first, last := f.Has("FirstName", validation.TagRequired), f.Has("LastName", validation.TagRequired)
	switch {
	case first && last:
		return model.NewValidationError("name_empty", "Both first and last names cannot be empty."), nil
	case first:
		return model.NewValidationError("first_name_empty", "First name cannot be empty."), nil
	case last:
		return model.NewValidationError("last_name_empty", "Last name cannot be empty."), nil
	}
	return nil, nil
}

// numberTaken は職員番号が他の教員に使われているかを全件走査で調べる。
// selfIDに一致する教員は除外する。走査と書き込みの間は排他されない。
func (s *Service) numberTaken(ctx context.Context, number string, selfID int64) (bool, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("職員番号の重複確認に失敗しました: %w", err)
	}
	for _, t := range teachers {
		if t.EmployeeNumber == number && t.ID != selfID {
			return true, nil
		}
	}
	return false, nil
}
