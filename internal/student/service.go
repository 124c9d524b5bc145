// Package student は学生レコードの検証と永続化を担うサービス層を提供する。
package student

import (
	"context"
	"fmt"

	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/repository"
	"github.com/hitoshi/schoolrecords/internal/validation"
)

const entity = "student"

// Service は学生のサービス層。
// 作成・更新では規則を順に評価し、最初に失敗した規則のみを返す。
type Service struct {
	repo    repository.StudentRepository
	rules   *validation.Rules
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.StudentRepository, rules *validation.Rules, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{repo: repo, rules: rules, metrics: mc}
}

// List は全学生を返す。
func (s *Service) List(ctx context.Context) ([]model.Student, error) {
	return s.repo.List(ctx)
}

// Find は指定IDの学生を返す。見つからない場合はnilを返す。
func (s *Service) Find(ctx context.Context, id int64) (*model.Student, error) {
	return s.repo.Find(ctx, id)
}

// Create は入力を検証して学生を作成し、採番されたIDを返す。
// 検証に失敗した場合は*model.ValidationErrorを返し、何も永続化しない。
func (s *Service) Create(ctx context.Context, in model.Student) (int64, error) {
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

// Update は入力を検証して指定IDの学生を上書きする。
// 該当行がない場合はnilを返す。
func (s *Service) Update(ctx context.Context, id int64, in model.Student) (*model.Student, error) {
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

// Delete は指定IDの学生を削除する。
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

func (s *Service) checkCreate(ctx context.Context, in model.Student) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if f.Has("StudentNumber", validation.TagStudentNumber) {
		return model.NewValidationError("student_number_format",
			"Student number should start with 'N' followed by 4 digits. Eg: N1234"), nil
	}
	if in.StudentNumber != "" {
		taken, err := s.numberTaken(ctx, in.StudentNumber, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return model.NewValidationError("student_number_taken",
				"This student number has already been taken by another student"), nil
		}
	}

	if f.Has("EnrolDate", validation.TagDate) {
		return model.NewValidationError("enrol_date_format", "Invalid enrol date format."), nil
	}
	if f.Has("EnrolDate", validation.TagNotFuture) {
		return model.NewValidationError("enrol_date_future", "Enrol Date cannot be in the future."), nil
	}

	first, last := f.Has("FirstName", validation.TagRequired), f.Has("LastName", validation.TagRequired)
	switch {
	case first && last:
		return model.NewValidationError("name_empty", "Student first and last name cannot be empty"), nil
	case first:
		return model.NewValidationError("first_name_empty", "Student first name cannot be empty"), nil
	case last:
		return model.NewValidationError("last_name_empty", "Student last name cannot be empty"), nil
	}
	return nil, nil
}

// checkUpdate は作成時の規則に加えて入学日と学籍番号の入力を必須とする。
// 学籍番号が空の場合は日付の規則を先に評価する。
func (s *Service) checkUpdate(ctx context.Context, id int64, in model.Student) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if f.Has("StudentNumber", validation.TagStudentNumber) {
		return model.NewValidationError("student_number_format",
			"Student number must start with 'N' followed by 4 digits (e.g., N1234)."), nil
	}
	if in.StudentNumber != "" {
		taken, err := s.numberTaken(ctx, in.StudentNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return model.NewValidationError("student_number_taken",
				"This student number is already taken by another student."), nil
		}
	}

	if in.EnrolDate == "" {
		return model.NewValidationError("enrol_date_empty", "Enrol Date cannot be empty."), nil
	}
	if f.Has("EnrolDate", validation.TagDate) {
		return model.NewValidationError("enrol_date_format", "Invalid enrol date format."), nil
	}
	if f.Has("EnrolDate", validation.TagNotFuture) {
		return model.NewValidationError("enrol_date_future", "Enrol Date cannot be in the future."), nil
	}

	if in.StudentNumber == "" {
		return model.NewValidationError("student_number_empty", "Student number cannot be empty."), nil
	}

	first, last := f.Has("FirstName", validation.TagRequired), f.Has("LastName", validation.TagRequired)
	switch {
	case first && last:
		return model.NewValidationError("name_empty", "Student first and last names cannot both be empty."), nil
	case first:
		return model.NewValidationError("first_name_empty", "Student first name cannot be empty."), nil
	case last:
		return model.NewValidationError("last_name_empty", "Student last name cannot be empty."), nil
	}
	return nil, nil
}

// numberTaken は学籍番号が他の学生に使われているかを全件走査で調べる。
// selfIDに一致する学生は除外する。走査と書き込みの間は排他されない。
func (s *Service) numberTaken(ctx context.Context, number string, selfID int64) (bool, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("学籍番号の重複確認に失敗しました: %w", err)
	}
	for _, st := range students {
		if st.StudentNumber == number && st.ID != selfID {
			return true, nil
		}
	}
	return false, nil
}
