// Package course はコースレコードの検証と永続化を担うサービス層を提供する。
package course

import (
	"context"

	"github.com/hitoshi/schoolrecords/internal/metrics"
	"github.com/hitoshi/schoolrecords/internal/model"
	"github.com/hitoshi/schoolrecords/internal/repository"
	"github.com/hitoshi/schoolrecords/internal/validation"
)

const entity = "course"

// Service はコースのサービス層。
// 開始日と終了日の前後関係、および教員IDの実在は検証しない。
type Service struct {
	repo    repository.CourseRepository
	rules   *validation.Rules
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CourseRepository, rules *validation.Rules, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{repo: repo, rules: rules, metrics: mc}
}

// List は全コースを返す。
func (s *Service) List(ctx context.Context) ([]model.Course, error) {
	return s.repo.List(ctx)
}

// Find は指定IDのコースを返す。見つからない場合はnilを返す。
func (s *Service) Find(ctx context.Context, id int64) (*model.Course, error) {
	return s.repo.Find(ctx, id)
}

// Create は入力を検証してコースを作成し、採番されたIDを返す。
func (s *Service) Create(ctx context.Context, in model.Course) (int64, error) {
	verr, err := s.checkCreate(in)
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

// Update は入力を検証して指定IDのコースを上書きする。
// 該当行がない場合はnilを返す。
func (s *Service) Update(ctx context.Context, id int64, in model.Course) (*model.Course, error) {
	verr, err := s.checkUpdate(in)
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

// Delete は指定IDのコースを削除する。
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

func (s *Service) checkCreate(in model.Course) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if f.Has("StartDate", validation.TagDate) {
		return model.NewValidationError("start_date_format", "Invalid course start date format."), nil
	}
	if f.Has("StartDate", validation.TagNotFuture) {
		return model.NewValidationError("start_date_future", "Course start date cannot be in future."), nil
	}
	if f.Has("FinishDate", validation.TagDate) {
		return model.NewValidationError("finish_date_format", "Invalid course finish date format."), nil
	}
	if f.Has("FinishDate", validation.TagNotFuture) {
		return model.NewValidationError("finish_date_future", "Course finish date cannot be in future."), nil
	}
	if f.Has("CourseName", validation.TagRequired) {
		return model.NewValidationError("course_name_empty", "Course name cannot be empty"), nil
	}
	return nil, nil
}

func (s *Service) checkUpdate(in model.Course) (*model.ValidationError, error) {
	f, err := s.rules.Check(in)
	if err != nil {
		return nil, err
	}

	if in.StartDate == "" {
		return model.NewValidationError("start_date_empty", "Course start date cannot be empty."), nil
	}
	if f.Has("StartDate", validation.TagDate) {
		return model.NewValidationError("start_date_format", "Invalid course start date format."), nil
	}
	if f.Has("StartDate", validation.TagNotFuture) {
		return model.NewValidationError("start_date_future", "Course start date cannot be in the future."), nil
	}

	if in.FinishDate == "" {
		return model.NewValidationError("finish_date_empty", "Course finish date cannot be empty."), nil
	}
	if f.Has("FinishDate", validation.TagDate) {
		return model.NewValidationError("finish_date_format", "Invalid course finish date format."), nil
	}
	if f.Has("FinishDate", validation.TagNotFuture) {
		return model.NewValidationError("finish_date_future", "Course finish date cannot be in the future."), nil
	}

	if f.Has("CourseName", validation.TagRequired) {
		return model.NewValidationError("course_name_empty", "Course name cannot be empty."), nil
	}
	if f.Has("CourseCode", validation.TagRequired) {
		return model.NewValidationError("course_code_empty", "Course code cannot be empty."), nil
	}
	if f.Has("TeacherID", validation.TagRequired) {
		return model.NewValidationError("teacher_id_empty", "Teacher ID cannot be empty or invalid."), nil
	}
	return nil, nil
}
