package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/schoolrecords/internal/model"
)

// Compile-time interface checks
var (
	_ StudentRepository = (*Table[model.Student])(nil)
	_ CourseRepository  = (*Table[model.Course])(nil)
	_ TeacherRepository = (*TeacherRepo)(nil)
)

// NewStudentRepo は学生リポジトリを生成する。
func NewStudentRepo(db DBTX) *Table[model.Student] {
	return NewTable(db, StudentDescriptor)
}

// NewCourseRepo はコースリポジトリを生成する。
func NewCourseRepo(db DBTX) *Table[model.Course] {
	return NewTable(db, CourseDescriptor)
}

// TeacherRepo は教員リポジトリ。
// 読み出し時に全コースを1回取得して教員IDで索引化し、担当コースを付与する。
type TeacherRepo struct {
	table   *Table[model.Teacher]
	courses CourseLister
}

// NewTeacherRepo はTeacherRepoを生成する。
func NewTeacherRepo(db DBTX, courses CourseLister) *TeacherRepo {
	return &TeacherRepo{
		table:   NewTable(db, TeacherDescriptor),
		courses: courses,
	}
}

// WithObserver はストア操作の所要時間の通知先を設定する。
func (r *TeacherRepo) WithObserver(o LatencyObserver) *TeacherRepo {
	r.table.WithObserver(o)
	return r
}

// List は全教員を担当コース付きで取得する。
func (r *TeacherRepo) List(ctx context.Context) ([]model.Teacher, error) {
	teachers, err := r.table.List(ctx)
	if err != nil {
		return nil, err
	}
	byTeacher, err := r.coursesByTeacher(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teachers {
		teachers[i].Courses = coursesFor(byTeacher, teachers[i].ID)
	}
	return teachers, nil
}

// Find は指定IDの教員を担当コース付きで取得する。見つからない場合はnilを返す。
func (r *TeacherRepo) Find(ctx context.Context, id int64) (*model.Teacher, error) {
	t, err := r.table.Find(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	return r.withCourses(ctx, t)
}

// Create は教員を作成する。担当コースは永続化しない。
func (r *TeacherRepo) Create(ctx context.Context, t model.Teacher) (int64, error) {
	return r.table.Create(ctx, t)
}

// Delete は教員を削除する。担当コースは削除も付け替えもしない。
func (r *TeacherRepo) Delete(ctx context.Context, id int64) (model.DeleteOutcome, error) {
	return r.table.Delete(ctx, id)
}

// Update は教員を上書きし、担当コース付きで再取得する。
func (r *TeacherRepo) Update(ctx context.Context, id int64, t model.Teacher) (*model.Teacher, error) {
	updated, err := r.table.Update(ctx, id, t)
	if err != nil || updated == nil {
		return nil, err
	}
	return r.withCourses(ctx, updated)
}

func (r *TeacherRepo) withCourses(ctx context.Context, t *model.Teacher) (*model.Teacher, error) {
	byTeacher, err := r.coursesByTeacher(ctx)
	if err != nil {
		return nil, err
	}
	t.Courses = coursesFor(byTeacher, t.ID)
	return t, nil
}

func (r *TeacherRepo) coursesByTeacher(ctx context.Context) (map[int64][]model.Course, error) {
	courses, err := r.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses for teachers: %w", err)
	}
	return IndexCoursesByTeacher(courses), nil
}

// IndexCoursesByTeacher はコースを教員IDごとにまとめる。入力順は保持する。
func IndexCoursesByTeacher(courses []model.Course) map[int64][]model.Course {
	idx := make(map[int64][]model.Course)
	for _, c := range courses {
		idx[c.TeacherID] = append(idx[c.TeacherID], c)
	}
	return idx
}

// coursesFor は担当コースを返す。該当なしでも空スライスを返す。
func coursesFor(idx map[int64][]model.Course, teacherID int64) []model.Course {
	if cs, ok := idx[teacherID]; ok {
		return cs
	}
	return []model.Course{}
}
