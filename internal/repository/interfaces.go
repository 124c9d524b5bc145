// Package repository はデータ永続化のインターフェースと実装を定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/schoolrecords/internal/model"
)

// DBTX はリポジトリが使用するSQL実行のインターフェース。
// *sql.DB と *sql.Tx の双方が満たす。
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LatencyObserver はストア操作の所要時間を受け取る。
type LatencyObserver interface {
	ObserveStoreLatency(entity, operation string, d time.Duration)
}

// StudentRepository は学生データの永続化インターフェース。
type StudentRepository interface {
	// List は全学生を取得する。順序は保証しない。
	List(ctx context.Context) ([]model.Student, error)
	// Find は指定IDの学生を取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, id int64) (*model.Student, error)
	// Create は学生を作成し、採番されたIDを返す。
	Create(ctx context.Context, s model.Student) (int64, error)
	// Delete は指定IDの学生を削除する。
	Delete(ctx context.Context, id int64) (model.DeleteOutcome, error)
	// Update は指定IDの学生を上書きし、再取得した結果を返す。
	// 該当行がない場合はnilを返す。
	Update(ctx context.Context, id int64, s model.Student) (*model.Student, error)
}

// TeacherRepository は教員データの永続化インターフェース。
// 読み出し系は担当コースを合成して返す。
type TeacherRepository interface {
	List(ctx context.Context) ([]model.Teacher, error)
	Find(ctx context.Context, id int64) (*model.Teacher, error)
	Create(ctx context.Context, t model.Teacher) (int64, error)
	Delete(ctx context.Context, id int64) (model.DeleteOutcome, error)
	Update(ctx context.Context, id int64, t model.Teacher) (*model.Teacher, error)
}

// CourseRepository はコースデータの永続化インターフェース。
type CourseRepository interface {
	List(ctx context.Context) ([]model.Course, error)
	Find(ctx context.Context, id int64) (*model.Course, error)
	Create(ctx context.Context, c model.Course) (int64, error)
	Delete(ctx context.Context, id int64) (model.DeleteOutcome, error)
	Update(ctx context.Context, id int64, c model.Course) (*model.Course, error)
}

// CourseLister は全コースを列挙する。教員の担当コース合成に使用する。
type CourseLister interface {
	List(ctx context.Context) ([]model.Course, error)
}
