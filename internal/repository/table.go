package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/schoolrecords/internal/model"
)

// Scanner は1行分の値を読み出す。*sql.Row と *sql.Rows が満たす。
type Scanner interface {
	Scan(dest ...any) error
}

// Descriptor はレコード型Tとテーブルの対応を表す。
// Columns はID列を除く列を、Values の戻り値と同じ順序で並べる。
// Scan はID列に続けて Columns の順に読み出す。
type Descriptor[T any] struct {
	Entity   string
	Table    string
	IDColumn string
	Columns  []string
	Scan     func(row Scanner) (T, error)
	Values   func(rec T) ([]any, error)
}

// Table はDescriptorに従ってCRUDを行う汎用リポジトリ。
type Table[T any] struct {
	db       DBTX
	desc     Descriptor[T]
	observer LatencyObserver

	selectSQL string
	findSQL   string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewTable はTableを生成する。SQL文は生成時に1回だけ組み立てる。
func NewTable[T any](db DBTX, desc Descriptor[T]) *Table[T] {
	cols := strings.Join(desc.Columns, ", ")
	placeholders := make([]string, len(desc.Columns))
	assignments := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	t := &Table[T]{db: db, desc: desc}
	t.selectSQL = fmt.Sprintf("SELECT %s, %s FROM %s", desc.IDColumn, cols, desc.Table)
	t.findSQL = fmt.Sprintf("%s WHERE %s = $1", t.selectSQL, desc.IDColumn)
	t.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		desc.Table, cols, strings.Join(placeholders, ", "), desc.IDColumn)
	t.updateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		desc.Table, strings.Join(assignments, ", "), desc.IDColumn, len(desc.Columns)+1)
	t.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = $1", desc.Table, desc.IDColumn)
	return t
}

// WithObserver はストア操作の所要時間の通知先を設定する。
func (t *Table[T]) WithObserver(o LatencyObserver) *Table[T] {
	t.observer = o
	return t
}

func (t *Table[T]) observe(op string, start time.Time) {
	if t.observer != nil {
		t.observer.ObserveStoreLatency(t.desc.Entity, op, time.Since(start))
	}
}

// List は全行を取得する。順序はストアの既定に従う。
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	defer t.observe("list", time.Now())

	rows, err := t.db.QueryContext(ctx, t.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.desc.Table, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		rec, err := t.desc.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.desc.Entity, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.desc.Table, err)
	}
	return records, nil
}

// Find は指定IDの行を取得する。見つからない場合はnilを返す。
func (t *Table[T]) Find(ctx context.Context, id int64) (*T, error) {
	defer t.observe("find", time.Now())

	rec, err := t.desc.Scan(t.db.QueryRowContext(ctx, t.findSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %d: %w", t.desc.Entity, id, err)
	}
	return &rec, nil
}

// Create は行を挿入し、ストアが採番したIDを返す。
// レコードのID値は使用しない。
func (t *Table[T]) Create(ctx context.Context, rec T) (int64, error) {
	defer t.observe("create", time.Now())

	values, err := t.desc.Values(rec)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := t.db.QueryRowContext(ctx, t.insertSQL, values...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", t.desc.Entity, err)
	}
	return id, nil
}

// Delete は指定IDの行を削除する。影響行数で結果を区別する。
func (t *Table[T]) Delete(ctx context.Context, id int64) (model.DeleteOutcome, error) {
	defer t.observe("delete", time.Now())

	res, err := t.db.ExecContext(ctx, t.deleteSQL, id)
	if err != nil {
		return model.DeleteNotFound, fmt.Errorf("failed to delete %s %d: %w", t.desc.Entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.DeleteNotFound, fmt.Errorf("failed to read affected rows for %s %d: %w", t.desc.Entity, id, err)
	}
	if n == 0 {
		return model.DeleteNotFound, nil
	}
	return model.DeleteRemoved, nil
}

// Update は存在確認をせずに指定IDの行を上書きし、再取得した結果を返す。
// 該当行がない場合は何も変更せずnilを返す。
func (t *Table[T]) Update(ctx context.Context, id int64, rec T) (*T, error) {
	values, err := t.desc.Values(rec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	_, err = t.db.ExecContext(ctx, t.updateSQL, append(values, id)...)
	t.observe("update", start)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", t.desc.Entity, id, err)
	}

	return t.Find(ctx, id)
}
