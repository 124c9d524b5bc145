// Package datefmt は日付文字列の解析と、エンティティごとの固定出力形式を提供する。
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// エンティティごとの出力レイアウト。APIの互換性のため変更しないこと。
const (
	// StudentLayout は学生の入学日の出力形式（yyyy/MM/dd）。
	StudentLayout = "2006/01/02"
	// TeacherLayout は教員の採用日時の出力形式（yyyy/MM/dd HH:mm:ss）。
	TeacherLayout = "2006/01/02 15:04:05"
	// CourseLayout はコースの開始日・終了日の出力形式（yyyy-MM-dd）。
	CourseLayout = "2006-01-02"
)

// inputLayouts は入力として受け付けるレイアウト。先頭から順に試す。
var inputLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01-02-2006",
	"01/02/2006",
}

// Parse は日付文字列をローカルタイムゾーンで解析する。
// 前後の空白は無視する。いずれのレイアウトにも一致しない場合はエラーを返す。
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date format: %q", s)
}

// Format は時刻をレイアウトで整形する。ゼロ値は空文字列になる。
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// IsFuture は t が now より後かどうかを返す。
func IsFuture(t, now time.Time) bool {
	return t.After(now)
}
