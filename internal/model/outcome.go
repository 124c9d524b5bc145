package model

// DeleteOutcome は削除操作の結果を表す。
type DeleteOutcome int

const (
	// DeleteNotFound は対象行が存在しなかったことを示す。
	DeleteNotFound DeleteOutcome = iota
	// DeleteRemoved は対象行を削除したことを示す。
	DeleteRemoved
)

// String はログ出力用の表現を返す。
func (o DeleteOutcome) String() string {
	switch o {
	case DeleteRemoved:
		return "removed"
	default:
		return "not_found"
	}
}
