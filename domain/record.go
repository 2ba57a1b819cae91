package domain

// Kind names a persisted record collection.
type Kind string

const (
	KindBoard    Kind = "board"
	KindTask     Kind = "task"
	KindSession  Kind = "session"
	KindSettings Kind = "settings"
)

// Kinds lists every record kind.
var Kinds = []Kind{KindBoard, KindTask, KindSession, KindSettings}

// Collection returns the plural collection name used by storage backends.
func (k Kind) Collection() string {
	switch k {
	case KindBoard:
		return "boards"
	case KindTask:
		return "tasks"
	case KindSession:
		return "sessions"
	case KindSettings:
		return "settings"
	default:
		return string(k)
	}
}

// Record is implemented by every persisted entity.
type Record interface {
	RecordKind() Kind
	RecordID() string
}

// Ref identifies a record without carrying its data.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// RefOf returns the reference of a record.
func RefOf(r Record) Ref {
	return Ref{Kind: r.RecordKind(), ID: r.RecordID()}
}

var (
	_ Record = Board{}
	_ Record = Task{}
	_ Record = Session{}
	_ Record = Settings{}
)
