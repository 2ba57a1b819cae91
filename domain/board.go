package domain

// Board groups tasks. A board may sit under exactly one top-level parent.
type Board struct {
	ID         string    `json:"id" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	Order      int       `json:"order" validate:"gte=0"`
	ParentID   string    `json:"parentId,omitempty"`
	IsArchived bool      `json:"isArchived"`
	IsFavorite bool      `json:"isFavorite"`
	Collapsed  bool      `json:"collapsed"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// IsSubBoard reports whether the board has a parent.
func (b *Board) IsSubBoard() bool {
	return b != nil && b.ParentID != ""
}

func (b Board) RecordKind() Kind {
	return KindBoard
}

func (b Board) RecordID() string {
	return b.ID
}
