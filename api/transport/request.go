package transport

// DragRequest is one completed drag gesture. Container ids use the wire form
// "boards", "boards:<parentId>", "status:<value>", "date:<YYYY-MM-DD>" or a board id.
type DragRequest struct {
	Item        string `json:"item"`
	ItemID      string `json:"itemId"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Index       int    `json:"index"`
	// Wait holds the response until the write reached the store.
	Wait bool `json:"wait"`
}

type BoardRequest struct {
	Title      *string `json:"title"`
	ParentID   *string `json:"parentId"`
	IsFavorite *bool   `json:"isFavorite"`
	Collapsed  *bool   `json:"collapsed"`
}

type TaskRequest struct {
	BoardID     string    `json:"boardId"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	Tags        *[]string `json:"tags"`
	DueDate     *string   `json:"dueDate"`
}

type SessionRequest struct {
	TaskID string `json:"taskId"`
	Kind   string `json:"kind"`
}

type SettingsRequest struct {
	DefaultView  *string `json:"defaultView"`
	WeekStartsOn *int    `json:"weekStartsOn"`
	SoundEnabled *bool   `json:"soundEnabled"`
	Theme        *string `json:"theme"`
	Locale       *string `json:"locale"`
	ShowArchived *bool   `json:"showArchived"`
}
