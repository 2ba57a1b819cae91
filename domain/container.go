package domain

import (
	"fmt"
	"strings"
)

// ContainerKind enumerates the drop containers a gesture can start or end in.
type ContainerKind int

const (
	// ContainerBoardList is the list of boards sharing one parent scope.
	ContainerBoardList ContainerKind = iota + 1
	// ContainerBoard is a real board holding tasks.
	ContainerBoard
	// ContainerStatus is a virtual kanban column for one status value.
	ContainerStatus
	// ContainerDate is a virtual calendar cell for one day.
	ContainerDate
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerBoardList:
		return "board_list"
	case ContainerBoard:
		return "board"
	case ContainerStatus:
		return "status_bucket"
	case ContainerDate:
		return "date_bucket"
	default:
		return "unknown"
	}
}

// Wire prefixes used by UI collaborators.
const (
	boardListToken = "boards"
	statusPrefix   = "status:"
	datePrefix     = "date:"
)

// ContainerRef is a tagged reference to a drop container. Build it with one of the
// constructors; the zero value refers to no container.
type ContainerRef struct {
	kind   ContainerKind
	id     string
	status Status
	day    Timestamp
}

// BoardList refers to the boards under parentID, or the top-level boards when parentID is empty.
func BoardList(parentID string) ContainerRef {
	return ContainerRef{kind: ContainerBoardList, id: parentID}
}

// BoardContainer refers to a real board.
func BoardContainer(id string) ContainerRef {
	return ContainerRef{kind: ContainerBoard, id: id}
}

// StatusBucket refers to the virtual column of one status.
func StatusBucket(status Status) ContainerRef {
	return ContainerRef{kind: ContainerStatus, status: status}
}

// DateBucket refers to the virtual calendar cell containing day.
func DateBucket(day Timestamp) ContainerRef {
	return ContainerRef{kind: ContainerDate, day: day}
}

func (c ContainerRef) Kind() ContainerKind { return c.kind }

// IsZero reports whether the reference points at nothing.
func (c ContainerRef) IsZero() bool { return c.kind == 0 }

// BoardID is the board of a ContainerBoard reference.
func (c ContainerRef) BoardID() string {
	if c.kind == ContainerBoard {
		return c.id
	}
	return ""
}

// ParentID is the parent scope of a ContainerBoardList reference.
func (c ContainerRef) ParentID() string {
	if c.kind == ContainerBoardList {
		return c.id
	}
	return ""
}

// Status is the value of a ContainerStatus reference.
func (c ContainerRef) Status() Status { return c.status }

// Day is the midnight-UTC timestamp of a ContainerDate reference.
func (c ContainerRef) Day() Timestamp { return c.day }

// String renders the wire form understood by ParseContainerRef.
func (c ContainerRef) String() string {
	switch c.kind {
	case ContainerBoardList:
		if c.id == "" {
			return boardListToken
		}
		return boardListToken + ":" + c.id
	case ContainerBoard:
		return c.id
	case ContainerStatus:
		return statusPrefix + string(c.status)
	case ContainerDate:
		t, _ := c.day.Time()
		return datePrefix + t.Format(DateLayout)
	default:
		return ""
	}
}

// ParseContainerRef decodes the wire form of a container id:
//
//	boards               top-level board list
//	boards:<parentId>    sub-boards of parentId
//	status:<value>       status bucket
//	date:<YYYY-MM-DD>    calendar-day bucket
//	<boardId>            a real board
//
// Malformed virtual ids return ErrDestinationNotFound.
func ParseContainerRef(raw string) (ContainerRef, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ContainerRef{}, WrapError(ErrCodeDestinationNotFound, ErrDestinationNotFound.Message, fmt.Errorf("empty container id"))
	case raw == boardListToken:
		return BoardList(""), nil
	case strings.HasPrefix(raw, boardListToken+":"):
		return BoardList(strings.TrimPrefix(raw, boardListToken+":")), nil
	case strings.HasPrefix(raw, statusPrefix):
		status := Status(strings.TrimPrefix(raw, statusPrefix))
		if !status.Valid() {
			return ContainerRef{}, WrapError(ErrCodeDestinationNotFound, ErrDestinationNotFound.Message, fmt.Errorf("unknown status bucket %q", status))
		}
		return StatusBucket(status), nil
	case strings.HasPrefix(raw, datePrefix):
		day, err := ParseDueDate(strings.TrimPrefix(raw, datePrefix))
		if err != nil || day.IsZero() {
			return ContainerRef{}, WrapError(ErrCodeDestinationNotFound, ErrDestinationNotFound.Message, fmt.Errorf("invalid date bucket %q", raw))
		}
		return DateBucket(day), nil
	case strings.Contains(raw, ":"):
		return ContainerRef{}, WrapError(ErrCodeDestinationNotFound, ErrDestinationNotFound.Message, fmt.Errorf("unknown container namespace %q", raw))
	default:
		return BoardContainer(raw), nil
	}
}
