package event

import (
	"strings"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Comment errors
var (
	ErrCommentNotFound  = shared.NewDomainError("COMMENT_NOT_FOUND", "Comment not found")
	ErrInvalidParent    = shared.NewDomainError("INVALID_PARENT", "Parent comment must be a top-level comment of the same event")
	ErrNotCommentAuthor = shared.NewDomainError("FORBIDDEN", "You can only modify your own comments")
)

const maxCommentLength = 2000

// Comment is a message on an event page. Replies are one level deep.
type Comment struct {
	shared.BaseEntity
	Content  string
	EventID  uuid.UUID
	UserID   uuid.UUID
	ParentID *uuid.UUID
}

// NewComment creates a top-level comment or, when parent is given, a reply
func NewComment(eventID, userID uuid.UUID, content string, parent *Comment) (*Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	c := &Comment{
		BaseEntity: shared.NewBaseEntity(),
		Content:    content,
		EventID:    eventID,
		UserID:     userID,
	}
	if parent != nil {
		if parent.EventID != eventID || parent.ParentID != nil {
			return nil, ErrInvalidParent
		}
		pid := parent.ID
		c.ParentID = &pid
	}
	return c, nil
}

// Edit replaces the content; only the author may edit
func (c *Comment) Edit(userID uuid.UUID, content string) error {
	if c.UserID != userID {
		return ErrNotCommentAuthor
	}
	content, err := validateContent(content)
	if err != nil {
		return err
	}
	c.Content = content
	c.Touch()
	return nil
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", shared.NewDomainError("INVALID_CONTENT", "Comment cannot be empty")
	}
	if len(content) > maxCommentLength {
		return "", shared.NewDomainError("INVALID_CONTENT", "Comment cannot exceed 2000 characters")
	}
	return content, nil
}
