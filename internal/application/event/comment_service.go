package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// CommentService manages event discussions
type CommentService struct {
	access
	logger *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repos Repositories, logger *zap.Logger) *CommentService {
	return &CommentService{access: access{repos: repos}, logger: logger}
}

// Create posts a comment, or a reply when ParentID is set
func (s *CommentService) Create(ctx context.Context, userID uuid.UUID, req CreateCommentRequest) (*CommentResponse, error) {
	if _, err := s.findEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	var parent *event.Comment
	if req.ParentID != nil {
		p, err := s.findComment(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		parent = p
	}
	c, err := event.NewComment(req.EventID, userID, req.Content, parent)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// ListByEvent returns the event's comment tree
func (s *CommentService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]CommentResponse, error) {
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.commentTree(ctx, comments)
}

// Update edits the author's own comment
func (s *CommentService) Update(ctx context.Context, id, userID uuid.UUID, req UpdateCommentRequest) (*CommentResponse, error) {
	c, err := s.findComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Edit(userID, req.Content); err != nil {
		return nil, err
	}
	if err := s.repos.Comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Delete removes a comment and its replies. Allowed for the author and
// for managers of the event.
func (s *CommentService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	c, err := s.findComment(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		e, err := s.findEvent(ctx, c.EventID)
		if err != nil {
			return err
		}
		ok, err := s.canManage(ctx, e, userID)
		if err != nil {
			return err
		}
		if !ok {
			return event.ErrNotCommentAuthor
		}
	}
	if err := s.repos.Comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.logger.Debug("comment deleted",
		zap.String("comment_id", c.ID.String()), zap.String("actor_id", userID.String()))
	return nil
}

func (s *CommentService) findComment(ctx context.Context, id uuid.UUID) (*event.Comment, error) {
	c, err := s.repos.Comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, event.ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CommentService) respond(ctx context.Context, c *event.Comment) (*CommentResponse, error) {
	users, err := s.usersByID(ctx, []uuid.UUID{c.UserID})
	if err != nil {
		return nil, err
	}
	resp := toCommentResponse(c, users[c.UserID])
	return &resp, nil
}
