package event

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// EventService handles event lifecycle, listing and gallery management
type EventService struct {
	access
	tx        TransactionScope
	publisher Publisher
	storage   shared.ObjectStorage
	events    shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService creates a new event service
func NewEventService(
	repos Repositories,
	tx TransactionScope,
	publisher Publisher,
	storage shared.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		access:    access{repos: repos},
		tx:        tx,
		publisher: publisher,
		storage:   storage,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a draft event with its promo codes and schedules publication
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*EventResponse, error) {
	if in.Details.CompanyID != nil {
		if err := s.requireCompanyManager(ctx, *in.Details.CompanyID, in.OrganizerID); err != nil {
			return nil, err
		}
	}
	if err := s.ensureCategory(ctx, in.Details.CategoryID); err != nil {
		return nil, err
	}
	if len(in.Images) > event.MaxImages {
		return nil, event.ErrTooManyImages
	}
	if err := checkPromoInputs(in.PromoCodes); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	e, err := event.NewEvent(in.OrganizerID, in.Details, urls)
	if err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}

	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Events().Create(ctx, e); err != nil {
			return err
		}
		for _, pc := range in.PromoCodes {
			exists, err := repos.PromoCodes().ExistsByCode(ctx, strings.TrimSpace(pc.Code))
			if err != nil {
				return err
			}
			if exists {
				return event.ErrPromoCodeAlreadyExists
			}
			promo, err := event.NewPromoCode(e.ID, pc.Code, pc.Discount)
			if err != nil {
				return err
			}
			if err := repos.PromoCodes().Create(ctx, promo); err != nil {
				if errors.Is(err, shared.ErrAlreadyExists) {
					return event.ErrPromoCodeAlreadyExists
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}

	if err := s.publisher.Schedule(ctx, e.ID, e.PublishDate); err != nil {
		s.logger.Error("failed to schedule event publication",
			zap.String("event_id", e.ID.String()), zap.Error(err))
	}

	s.logger.Info("event created",
		zap.String("event_id", e.ID.String()),
		zap.String("organizer_id", e.OrganizerID.String()),
		zap.Time("publish_date", e.PublishDate))

	resp := ToEventResponse(e)
	return &resp, nil
}

// List returns upcoming published events matching the query, date ascending
func (s *EventService) List(ctx context.Context, q ListEventsQuery) ([]EventResponse, error) {
	filter, err := q.Filter(s.now())
	if err != nil {
		return nil, err
	}
	events, err := s.repos.Events.FindPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToEventResponses(events), nil
}

// Search is List with paging and sorting
func (s *EventService) Search(ctx context.Context, q SearchEventsQuery) (shared.Paginated[EventResponse], error) {
	filter, err := q.Filter(s.now())
	if err != nil {
		return shared.Paginated[EventResponse]{}, err
	}
	opts := q.Options()
	events, total, err := s.repos.Events.Search(ctx, filter, opts)
	if err != nil {
		return shared.Paginated[EventResponse]{}, err
	}
	return shared.NewPaginated(ToEventResponses(events), total, opts.PageRequest), nil
}

// Get returns the single-event view. Events that are not published are
// reported as missing to anyone but their managers.
func (s *EventService) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*EventDetailResponse, error) {
	e, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != event.StatusPublished {
		if viewerID == nil {
			return nil, event.ErrEventNotFound
		}
		ok, err := s.canManage(ctx, e, *viewerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, event.ErrEventNotFound
		}
	}

	resp := &EventDetailResponse{
		EventResponse: ToEventResponse(e),
		Attendees:     []UserSummary{},
		Comments:      []CommentResponse{},
		SimilarEvents: []EventResponse{},
	}

	if organizer, err := s.repos.Users.FindByID(ctx, e.OrganizerID); err == nil {
		summary := ToUserSummary(organizer)
		resp.Organizer = &summary
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if e.CompanyID != nil {
		if c, err := s.repos.Companies.FindByID(ctx, *e.CompanyID); err == nil {
			summary := ToCompanySummary(c)
			resp.Company = &summary
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if e.CategoryID != nil {
		if c, err := s.repos.Categories.FindByID(ctx, *e.CategoryID); err == nil {
			summary := ToCategorySummary(c)
			resp.Category = &summary
		} else if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, catalog.ErrCategoryNotFound) {
			return nil, err
		}
	}

	count, err := s.repos.Tickets.CountActiveByEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	resp.AttendeeCount = &count

	if !e.IsAttendeesHidden {
		if resp.Attendees, err = s.visibleAttendees(ctx, e.ID); err != nil {
			return nil, err
		}
	}

	comments, err := s.repos.Comments.FindByEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if resp.Comments, err = s.commentTree(ctx, comments); err != nil {
		return nil, err
	}

	candidates, err := s.repos.Events.FindSimilarCandidates(ctx, e, s.now(), event.SimilarEventsLimit)
	if err != nil {
		return nil, err
	}
	resp.SimilarEvents = ToEventResponses(event.RankSimilar(e, candidates))

	return resp, nil
}

// Update applies a partial update. A changed publish date of a draft
// replaces the pending publish job.
func (s *EventService) Update(ctx context.Context, in UpdateEventInput) (*EventResponse, error) {
	e, err := s.managedEvent(ctx, in.EventID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, in.Update.CategoryID); err != nil {
		return nil, err
	}

	reschedule, err := e.ApplyUpdate(in.Update)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Events.Update(ctx, e); err != nil {
		return nil, err
	}

	if reschedule {
		if err := s.publisher.Schedule(ctx, e.ID, e.PublishDate); err != nil {
			s.logger.Error("failed to reschedule event publication",
				zap.String("event_id", e.ID.String()), zap.Error(err))
		}
	}
	publishEvents(ctx, s.events, s.logger, e)

	resp := ToEventResponse(e)
	return &resp, nil
}

// Cancel marks the event cancelled and drops its publish job
func (s *EventService) Cancel(ctx context.Context, eventID, userID uuid.UUID) (*EventResponse, error) {
	e, err := s.managedEvent(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if err := e.Cancel(); err != nil {
		return nil, err
	}
	cancelled, err := s.repos.Events.SetStatus(ctx, e.ID, event.StatusCancelled, event.StatusDraft, event.StatusPublished)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, event.ErrEventCancelled
	}
	if err := s.publisher.Cancel(ctx, e.ID); err != nil {
		s.logger.Warn("failed to cancel publish job",
			zap.String("event_id", e.ID.String()), zap.Error(err))
	}
	publishEvents(ctx, s.events, s.logger, e)

	s.logger.Info("event cancelled", zap.String("event_id", e.ID.String()))
	resp := ToEventResponse(e)
	return &resp, nil
}

// UpdateImages removes the listed images and uploads new ones
func (s *EventService) UpdateImages(ctx context.Context, in UpdateImagesInput) (*EventResponse, error) {
	e, err := s.managedEvent(ctx, in.EventID, in.UserID)
	if err != nil {
		return nil, err
	}

	removed := e.RemoveImages(in.ImagesToDelete)
	if len(e.ImageURLs)+len(in.Images) > event.MaxImages {
		return nil, event.ErrTooManyImages
	}
	urls, err := s.upload(ctx, in.Images)
	if err != nil {
		return nil, err
	}
	if err := e.AddImages(urls); err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}
	if err := s.repos.Events.Update(ctx, e); err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}
	s.discard(ctx, removed...)

	resp := ToEventResponse(e)
	return &resp, nil
}

// DeleteImages drops gallery images and their stored objects
func (s *EventService) DeleteImages(ctx context.Context, eventID, userID uuid.UUID, urls []string) (*EventResponse, error) {
	e, err := s.managedEvent(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	removed := e.RemoveImages(urls)
	if len(removed) > 0 {
		if err := s.repos.Events.Update(ctx, e); err != nil {
			return nil, err
		}
		s.discard(ctx, removed...)
	}
	resp := ToEventResponse(e)
	return &resp, nil
}

// CanManage reports whether the user may manage the event
func (s *EventService) CanManage(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	e, err := s.findEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	return s.canManage(ctx, e, userID)
}

func (s *EventService) requireCompanyManager(ctx context.Context, companyID, userID uuid.UUID) error {
	if _, err := s.repos.Companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return company.ErrCompanyNotFound
		}
		return err
	}
	ok, err := s.isCompanyManager(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return company.ErrInsufficientPermissions
	}
	return nil
}

func (s *EventService) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.repos.Categories.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// visibleAttendees lists holders of ACTIVE tickets who allow being shown
func (s *EventService) visibleAttendees(ctx context.Context, eventID uuid.UUID) ([]UserSummary, error) {
	active := ticketing.TicketStatusActive
	tickets, err := s.repos.Tickets.FindByEvent(ctx, eventID, ticketing.AttendeeFilter{Status: &active})
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(tickets))
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok || !u.ShowInAttendees {
			continue
		}
		out = append(out, ToUserSummary(u))
	}
	return out, nil
}

func (s *EventService) upload(ctx context.Context, files []shared.FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.storage.Upload(ctx, shared.FolderEventImages, f.Filename, f.Data, f.ContentType)
		if err != nil {
			s.discard(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *EventService) discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := s.storage.DeleteByURL(ctx, url); err != nil {
			s.logger.Warn("failed to delete stored image", zap.String("url", url), zap.Error(err))
		}
	}
}

func checkPromoInputs(codes []PromoCodeInput) error {
	seen := make(map[string]struct{}, len(codes))
	for _, pc := range codes {
		code := strings.TrimSpace(pc.Code)
		if _, dup := seen[code]; dup {
			return event.ErrPromoCodeAlreadyExists
		}
		seen[code] = struct{}{}
	}
	return nil
}

// buildCommentTree nests replies under their roots. Roots come newest
// first, replies oldest first.
func buildCommentTree(comments []*event.Comment, users map[uuid.UUID]*identity.User) []CommentResponse {
	replies := make(map[uuid.UUID][]CommentResponse)
	roots := make([]*event.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		replies[*c.ParentID] = append(replies[*c.ParentID], toCommentResponse(c, users[c.UserID]))
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	out := make([]CommentResponse, len(roots))
	for i, c := range roots {
		resp := toCommentResponse(c, users[c.UserID])
		resp.Replies = replies[c.ID]
		sort.SliceStable(resp.Replies, func(a, b int) bool {
			return resp.Replies[a].CreatedAt.Before(resp.Replies[b].CreatedAt)
		})
		if resp.Replies == nil {
			resp.Replies = []CommentResponse{}
		}
		out[i] = resp
	}
	return out
}

func (a access) commentTree(ctx context.Context, comments []*event.Comment) ([]CommentResponse, error) {
	ids := make([]uuid.UUID, 0, len(comments))
	seen := make(map[uuid.UUID]struct{}, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			ids = append(ids, c.UserID)
		}
	}
	users, err := a.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildCommentTree(comments, users), nil
}

func toCommentResponse(c *event.Comment, u *identity.User) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		EventID:   c.EventID,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if u != nil {
		summary := ToUserSummary(u)
		resp.User = &summary
	}
	return resp
}
