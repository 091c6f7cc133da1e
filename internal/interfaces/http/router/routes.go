package router

import (
	"github.com/gin-gonic/gin"

	"github.com/t1tandr/uevent/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers served under /api
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Company      *handler.CompanyHandler
	Subscriber   *handler.SubscriberHandler
	Category     *handler.CategoryHandler
	Event        *handler.EventHandler
	PromoCode    *handler.PromoCodeHandler
	Attendee     *handler.AttendeeHandler
	Comment      *handler.CommentHandler
	Ticket       *handler.TicketHandler
	Webhook      *handler.StripeWebhookHandler
	Notification *handler.NotificationHandler
	System       *handler.SystemHandler
}

// Guards are the per-route middleware. Nil guards are skipped.
type Guards struct {
	Auth         gin.HandlerFunc // valid access token required
	OptionalAuth gin.HandlerFunc // identifies the caller when a token is sent
	StreamAuth   gin.HandlerFunc // like Auth, also reads ?token= for websockets
	AuthLimit    gin.HandlerFunc // sign-in and sign-up throttling
	UploadLimit  gin.HandlerFunc // multipart upload throttling
}

// chain drops nil middleware so optional guards can be listed inline
func chain(fns ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

// DomainGroups builds one route group per bounded context
func DomainGroups(h Handlers, g Guards) []*DomainGroup {
	return []*DomainGroup{
		authRoutes(h, g),
		userRoutes(h, g),
		companyRoutes(h, g),
		subscriberRoutes(h, g),
		catalogRoutes(h),
		eventRoutes(h, g),
		ticketRoutes(h, g),
		commentRoutes(h, g),
		notificationRoutes(h, g),
		systemRoutes(h),
	}
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth").Use(chain(g.AuthLimit)...)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/login/access-token", h.Auth.RefreshAccessToken)
	auth.POST("/logout", chain(g.OptionalAuth, h.Auth.Logout)...)
	auth.GET("/google", h.Auth.GoogleLogin)
	auth.GET("/google/callback", h.Auth.GoogleCallback)
	return auth
}

func userRoutes(h Handlers, g Guards) *DomainGroup {
	user := NewDomainGroup("user", "/user")
	user.GET("/profile", chain(g.Auth, h.User.GetProfile)...)
	user.PUT("/profile", chain(g.Auth, h.User.UpdateProfile)...)
	user.POST("/update-avatar", chain(g.Auth, g.UploadLimit, h.User.UpdateAvatar)...)
	user.GET("/:id", h.User.GetPublicProfile)
	return user
}

func companyRoutes(h Handlers, g Guards) *DomainGroup {
	companies := NewDomainGroup("company", "/companies")
	companies.GET("", h.Company.List)
	companies.POST("", chain(g.Auth, g.UploadLimit, h.Company.Create)...)
	companies.GET("/me", chain(g.Auth, h.Company.ListMine)...)
	companies.GET("/me/subscribed", chain(g.Auth, h.Company.ListSubscribed)...)
	companies.GET("/:id", h.Company.Get)
	companies.PATCH("/:id", chain(g.Auth, h.Company.Update)...)
	companies.POST("/:id/logo", chain(g.Auth, g.UploadLimit, h.Company.UpdateLogo)...)
	companies.GET("/:id/events", chain(g.OptionalAuth, h.Company.ListEvents)...)

	companies.GET("/:id/members", h.Company.ListMembers)
	companies.POST("/:id/members", chain(g.Auth, h.Company.AddMember)...)
	companies.PATCH("/:id/members/:memberId", chain(g.Auth, h.Company.UpdateMemberRole)...)
	companies.DELETE("/:id/members/:memberId", chain(g.Auth, h.Company.RemoveMember)...)

	companies.GET("/:id/subscribers", chain(g.Auth, h.Company.ListSubscribers)...)
	companies.POST("/:id/subscribe", chain(g.Auth, h.Subscriber.SubscribeCompany)...)
	companies.DELETE("/:id/subscribe", chain(g.Auth, h.Subscriber.UnsubscribeCompany)...)
	return companies
}

func subscriberRoutes(h Handlers, g Guards) *DomainGroup {
	subscribers := NewDomainGroup("subscriber", "/subscribers")
	subscribers.GET("/user", chain(g.Auth, h.Subscriber.ListByUser)...)
	subscribers.GET("/company/:companyId", h.Subscriber.ListByCompany)
	subscribers.GET("/company/:companyId/count", h.Subscriber.Count)
	subscribers.POST("/:companyId", chain(g.Auth, h.Subscriber.Subscribe)...)
	subscribers.DELETE("/:companyId", chain(g.Auth, h.Subscriber.Unsubscribe)...)
	subscribers.GET("/:companyId/check", chain(g.Auth, h.Subscriber.Check)...)
	return subscribers
}

func catalogRoutes(h Handlers) *DomainGroup {
	catalog := NewDomainGroup("catalog", "")
	categories := catalog.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.Get)

	filters := catalog.Group("filters", "/filters")
	filters.GET("", h.Category.Filters)
	filters.GET("/formats", h.Category.Formats)
	filters.GET("/themes", h.Category.Themes)
	return catalog
}

func eventRoutes(h Handlers, g Guards) *DomainGroup {
	events := NewDomainGroup("event", "/events")
	events.GET("", h.Event.List)
	events.POST("", chain(g.Auth, g.UploadLimit, h.Event.Create)...)
	events.GET("/search", h.Event.Search)
	events.GET("/:id", chain(g.OptionalAuth, h.Event.Get)...)
	events.PATCH("/:id", chain(g.Auth, h.Event.Update)...)
	events.POST("/:id/cancel", chain(g.Auth, h.Event.Cancel)...)
	events.PUT("/:id/images", chain(g.Auth, g.UploadLimit, h.Event.UpdateImages)...)
	events.DELETE("/:id/images", chain(g.Auth, h.Event.DeleteImages)...)

	promo := events.Group("promo-code", "/:id/promo-codes").Use(chain(g.Auth)...)
	promo.GET("", h.PromoCode.List)
	promo.POST("", h.PromoCode.Create)
	promo.POST("/validate", h.PromoCode.Validate)
	promo.PATCH("/:promoId", h.PromoCode.Update)
	promo.DELETE("/:promoId", h.PromoCode.Delete)

	attendees := events.Group("attendee", "/:id/attendees").Use(chain(g.Auth)...)
	attendees.GET("", h.Attendee.List)
	attendees.GET("/statistics", h.Attendee.Statistics)
	attendees.GET("/export", h.Attendee.Export)
	attendees.DELETE("/:ticketId", h.Attendee.CancelTicket)
	return events
}

func ticketRoutes(h Handlers, g Guards) *DomainGroup {
	ticketing := NewDomainGroup("ticketing", "")

	tickets := ticketing.Group("ticket", "/tickets").Use(chain(g.Auth)...)
	tickets.POST("", h.Ticket.Purchase)
	tickets.POST("/confirm", h.Ticket.Confirm)
	tickets.GET("", h.Ticket.List)
	tickets.GET("/check/:eventId", h.Ticket.Check)
	tickets.GET("/:id", h.Ticket.Get)
	tickets.GET("/:id/pdf", h.Ticket.PDF)

	ticketing.Group("payment", "/payments").Use(chain(g.Auth)...).
		GET("", h.Ticket.ListPayments)

	// signed by Stripe, never by a user token
	ticketing.Group("webhook", "/webhooks").POST("/stripe", h.Webhook.HandleStripeWebhook)
	return ticketing
}

func commentRoutes(h Handlers, g Guards) *DomainGroup {
	comments := NewDomainGroup("comment", "/comments")
	comments.POST("", chain(g.Auth, h.Comment.Create)...)
	comments.GET("/event/:eventId", h.Comment.ListByEvent)
	comments.PUT("/:id", chain(g.Auth, h.Comment.Update)...)
	comments.DELETE("/:id", chain(g.Auth, h.Comment.Delete)...)
	return comments
}

func notificationRoutes(h Handlers, g Guards) *DomainGroup {
	notifications := NewDomainGroup("notification", "/notifications")
	notifications.GET("/ws", chain(g.StreamAuth, h.Notification.Stream)...)
	notifications.GET("", chain(g.Auth, h.Notification.List)...)
	notifications.GET("/unread-count", chain(g.Auth, h.Notification.UnreadCount)...)
	notifications.PUT("/read-all", chain(g.Auth, h.Notification.MarkAllRead)...)
	notifications.PUT("/:id/read", chain(g.Auth, h.Notification.MarkRead)...)
	notifications.DELETE("/:id", chain(g.Auth, h.Notification.Delete)...)
	return notifications
}

func systemRoutes(h Handlers) *DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.GetSystemInfo)
	return system
}
