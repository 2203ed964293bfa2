package routes

import (
	"github.com/arman-y/TutorHubBack/internal/config"
	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/handlers"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/services"
	notifyws "github.com/arman-y/TutorHubBack/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, publisher events.Publisher, notifHub *notifyws.Hub) {
	availabilityRepo := repository.NewAvailabilityRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	slotService := services.NewSlotService(db, availabilityRepo, slotRepo)
	offeringService := services.NewOfferingService(offeringRepo)
	bookingService := services.NewBookingService(
		db, bookingRepo, sessionRepo, offeringRepo, publisher, notifHub,
		cfg.BookingTTL, cfg.PlatformFeePercent,
	)
	sessionService := services.NewSessionService(db, sessionRepo)
	paymentService := services.NewPaymentService(
		db, paymentRepo, payoutRepo, sessionRepo, services.StubGateway{}, publisher, notifHub,
	)
	notificationService := services.NewNotificationService(notificationRepo, notifHub)
	statsService := services.NewStatsService(bookingRepo, sessionRepo)

	availabilityHandler := handlers.NewAvailabilityHandler(slotService)
	offeringHandler := handlers.NewOfferingHandler(offeringService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, notifHub)
	statsHandler := handlers.NewStatsHandler(statsService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	instructors := api.Group("/instructors")
	instructors.Post("/:id/availability", availabilityHandler.CreateAvailability)
	instructors.Get("/:id/availability", availabilityHandler.ListAvailability)
	instructors.Put("/:id/availability/:availabilityId", availabilityHandler.UpdateAvailability)
	instructors.Delete("/:id/availability/:availabilityId", availabilityHandler.DeleteAvailability)
	instructors.Post("/:id/slots/generate", availabilityHandler.GenerateSlots)
	instructors.Get("/:id/slots", availabilityHandler.ListSlots)
	instructors.Get("/:id/bookings/pending", bookingHandler.ListPendingForInstructor)
	instructors.Get("/:id/payouts", paymentHandler.ListPayouts)
	instructors.Get("/:id/stats", statsHandler.GetSessionStats)
	instructors.Get("/:id/stats/earnings", statsHandler.GetEarnings)
	instructors.Get("/:id/stats/popular-slots", statsHandler.GetPopularTimeSlots)

	offerings := api.Group("/offerings")
	offerings.Post("", offeringHandler.CreateOffering)
	offerings.Get("", offeringHandler.ListOfferings)
	offerings.Get("/:id", offeringHandler.GetOffering)
	offerings.Put("/:id", offeringHandler.UpdateOffering)
	offerings.Post("/:id/deactivate", offeringHandler.DeactivateOffering)

	bookings := api.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/accept", bookingHandler.AcceptBooking)
	bookings.Post("/:id/reject", bookingHandler.RejectBooking)
	bookings.Post("/:id/cancel", bookingHandler.CancelBooking)

	sessions := api.Group("/sessions")
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/complete", sessionHandler.CompleteSession)
	sessions.Put("/:id/notes", sessionHandler.UpdateSessionNotes)

	payments := api.Group("/payments")
	payments.Post("/intents", paymentHandler.CreatePaymentIntent)
	payments.Get("/intents/booking/:bookingId", paymentHandler.GetPaymentIntent)
	payments.Put("/intents/:id/status", paymentHandler.UpdatePaymentStatus)
	payments.Post("/refunds", paymentHandler.ProcessRefund)

	payouts := api.Group("/payouts")
	payouts.Post("", paymentHandler.CreatePayout)
	payouts.Put("/:id/status", paymentHandler.UpdatePayoutStatus)

	users := api.Group("/users")
	users.Get("/:userId/notifications", notificationHandler.ListNotifications)
	users.Post("/:userId/notifications/read-all", notificationHandler.MarkAllRead)

	api.Use("/ws/notifications", notificationHandler.WebSocketUpgrade)
	api.Get("/ws/notifications", websocket.New(notificationHandler.HandleWebSocket))
}
