package models

type TopicType string

const (
	TopicTypeFixed    TopicType = "fixed"
	TopicTypeFlexible TopicType = "flexible"
)

type SessionType string

const (
	SessionTypeIndividual SessionType = "individual"
	SessionTypeGroup      SessionType = "group"
)

type SessionFormat string

const (
	SessionFormatOnline  SessionFormat = "online"
	SessionFormatOffline SessionFormat = "offline"
	SessionFormatHybrid  SessionFormat = "hybrid"
)

type CancellationPolicy string

const (
	CancellationFlexible CancellationPolicy = "flexible"
	CancellationModerate CancellationPolicy = "moderate"
	CancellationStrict   CancellationPolicy = "strict"
)

type BookingMode string

const (
	BookingModeInstant BookingMode = "instant"
	BookingModeRequest BookingMode = "request"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// Terminal reports whether a booking status can never change again.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusExpired:
		return true
	default:
		return false
	}
}

type BookingPriority string

const (
	BookingPriorityNormal BookingPriority = "normal"
	BookingPriorityHigh   BookingPriority = "high"
)

type BookingPaymentStatus string

const (
	BookingPaymentUnpaid   BookingPaymentStatus = "unpaid"
	BookingPaymentPaid     BookingPaymentStatus = "paid"
	BookingPaymentRefunded BookingPaymentStatus = "refunded"
)

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

type PaymentIntentStatus string

const (
	PaymentIntentRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	PaymentIntentProcessing            PaymentIntentStatus = "processing"
	PaymentIntentSucceeded             PaymentIntentStatus = "succeeded"
	PaymentIntentFailed                PaymentIntentStatus = "failed"
	PaymentIntentRefunded              PaymentIntentStatus = "refunded"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingAccepted  NotificationType = "booking_accepted"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingExpired   NotificationType = "booking_expired"
	NotificationSessionCompleted NotificationType = "session_completed"
	NotificationPayoutPaid       NotificationType = "payout_paid"
)
