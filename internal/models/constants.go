package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PackageNone    = "none"
	PackageBasic   = "basic"
	PackagePremium = "premium"
	PackageLuxury  = "luxury"
)

// DecorationPrices is the fixed add-on price table. Costs are snapshotted
// into bookings at creation time, so later edits here never change an
// existing booking's total.
var DecorationPrices = map[string]float64{
	PackageNone:    0,
	PackageBasic:   150,
	PackagePremium: 350,
	PackageLuxury:  750,
}

// DecorationPackageNames maps package keys to display names.
var DecorationPackageNames = map[string]string{
	PackageNone:    "No Decoration",
	PackageBasic:   "Basic Package",
	PackagePremium: "Premium Package",
	PackageLuxury:  "Luxury Package",
}

// EventCategories is the closed category enumeration. Unknown values are
// normalized to CategoryOther.
var EventCategories = []string{
	"conference", "workshop", "concert", "sports", "exhibition",
	"technology", "marketing", "sustainability", "leadership",
	"finance", "healthcare", CategoryOther,
}

const CategoryOther = "other"

const (
	// ResetTokenTTL окно действия токена сброса пароля
	ResetTokenTTL = 10 * 60 // 10 минут в секундах

	// OAuthStateTTL время жизни state-параметра OAuth в Redis
	OAuthStateTTL = 10 * 60

	// WorkerQueueSize размер очереди воркера уведомлений
	WorkerQueueSize = 1000

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах
)

// IsValidDecorationPackage reports whether pkg is a known package key.
func IsValidDecorationPackage(pkg string) bool {
	_, ok := DecorationPrices[pkg]
	return ok
}

// NormalizeCategory returns the category itself when known, "other" otherwise.
func NormalizeCategory(category string) string {
	for _, c := range EventCategories {
		if c == category {
			return c
		}
	}
	return CategoryOther
}
