package types

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"

	RequestIDHeader = "X-Request-ID"

	TokenTypeBearer = "bearer"

	DefaultCategoryColor = "#3b82f6"
)

// Resource names carried by realtime refresh events.
const (
	ResourceTasks      = "tasks"
	ResourceCategories = "categories"
)

type DefaultCategory struct {
	Name  string
	Color string
}

// DefaultCategories are seeded for every new account.
var DefaultCategories = []DefaultCategory{
	{Name: "Praca", Color: "#3b82f6"},
	{Name: "Dom", Color: "#10b981"},
	{Name: "Hobby", Color: "#f59e0b"},
	{Name: "Nauka", Color: "#ef4444"},
}
