package models

// The string kinds below have a closed set of well-known values, but stored
// rows may hold anything: parsing never fails, Known reports membership,
// and Describe renders unknown values as "other: <text>".

// Role is a profile's platform role.
type Role string

const (
	RoleFactoryAdmin Role = "factory_admin"
	RoleManager      Role = "manager"
	RoleWorker       Role = "worker"
)

// Valid reports whether r is one of the three platform roles. Unlike the
// activity kinds, roles gate authorization and have no fallback.
func (r Role) Valid() bool {
	switch r {
	case RoleFactoryAdmin, RoleManager, RoleWorker:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityPageView     ActivityType = "Page View"
	ActivityLogin        ActivityType = "Login"
	ActivityLogout       ActivityType = "Logout"
	ActivityTaskComplete ActivityType = "Task Complete"
	ActivityBreak        ActivityType = "Break"
)

func (a ActivityType) Known() bool {
	switch a {
	case ActivityPageView, ActivityLogin, ActivityLogout, ActivityTaskComplete, ActivityBreak:
		return true
	}
	return false
}

func (a ActivityType) Describe() string {
	return describe(string(a), a.Known())
}

type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusInactive ActivityStatus = "inactive"
	StatusBreak    ActivityStatus = "break"
)

func (s ActivityStatus) Known() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBreak:
		return true
	}
	return false
}

func (s ActivityStatus) Describe() string {
	return describe(string(s), s.Known())
}

type FeedbackCategory string

const (
	CategoryWorkEnvironment FeedbackCategory = "Work Environment"
	CategoryManagement      FeedbackCategory = "Management"
	CategorySafety          FeedbackCategory = "Safety"
	CategoryFacilities      FeedbackCategory = "Facilities"
	CategoryGeneral         FeedbackCategory = "General"
)

// ParseFeedbackCategory maps empty input to General.
func ParseFeedbackCategory(s string) FeedbackCategory {
	if s == "" {
		return CategoryGeneral
	}
	return FeedbackCategory(s)
}

func (c FeedbackCategory) Known() bool {
	switch c {
	case CategoryWorkEnvironment, CategoryManagement, CategorySafety, CategoryFacilities, CategoryGeneral:
		return true
	}
	return false
}

func (c FeedbackCategory) Describe() string {
	return describe(string(c), c.Known())
}

func describe(value string, known bool) string {
	if known || value == "" {
		return value
	}
	return "other: " + value
}
