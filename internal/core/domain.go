package core

import (
	"errors"
	"strings"
	"time"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

const (
	CategoryEmergency  GoalCategory = "emergency"
	CategoryInvestment GoalCategory = "investment"
	CategoryPurchase   GoalCategory = "purchase"
	CategoryTravel     GoalCategory = "travel"
	CategoryEducation  GoalCategory = "education"
	CategoryHealth     GoalCategory = "health"
	CategoryOther      GoalCategory = "other"
)

const (
	Income  EntryKind = "income"
	Expense EntryKind = "expense"
)

const (
	SessionWork     SessionKind = "work"
	SessionStudy    SessionKind = "study"
	SessionPersonal SessionKind = "personal"
)

type (
	GoalStatus   string
	GoalCategory string
	EntryKind    string
	SessionKind  string

	Goal struct {
		ID           string       `json:"id"`
		Title        string       `json:"title"`
		Description  string       `json:"description,omitempty"`
		TargetValue  float64      `json:"targetValue"`
		CurrentValue float64      `json:"currentValue"`
		Deadline     Date         `json:"deadline"`
		Category     GoalCategory `json:"category"`
		Status       GoalStatus   `json:"status"`
		CreatedAt    time.Time    `json:"createdAt"`
		UpdatedAt    time.Time    `json:"updatedAt"`
	}

	Transaction struct {
		ID          string    `json:"id"`
		UserID      string    `json:"userId,omitempty"`
		Kind        EntryKind `json:"kind"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	Category struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId,omitempty"`
		Name      string    `json:"name"`
		Kind      EntryKind `json:"kind"`
		Color     string    `json:"color"`
		Icon      string    `json:"icon,omitempty"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Session is a tracked work (or study/personal) shift.
	Session struct {
		ID              string      `json:"id"`
		UserID          string      `json:"userId,omitempty"`
		Kind            SessionKind `json:"kind"`
		Description     string      `json:"description,omitempty"`
		StartedAt       time.Time   `json:"startedAt"`
		EndedAt         *time.Time  `json:"endedAt,omitempty"`
		DurationMinutes *int        `json:"durationMinutes,omitempty"`
		Active          bool        `json:"active"`
		CreatedAt       time.Time   `json:"createdAt"`
		UpdatedAt       time.Time   `json:"updatedAt"`
	}

	User struct {
		ID            string     `json:"id"`
		Username      string     `json:"username"`
		Email         string     `json:"email,omitempty"`
		FullName      string     `json:"fullName,omitempty"`
		IsPaid        bool       `json:"isPaid"`
		PlanStatus    string     `json:"planStatus"`
		TrialEndsAt   *time.Time `json:"trialEndsAt,omitempty"`
		PaymentStatus string     `json:"paymentStatus"`
	}
)

var (
	ErrEmptyTitle        = errors.New("empty title")
	ErrInvalidTarget     = errors.New("target value must be greater than zero")
	ErrNegativeCurrent   = errors.New("current value cannot be negative")
	ErrCurrentOverTarget = errors.New("current value cannot exceed target value")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
	ErrEmptyName         = errors.New("empty name")
	ErrMissingDate       = errors.New("date is required")
	ErrEndBeforeStart    = errors.New("end must not be before start")
)

// GoalCategories lists every goal category in display order.
var GoalCategories = []GoalCategory{
	CategoryEmergency,
	CategoryInvestment,
	CategoryPurchase,
	CategoryTravel,
	CategoryEducation,
	CategoryHealth,
	CategoryOther,
}

// GoalStatuses lists every goal status in display order.
var GoalStatuses = []GoalStatus{GoalActive, GoalCompleted, GoalPaused}

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused:
		return true
	}
	return false
}

func (c GoalCategory) Valid() bool {
	for _, known := range GoalCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (k EntryKind) Valid() bool {
	return k == Income || k == Expense
}

func (k SessionKind) Valid() bool {
	switch k {
	case SessionWork, SessionStudy, SessionPersonal:
		return true
	}
	return false
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetValue <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentValue < 0 {
		return ErrNegativeCurrent
	}
	if g.CurrentValue > g.TargetValue {
		return ErrCurrentOverTarget
	}
	if g.Deadline.IsZero() {
		return ErrMissingDate
	}
	if !g.Category.Valid() {
		return ErrInvalidCategory
	}
	if !g.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLength
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (s Session) Validate() error {
	if !s.Kind.Valid() {
		return ErrInvalidKind
	}
	if s.StartedAt.IsZero() {
		return ErrMissingDate
	}
	if s.EndedAt != nil && s.EndedAt.Before(s.StartedAt) {
		return ErrEndBeforeStart
	}
	return nil
}

// IsSubscribed reports whether the user may use paid features at now: a paid
// account, a running trial or an active plan all qualify.
func IsSubscribed(u User, now time.Time) bool {
	if u.IsPaid {
		return true
	}
	if u.TrialEndsAt != nil && !now.After(*u.TrialEndsAt) {
		return true
	}
	return u.PlanStatus == "active"
}
