// Package store keeps the application state snapshot and the reducer that
// derives each new snapshot from the previous one and an Action.
package store

import "drivefin/internal/core"

// Domain names one of the data areas that has its own loading flag and
// error slot.
type Domain string

const (
	DomainAuth         Domain = "auth"
	DomainTransactions Domain = "transactions"
	DomainGoals        Domain = "goals"
	DomainCategories   Domain = "categories"
	DomainSessions     Domain = "sessions"
	DomainPayments     Domain = "payments"
)

// Domains lists every Domain in a fixed order.
var Domains = []Domain{
	DomainAuth,
	DomainTransactions,
	DomainGoals,
	DomainCategories,
	DomainSessions,
	DomainPayments,
}

func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// AppState is the single root snapshot. A snapshot is never modified after
// it is produced; treat every slice and map in it as read-only.
type AppState struct {
	User            *core.User `json:"user"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	IsPaid          bool       `json:"isPaid"`

	Transactions []core.Transaction `json:"transactions"`
	Goals        []core.Goal        `json:"goals"`
	Categories   []core.Category    `json:"categories"`
	Sessions     []core.Session     `json:"sessions"`

	Loading map[Domain]bool    `json:"loading"`
	Errors  map[Domain]*string `json:"errors"`

	Theme       Theme `json:"theme"`
	SidebarOpen bool  `json:"sidebarOpen"`
}

// InitialState returns the state the application starts with: no user,
// empty collections, nothing loading, no errors, dark theme, sidebar closed.
func InitialState() AppState {
	return AppState{
		Transactions: []core.Transaction{},
		Goals:        []core.Goal{},
		Categories:   []core.Category{},
		Sessions:     []core.Session{},
		Loading:      initialLoading(),
		Errors:       initialErrors(),
		Theme:        ThemeDark,
	}
}

func initialLoading() map[Domain]bool {
	m := make(map[Domain]bool, len(Domains))
	for _, d := range Domains {
		m[d] = false
	}
	return m
}

func initialErrors() map[Domain]*string {
	m := make(map[Domain]*string, len(Domains))
	for _, d := range Domains {
		m[d] = nil
	}
	return m
}

// Error returns the error message recorded for d, if any.
func (s AppState) Error(d Domain) (string, bool) {
	if msg := s.Errors[d]; msg != nil {
		return *msg, true
	}
	return "", false
}
