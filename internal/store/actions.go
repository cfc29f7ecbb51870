package store

import "drivefin/internal/core"

// ActionType is the wire name of an action kind.
type ActionType string

const (
	TypeSetUser          ActionType = "SET_USER"
	TypeSetAuthenticated ActionType = "SET_AUTHENTICATED"
	TypeSetPaidStatus    ActionType = "SET_PAID_STATUS"
	TypeLogout           ActionType = "LOGOUT"

	TypeSetTransactions   ActionType = "SET_TRANSACTIONS"
	TypeAddTransaction    ActionType = "ADD_TRANSACTION"
	TypeUpdateTransaction ActionType = "UPDATE_TRANSACTION"
	TypeDeleteTransaction ActionType = "DELETE_TRANSACTION"

	TypeSetGoals   ActionType = "SET_GOALS"
	TypeAddGoal    ActionType = "ADD_GOAL"
	TypeUpdateGoal ActionType = "UPDATE_GOAL"
	TypeDeleteGoal ActionType = "DELETE_GOAL"

	TypeSetCategories  ActionType = "SET_CATEGORIES"
	TypeAddCategory    ActionType = "ADD_CATEGORY"
	TypeUpdateCategory ActionType = "UPDATE_CATEGORY"
	TypeDeleteCategory ActionType = "DELETE_CATEGORY"

	TypeSetSessions   ActionType = "SET_SESSIONS"
	TypeAddSession    ActionType = "ADD_SESSION"
	TypeUpdateSession ActionType = "UPDATE_SESSION"
	TypeDeleteSession ActionType = "DELETE_SESSION"

	TypeSetLoading  ActionType = "SET_LOADING"
	TypeSetError    ActionType = "SET_ERROR"
	TypeClearErrors ActionType = "CLEAR_ERRORS"

	TypeSetTheme      ActionType = "SET_THEME"
	TypeToggleSidebar ActionType = "TOGGLE_SIDEBAR"
	TypeSetSidebar    ActionType = "SET_SIDEBAR"
)

// Action is a requested state change. The set of actions is closed: only
// the types in this package implement it.
type Action interface {
	Type() ActionType
	action()
}

// Record is any record type held in an AppState collection.
type Record interface {
	core.Transaction | core.Goal | core.Category | core.Session
}

type (
	// SetUser replaces the user; IsAuthenticated follows whether it is nil.
	SetUser struct{ User *core.User }

	SetAuthenticated struct{ Value bool }
	SetPaidStatus    struct{ Value bool }

	// Logout drops the user and every collection and clears all errors.
	// Loading flags, theme and sidebar are kept.
	Logout struct{}

	// SetItems replaces a whole collection.
	SetItems[T Record] struct{ Items []T }
	// AddItem prepends a record to its collection.
	AddItem[T Record] struct{ Item T }
	// UpdateItem replaces the record with the same ID, keeping its position.
	UpdateItem[T Record] struct{ Item T }
	// DeleteItem removes the record with the given ID.
	DeleteItem[T Record] struct{ ID string }

	SetLoading struct {
		Key   Domain
		Value bool
	}

	// SetError stores Message for Key; a nil Message clears it.
	SetError struct {
		Key     Domain
		Message *string
	}

	ClearErrors struct{}

	SetTheme      struct{ Theme Theme }
	ToggleSidebar struct{}
	SetSidebar    struct{ Open bool }

	// Unknown carries an action type this package does not recognise.
	// The reducer returns the state unchanged for it.
	Unknown struct{ Kind ActionType }
)

func (SetUser) Type() ActionType          { return TypeSetUser }
func (SetAuthenticated) Type() ActionType { return TypeSetAuthenticated }
func (SetPaidStatus) Type() ActionType    { return TypeSetPaidStatus }
func (Logout) Type() ActionType           { return TypeLogout }
func (SetLoading) Type() ActionType       { return TypeSetLoading }
func (SetError) Type() ActionType         { return TypeSetError }
func (ClearErrors) Type() ActionType      { return TypeClearErrors }
func (SetTheme) Type() ActionType         { return TypeSetTheme }
func (ToggleSidebar) Type() ActionType    { return TypeToggleSidebar }
func (SetSidebar) Type() ActionType       { return TypeSetSidebar }
func (u Unknown) Type() ActionType        { return u.Kind }

func (SetItems[T]) Type() ActionType   { return ActionType("SET_" + plural[T]()) }
func (AddItem[T]) Type() ActionType    { return ActionType("ADD_" + singular[T]()) }
func (UpdateItem[T]) Type() ActionType { return ActionType("UPDATE_" + singular[T]()) }
func (DeleteItem[T]) Type() ActionType { return ActionType("DELETE_" + singular[T]()) }

func (SetUser) action()          {}
func (SetAuthenticated) action() {}
func (SetPaidStatus) action()    {}
func (Logout) action()           {}
func (SetItems[T]) action()      {}
func (AddItem[T]) action()       {}
func (UpdateItem[T]) action()    {}
func (DeleteItem[T]) action()    {}
func (SetLoading) action()       {}
func (SetError) action()         {}
func (ClearErrors) action()      {}
func (SetTheme) action()         {}
func (ToggleSidebar) action()    {}
func (SetSidebar) action()       {}
func (Unknown) action()          {}

func singular[T Record]() string {
	var zero T
	switch any(zero).(type) {
	case core.Transaction:
		return "TRANSACTION"
	case core.Goal:
		return "GOAL"
	case core.Category:
		return "CATEGORY"
	default:
		return "SESSION"
	}
}

func plural[T Record]() string {
	var zero T
	switch any(zero).(type) {
	case core.Transaction:
		return "TRANSACTIONS"
	case core.Goal:
		return "GOALS"
	case core.Category:
		return "CATEGORIES"
	default:
		return "SESSIONS"
	}
}
