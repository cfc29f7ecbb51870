package store

import (
	"maps"
	"slices"

	"drivefin/internal/core"
)

// Reduce returns the state that results from applying a to s. It never
// modifies s: every collection or map that changes is copied first.
// Actions it does not recognise leave the state unchanged.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case SetUser:
		s.User = a.User
		s.IsAuthenticated = a.User != nil
	case SetAuthenticated:
		s.IsAuthenticated = a.Value
	case SetPaidStatus:
		s.IsPaid = a.Value
	case Logout:
		s.User = nil
		s.IsAuthenticated = false
		s.IsPaid = false
		s.Transactions = []core.Transaction{}
		s.Goals = []core.Goal{}
		s.Categories = []core.Category{}
		s.Sessions = []core.Session{}
		s.Errors = initialErrors()

	case SetItems[core.Transaction]:
		s.Transactions = cloneItems(a.Items)
	case AddItem[core.Transaction]:
		s.Transactions = prepend(s.Transactions, a.Item)
	case UpdateItem[core.Transaction]:
		s.Transactions = replace(s.Transactions, a.Item, transactionID)
	case DeleteItem[core.Transaction]:
		s.Transactions = remove(s.Transactions, a.ID, transactionID)

	case SetItems[core.Goal]:
		s.Goals = cloneItems(a.Items)
	case AddItem[core.Goal]:
		s.Goals = prepend(s.Goals, a.Item)
	case UpdateItem[core.Goal]:
		s.Goals = replace(s.Goals, a.Item, goalID)
	case DeleteItem[core.Goal]:
		s.Goals = remove(s.Goals, a.ID, goalID)

	case SetItems[core.Category]:
		s.Categories = cloneItems(a.Items)
	case AddItem[core.Category]:
		s.Categories = prepend(s.Categories, a.Item)
	case UpdateItem[core.Category]:
		s.Categories = replace(s.Categories, a.Item, categoryID)
	case DeleteItem[core.Category]:
		s.Categories = remove(s.Categories, a.ID, categoryID)

	case SetItems[core.Session]:
		s.Sessions = cloneItems(a.Items)
	case AddItem[core.Session]:
		s.Sessions = prepend(s.Sessions, a.Item)
	case UpdateItem[core.Session]:
		s.Sessions = replace(s.Sessions, a.Item, sessionID)
	case DeleteItem[core.Session]:
		s.Sessions = remove(s.Sessions, a.ID, sessionID)

	case SetLoading:
		loading := maps.Clone(s.Loading)
		if loading == nil {
			loading = make(map[Domain]bool, 1)
		}
		loading[a.Key] = a.Value
		s.Loading = loading
	case SetError:
		errs := maps.Clone(s.Errors)
		if errs == nil {
			errs = make(map[Domain]*string, 1)
		}
		errs[a.Key] = a.Message
		s.Errors = errs
	case ClearErrors:
		s.Errors = initialErrors()

	case SetTheme:
		s.Theme = a.Theme
	case ToggleSidebar:
		s.SidebarOpen = !s.SidebarOpen
	case SetSidebar:
		s.SidebarOpen = a.Open
	}
	return s
}

func transactionID(t core.Transaction) string { return t.ID }
func goalID(g core.Goal) string               { return g.ID }
func categoryID(c core.Category) string       { return c.ID }
func sessionID(s core.Session) string         { return s.ID }

func cloneItems[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// replace swaps every element whose id matches item's id. The slice is
// returned as-is when nothing matches.
func replace[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	idx := slices.IndexFunc(items, func(v T) bool { return id(v) == key })
	if idx < 0 {
		return items
	}
	out := slices.Clone(items)
	for i := idx; i < len(out); i++ {
		if id(out[i]) == key {
			out[i] = item
		}
	}
	return out
}

func remove[T any](items []T, key string, id func(T) string) []T {
	if !slices.ContainsFunc(items, func(v T) bool { return id(v) == key }) {
		return items
	}
	out := make([]T, 0, len(items))
	for _, v := range items {
		if id(v) != key {
			out = append(out, v)
		}
	}
	return out
}
