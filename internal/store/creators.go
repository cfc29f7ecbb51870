package store

import "drivefin/internal/core"

// Convenience constructors for the collection actions.

func SetTransactions(items []core.Transaction) Action { return SetItems[core.Transaction]{Items: items} }
func AddTransaction(t core.Transaction) Action        { return AddItem[core.Transaction]{Item: t} }
func UpdateTransaction(t core.Transaction) Action     { return UpdateItem[core.Transaction]{Item: t} }
func DeleteTransaction(id string) Action              { return DeleteItem[core.Transaction]{ID: id} }

func SetGoals(items []core.Goal) Action { return SetItems[core.Goal]{Items: items} }
func AddGoal(g core.Goal) Action        { return AddItem[core.Goal]{Item: g} }
func UpdateGoal(g core.Goal) Action     { return UpdateItem[core.Goal]{Item: g} }
func DeleteGoal(id string) Action       { return DeleteItem[core.Goal]{ID: id} }

func SetCategories(items []core.Category) Action { return SetItems[core.Category]{Items: items} }
func AddCategory(c core.Category) Action         { return AddItem[core.Category]{Item: c} }
func UpdateCategory(c core.Category) Action      { return UpdateItem[core.Category]{Item: c} }
func DeleteCategory(id string) Action            { return DeleteItem[core.Category]{ID: id} }

func SetSessions(items []core.Session) Action { return SetItems[core.Session]{Items: items} }
func AddSession(s core.Session) Action        { return AddItem[core.Session]{Item: s} }
func UpdateSession(s core.Session) Action     { return UpdateItem[core.Session]{Item: s} }
func DeleteSession(id string) Action          { return DeleteItem[core.Session]{ID: id} }

// Fail records msg as the error for key.
func Fail(key Domain, msg string) Action { return SetError{Key: key, Message: &msg} }

// Recover clears the error for key.
func Recover(key Domain) Action { return SetError{Key: key} }
