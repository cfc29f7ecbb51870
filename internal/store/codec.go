package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"drivefin/internal/core"
)

// ErrMalformedAction is returned when an action document cannot be decoded.
var ErrMalformedAction = errors.New("malformed action")

// ErrUnknownDomain is returned for a loading or error action whose key is
// not one of Domains.
var ErrUnknownDomain = errors.New("unknown domain")

type envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type keyedFlag struct {
	Key   Domain `json:"key"`
	Value bool   `json:"value"`
}

type keyedError struct {
	Key   Domain  `json:"key"`
	Value *string `json:"value"`
}

// DecodeAction parses the {"type": ..., "payload": ...} form of an action.
// A type this package does not know decodes to Unknown.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedAction)
	}

	p := env.Payload
	switch env.Type {
	case TypeSetUser:
		var u *core.User
		return decodeInto(p, &u, func() Action { return SetUser{User: u} })
	case TypeSetAuthenticated:
		var v bool
		return decodeInto(p, &v, func() Action { return SetAuthenticated{Value: v} })
	case TypeSetPaidStatus:
		var v bool
		return decodeInto(p, &v, func() Action { return SetPaidStatus{Value: v} })
	case TypeLogout:
		return Logout{}, nil

	case TypeSetTransactions:
		return decodeSet[core.Transaction](p)
	case TypeAddTransaction:
		return decodeAdd[core.Transaction](p)
	case TypeUpdateTransaction:
		return decodeUpdate[core.Transaction](p)
	case TypeDeleteTransaction:
		return decodeDelete[core.Transaction](p)

	case TypeSetGoals:
		return decodeSet[core.Goal](p)
	case TypeAddGoal:
		return decodeAdd[core.Goal](p)
	case TypeUpdateGoal:
		return decodeUpdate[core.Goal](p)
	case TypeDeleteGoal:
		return decodeDelete[core.Goal](p)

	case TypeSetCategories:
		return decodeSet[core.Category](p)
	case TypeAddCategory:
		return decodeAdd[core.Category](p)
	case TypeUpdateCategory:
		return decodeUpdate[core.Category](p)
	case TypeDeleteCategory:
		return decodeDelete[core.Category](p)

	case TypeSetSessions:
		return decodeSet[core.Session](p)
	case TypeAddSession:
		return decodeAdd[core.Session](p)
	case TypeUpdateSession:
		return decodeUpdate[core.Session](p)
	case TypeDeleteSession:
		return decodeDelete[core.Session](p)

	case TypeSetLoading:
		var kf keyedFlag
		if err := decodeKeyed(p, &kf, func() Domain { return kf.Key }); err != nil {
			return nil, err
		}
		return SetLoading{Key: kf.Key, Value: kf.Value}, nil
	case TypeSetError:
		var ke keyedError
		if err := decodeKeyed(p, &ke, func() Domain { return ke.Key }); err != nil {
			return nil, err
		}
		return SetError{Key: ke.Key, Message: ke.Value}, nil
	case TypeClearErrors:
		return ClearErrors{}, nil

	case TypeSetTheme:
		var t Theme
		return decodeInto(p, &t, func() Action { return SetTheme{Theme: t} })
	case TypeToggleSidebar:
		return ToggleSidebar{}, nil
	case TypeSetSidebar:
		var v bool
		return decodeInto(p, &v, func() Action { return SetSidebar{Open: v} })
	}
	return Unknown{Kind: env.Type}, nil
}

// EncodeAction renders a in the form DecodeAction accepts.
func EncodeAction(a Action) ([]byte, error) {
	var payload any
	switch a := a.(type) {
	case SetUser:
		payload = a.User
	case SetAuthenticated:
		payload = a.Value
	case SetPaidStatus:
		payload = a.Value
	case SetItems[core.Transaction]:
		payload = cloneItems(a.Items)
	case AddItem[core.Transaction]:
		payload = a.Item
	case UpdateItem[core.Transaction]:
		payload = a.Item
	case DeleteItem[core.Transaction]:
		payload = a.ID
	case SetItems[core.Goal]:
		payload = cloneItems(a.Items)
	case AddItem[core.Goal]:
		payload = a.Item
	case UpdateItem[core.Goal]:
		payload = a.Item
	case DeleteItem[core.Goal]:
		payload = a.ID
	case SetItems[core.Category]:
		payload = cloneItems(a.Items)
	case AddItem[core.Category]:
		payload = a.Item
	case UpdateItem[core.Category]:
		payload = a.Item
	case DeleteItem[core.Category]:
		payload = a.ID
	case SetItems[core.Session]:
		payload = cloneItems(a.Items)
	case AddItem[core.Session]:
		payload = a.Item
	case UpdateItem[core.Session]:
		payload = a.Item
	case DeleteItem[core.Session]:
		payload = a.ID
	case SetLoading:
		payload = keyedFlag{Key: a.Key, Value: a.Value}
	case SetError:
		payload = keyedError{Key: a.Key, Value: a.Message}
	case SetTheme:
		payload = a.Theme
	case SetSidebar:
		payload = a.Open
	}

	env := envelope{Type: a.Type()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func decodeInto[V any](raw json.RawMessage, dst *V, build func() Action) (Action, error) {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
	}
	return build(), nil
}

func decodeKeyed[V any](raw json.RawMessage, dst *V, key func() Domain) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformedAction)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	if k := key(); !k.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDomain, k)
	}
	return nil
}

func decodeSet[T Record](raw json.RawMessage) (Action, error) {
	var items []T
	return decodeInto(raw, &items, func() Action { return SetItems[T]{Items: cloneItems(items)} })
}

func decodeAdd[T Record](raw json.RawMessage) (Action, error) {
	var item T
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformedAction)
	}
	return decodeInto(raw, &item, func() Action { return AddItem[T]{Item: item} })
}

func decodeUpdate[T Record](raw json.RawMessage) (Action, error) {
	var item T
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformedAction)
	}
	return decodeInto(raw, &item, func() Action { return UpdateItem[T]{Item: item} })
}

// decodeDelete accepts the id either as a JSON string or a number.
func decodeDelete[T Record](raw json.RawMessage) (Action, error) {
	id, err := decodeID(raw)
	if err != nil {
		return nil, err
	}
	return DeleteItem[T]{ID: id}, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: missing id", ErrMalformedAction)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: id must be a string or number", ErrMalformedAction)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
