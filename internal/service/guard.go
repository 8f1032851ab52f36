package service

import (
	"bytes"
	"fmt"
	"sort"

	"pos-inventory/internal/model"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/logger"
	"pos-inventory/pkg/validator"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   string
}

// Label is what audit columns record for the actor.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return a.UserID.String()
}

func (a Actor) wsActor() *ws.Actor {
	return &ws.Actor{ID: a.UserID.String(), Name: a.Name, Email: a.Email}
}

// Authorize rejects anonymous actors, and when roles are given, actors
// holding none of them. It never touches the store.
func Authorize(actor Actor, roles ...string) error {
	if actor.UserID == uuid.Nil {
		return apperror.Unauthorized("authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperror.Forbidden(fmt.Sprintf("role %q is not allowed to perform this action", actor.Role))
}

func requireAdmin(actor Actor) error {
	return Authorize(actor, model.RoleAdmin)
}

// Notifier receives events after a unit of work has committed.
type Notifier interface {
	Publish(event ws.Event)
}

type noopNotifier struct{}

func (noopNotifier) Publish(ws.Event) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func validate(data interface{}) error {
	if msg := validator.FirstError(data); msg != "" {
		return apperror.Validation(msg)
	}
	return nil
}

// logInternal records failures that surface to the caller as a generic message.
func logInternal(module, funcName, context string, data any, err error) {
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		logger.LogError(module, funcName, context, data, err)
	}
}

// sortedIDs returns the keys of m in byte order, the order row locks are taken in.
func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
