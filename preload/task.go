package preload

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// ErrNoSuchMethod is returned when a name-based registration cannot be
// resolved to a zero-argument method on the receiver.
var ErrNoSuchMethod = errors.New("no matching zero-argument method")

// Task represents a unit of background work to be executed once
// Version: 1.0
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Name returns a human-readable task name used for logging
	Name() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// funcTask binds a closure registered directly as a function value.
type funcTask struct {
	id   uuid.UUID
	name string
	fn   func(ctx context.Context) error
}

// NewFunc creates a Task from a function value. This is the preferred
// registration path: the receiver and operation are captured by the closure,
// so there is no resolution step that can fail.
func NewFunc(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{
		id:   uuid.New(),
		name: name,
		fn:   fn,
	}
}

func (t *funcTask) ID() uuid.UUID { return t.id }

func (t *funcTask) Name() string { return t.name }

func (t *funcTask) Execute(ctx context.Context) error {
	return t.fn(ctx)
}

// methodTask binds an exported method resolved by name on a receiver.
// The receiver reference is not owned by the task and must stay valid
// until the task has executed.
type methodTask struct {
	id       uuid.UUID
	name     string
	receiver any
	call     func() error
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// NewMethod resolves name to an exported method on receiver and returns a
// Task bound to it. The method must take no arguments and return either
// nothing or a single error. Resolution happens here, at registration time,
// so a misconfigured task name is caught before any work is scheduled.
func NewMethod(receiver any, name string) (Task, error) {
	if receiver == nil {
		return nil, fmt.Errorf("%w: %q on nil receiver", ErrNoSuchMethod, name)
	}

	m := reflect.ValueOf(receiver).MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %q on %T", ErrNoSuchMethod, name, receiver)
	}

	mt := m.Type()
	if mt.NumIn() != 0 {
		return nil, fmt.Errorf("%w: %q on %T takes %d argument(s)",
			ErrNoSuchMethod, name, receiver, mt.NumIn())
	}

	var call func() error
	switch {
	case mt.NumOut() == 0:
		call = func() error {
			m.Call(nil)
			return nil
		}
	case mt.NumOut() == 1 && mt.Out(0) == errType:
		call = func() error {
			out := m.Call(nil)
			if err, ok := out[0].Interface().(error); ok && err != nil {
				return err
			}
			return nil
		}
	default:
		return nil, fmt.Errorf("%w: %q on %T has unsupported result types",
			ErrNoSuchMethod, name, receiver)
	}

	return &methodTask{
		id:       uuid.New(),
		name:     name,
		receiver: receiver,
		call:     call,
	}, nil
}

func (t *methodTask) ID() uuid.UUID { return t.id }

func (t *methodTask) Name() string { return t.name }

func (t *methodTask) Execute(ctx context.Context) error {
	return t.call()
}
