package preload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loader is a receiver with a mix of resolvable and unresolvable methods.
type loader struct {
	calls atomic.Int32
	fail  error
}

func (l *loader) Load() {
	l.calls.Add(1)
}

func (l *loader) LoadWithError() error {
	l.calls.Add(1)
	return l.fail
}

func (l *loader) LoadWithArg(n int) {}

func (l *loader) LoadWithResult() int { return 0 }

func TestNewFunc(t *testing.T) {
	var ran atomic.Int32
	task := NewFunc("warmup", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	assert.Equal(t, "warmup", task.Name())
	assert.NotEqual(t, task.ID(), NewFunc("other", nil).ID())

	err := task.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), ran.Load())
}

func TestNewMethod_Resolves(t *testing.T) {
	recv := &loader{}

	task, err := NewMethod(recv, "Load")
	require.NoError(t, err)
	assert.Equal(t, "Load", task.Name())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, int32(1), recv.calls.Load())
}

func TestNewMethod_ErrorResult(t *testing.T) {
	recv := &loader{fail: errors.New("load failed")}

	task, err := NewMethod(recv, "LoadWithError")
	require.NoError(t, err)

	err = task.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, recv.fail, err)

	// A nil error result is not an execution failure.
	recv.fail = nil
	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, int32(2), recv.calls.Load())
}

func TestNewMethod_ResolutionFailures(t *testing.T) {
	recv := &loader{}

	cases := []struct {
		name   string
		method string
	}{
		{"missing method", "DoesNotExist"},
		{"unexported shape", "load"},
		{"takes arguments", "LoadWithArg"},
		{"non-error result", "LoadWithResult"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewMethod(recv, tc.method)
			assert.Nil(t, task)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoSuchMethod)
		})
	}

	// Resolution happens at registration time, so nothing ran.
	assert.Equal(t, int32(0), recv.calls.Load())
}

func TestNewMethod_NilReceiver(t *testing.T) {
	task, err := NewMethod(nil, "Load")
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrNoSuchMethod)
}
