package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRunPostCommit_ContinuesAfterFailures(t *testing.T) {
	var ran []string

	runPostCommit(context.Background(), logrus.Fields{"test": t.Name()},
		PostCommitHook{Name: "panics", Run: func(context.Context) error {
			ran = append(ran, "panics")
			panic("boom")
		}},
		PostCommitHook{Name: "fails", Run: func(context.Context) error {
			ran = append(ran, "fails")
			return errors.New("smtp timeout")
		}},
		PostCommitHook{Name: "nil"},
		PostCommitHook{Name: "ok", Run: func(context.Context) error {
			ran = append(ran, "ok")
			return nil
		}},
	)

	assert.Equal(t, []string{"panics", "fails", "ok"}, ran)
}

func TestRunPostCommit_IgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	cancel()

	var hookErr error
	runPostCommit(ctx, nil, PostCommitHook{Name: "ctx", Run: func(ctx context.Context) error {
		hookErr = ctx.Err()
		return nil
	}})

	assert.NoError(t, hookErr)
}

func TestNotifyHook(t *testing.T) {
	notifier := new(mockNotifier)
	recipient := uuid.New()
	data := map[string]any{"k": "v"}
	notifier.On("Notify", mock.Anything, recipient, "tpl", data).Return(false)

	hook := notifyHook(notifier, recipient, "tpl", data)
	assert.Equal(t, "notify:tpl", hook.Name)
	assert.NoError(t, hook.Run(context.Background()))
	notifier.AssertExpectations(t)

	assert.NoError(t, notifyHook(nil, recipient, "tpl", data).Run(context.Background()))
}
