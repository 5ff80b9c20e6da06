package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/goroutine"
	"github.com/ignatzorin/engagement-backend/internal/logger"
)

// PostCommitHook выполняется после фиксации основной транзакции.
type PostCommitHook struct {
	Name string
	Run  func(ctx context.Context) error
}

// runPostCommit выполняет хуки по очереди. Ошибка или panic одного хука
// логируется и не мешает остальным; результат основной операции не меняется.
// Хуки получают контекст без отмены, чтобы завершиться после ответа клиенту.
func runPostCommit(ctx context.Context, fields logrus.Fields, hooks ...PostCommitHook) {
	hookCtx := context.WithoutCancel(ctx)

	for _, hook := range hooks {
		if hook.Run == nil {
			continue
		}
		h := hook
		if err := goroutine.Recover(func() error { return h.Run(hookCtx) }); err != nil {
			logger.Entry(fields).WithField("hook", h.Name).WithError(err).Warn("post-commit hook failed")
		}
	}
}

// notifyHook оборачивает отправку уведомления в хук.
func notifyHook(notifier Notifier, recipient uuid.UUID, template string, data map[string]any) PostCommitHook {
	return PostCommitHook{
		Name: "notify:" + template,
		Run: func(ctx context.Context) error {
			if notifier == nil {
				return nil
			}
			if !notifier.Notify(ctx, recipient, template, data) {
				logger.Entry(logrus.Fields{"recipient": recipient, "template": template}).Debug("уведомление не доставлено")
			}
			return nil
		},
	}
}
