package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/logger"
)

// Logger получает сообщения о панике и ошибках фоновых задач.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Runner запускает фоновые горутины так, чтобы panic не ронял процесс.
type Runner struct {
	log Logger
}

// NewRunner создаёт Runner с указанным логгером.
func NewRunner(log Logger) *Runner {
	return &Runner{log: log}
}

func (r *Runner) recovered(where string) {
	if p := recover(); p != nil {
		r.log.Errorf("goroutine %s: panic: %v\n%s", where, p, debug.Stack())
	}
}

// Go запускает fn в отдельной горутине.
func (r *Runner) Go(fn func()) {
	go func() {
		defer r.recovered("go")
		fn()
	}()
}

// GoCtx запускает fn с контекстом в отдельной горутине.
func (r *Runner) GoCtx(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer r.recovered("go-ctx")
		fn(ctx)
	}()
}

// Every вызывает task каждые interval, пока ctx не отменён.
// Ошибка или panic одного запуска логируется и не останавливает цикл.
// При interval <= 0 задача не запускается.
func (r *Runner) Every(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	if interval <= 0 {
		return
	}

	r.GoCtx(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := Recover(func() error { return task(ctx) }); err != nil {
					r.log.Errorf("goroutine %s: %v", name, err)
				}
			}
		}
	})
}

// Recover выполняет fn в текущей горутине и превращает panic в ошибку.
func Recover(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

type logrusLogger struct{}

func (logrusLogger) Errorf(format string, args ...interface{}) {
	logger.Entry(logrus.Fields{"component": "goroutine"}).Errorf(format, args...)
}

// Default пишет в общий логгер приложения.
var Default = NewRunner(logrusLogger{})

// SafeGo запускает fn через Default.
func SafeGo(fn func()) {
	Default.Go(fn)
}

// SafeGoWithContext запускает fn с контекстом через Default.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	Default.GoCtx(ctx, fn)
}

// Every запускает периодическую задачу через Default.
func Every(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	Default.Every(ctx, name, interval, task)
}
