package async

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/herald/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine detached from the cancellation of ctx.
// The logger in ctx is kept and tagged with the task name. Panics are recovered and logged;
// errors go through errutil.Handle.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	newCtx := detach(ctx, task)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async task",
					slog.String("recover", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := handler(newCtx); err != nil {
			errutil.Handle(newCtx, "async task failed", err)
		}
	}()
}

// detach returns a background context that carries the logger of ctx
func detach(ctx context.Context, task string) context.Context {
	logger := ctxlog.From(ctx).With(slog.String("task", task))
	return ctxlog.With(context.Background(), logger)
}
