package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Init はグローバルロガーを初期化します。
// env が "development" の場合はテキスト形式、それ以外は JSON 形式で出力します。
func Init(env string) *slog.Logger {
	return InitWithWriter(env, os.Stdout)
}

// InitWithWriter は出力先を指定してグローバルロガーを初期化します。
func InitWithWriter(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// Get はグローバルロガーを返します。
func Get() *slog.Logger {
	return slog.Default()
}

// HTTPLog は HTTP リクエストの処理結果を記録します。
func HTTPLog(l *slog.Logger, method, path string, status int, duration time.Duration) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "http request",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}

// JobLog は定期ジョブの実行結果を記録します。
func JobLog(l *slog.Logger, job string, err error) {
	if err != nil {
		l.Error("scheduled job failed", "job", job, "error", err.Error())
		return
	}
	l.Debug("scheduled job completed", "job", job)
}
