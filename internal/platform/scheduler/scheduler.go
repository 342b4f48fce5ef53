package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

// Job は定期実行される処理です。
type Job func(ctx context.Context) error

type entry struct {
	name string
	spec string
	job  Job
}

// Scheduler は robfig/cron を用いて登録済みのジョブを定期実行します。
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	entries []entry
	started bool
	initial sync.WaitGroup
	recover cron.JobWrapper
}

// New は Scheduler を生成します。l が nil の場合はグローバルロガーを利用します。
func New(l *slog.Logger) *Scheduler {
	if l == nil {
		l = logger.Get()
	}
	cl := cronLogger{l: l}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  l,
		recover: cron.Recover(cl),
	}
}

// Register はジョブを登録します。spec は cron 式または "@every 1m" 形式です。
func (s *Scheduler) Register(name, spec string, job Job) error {
	if job == nil {
		return fmt.Errorf("scheduler: job %s is nil", name)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler: cannot register %s after start", name)
	}
	s.entries = append(s.entries, entry{name: name, spec: spec, job: job})
	return nil
}

// Start は登録済みジョブをスケジュールし、起動直後に一度ずつ実行します。
// ctx はジョブ実行時に渡されます。
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	for _, e := range s.entries {
		run := s.wrap(ctx, e)
		if _, err := s.cron.AddFunc(e.spec, run); err != nil {
			return fmt.Errorf("scheduler: add %s: %w", e.name, err)
		}
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("scheduler started", "jobs", len(s.entries))

	// 初回実行は cron のチェーンを通らないため Recover を個別に適用します。
	for _, e := range s.entries {
		job := cron.NewChain(s.recover).Then(cron.FuncJob(s.wrap(ctx, e)))
		s.initial.Add(1)
		go func() {
			defer s.initial.Done()
			job.Run()
		}()
	}
	return nil
}

// Stop はスケジューラーを停止し、実行中のジョブの完了を待ちます。
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

func (s *Scheduler) wrap(ctx context.Context, e entry) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		logger.JobLog(s.logger, e.name, e.job(ctx))
	}
}

// cronLogger は cron.Logger を slog へ橋渡しします。
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
