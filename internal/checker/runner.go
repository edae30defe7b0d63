package checker

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/k2wGG/Check-bot/internal/accounts"
	"github.com/k2wGG/Check-bot/internal/config"
	"github.com/k2wGG/Check-bot/internal/console"
	"github.com/k2wGG/Check-bot/internal/identity"
	"github.com/k2wGG/Check-bot/internal/logbus"
	"github.com/k2wGG/Check-bot/internal/model"
	"github.com/k2wGG/Check-bot/internal/notify"
	"github.com/k2wGG/Check-bot/internal/provider"
	"github.com/k2wGG/Check-bot/internal/store/sqlite"
)

const bannerTitle = "FUNCTOR PROTOCOL - NODE AUTO CHECK-IN"

type Options struct {
	Config   config.Config
	Provider provider.Provider
	Bus      *logbus.Bus
	Store    *sqlite.Store    // optional
	Printer  *console.Printer // optional
	Notifier notify.Notifier  // optional
}

// Runner walks the accounts file strictly sequentially, runs the
// cooldown policy per credential and sleeps out the cycle. Accounts are
// paced by a rate limiter instead of bare sleeps.
type Runner struct {
	cfg      config.Config
	provider provider.Provider
	bus      *logbus.Bus
	store    *sqlite.Store
	printer  *console.Printer
	notifier notify.Notifier
	limiter  *rate.Limiter

	now func() time.Time
}

func New(opts Options) *Runner {
	return &Runner{
		cfg:      opts.Config,
		provider: opts.Provider,
		bus:      opts.Bus,
		store:    opts.Store,
		printer:  opts.Printer,
		notifier: opts.Notifier,
		limiter:  rate.NewLimiter(rate.Every(opts.Config.Scheduler.AccountPause()), 1),
		now:      time.Now,
	}
}

// Run loops forever until the context is cancelled. A failed cycle is
// logged and the next one still runs.
func (r *Runner) Run(ctx context.Context) error {
	for cycle := 1; ; cycle++ {
		if err := r.runCycle(ctx, cycle); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.bus.Error("cycle failed", map[string]any{"cycle": cycle, "error": err.Error()})
		}
		if r.notifier != nil {
			r.notifier.CycleDone(ctx)
		}
		if err := r.sleepCycle(ctx); err != nil {
			return err
		}
	}
}

func (r *Runner) runCycle(ctx context.Context, cycle int) error {
	lines, err := accounts.Load(r.cfg.Accounts.Path)
	if err != nil {
		return err
	}

	if r.printer != nil {
		r.printer.Banner(bannerTitle)
	}
	r.bus.Info("cycle started", map[string]any{"cycle": cycle, "accounts": len(lines)})

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		cred, err := accounts.Parse(line)
		if err != nil {
			r.bus.Warn("invalid credential line, skipped", map[string]any{"line": accounts.MaskToken(line)})
			r.record(ctx, model.CheckinRecord{Status: model.StatusInvalid})
			continue
		}
		r.processAccount(ctx, cred)
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	r.bus.Info("cycle finished", map[string]any{"cycle": cycle})
	return nil
}

func (r *Runner) processAccount(ctx context.Context, cred model.Credential) {
	if cred.IsToken() {
		r.processToken(ctx, cred.Token)
		return
	}
	r.processEmail(ctx, cred)
}

func (r *Runner) processToken(ctx context.Context, token string) {
	id, err := identity.Decode(token)
	if err != nil || !id.Complete() {
		fields := map[string]any{"token": accounts.MaskToken(token)}
		if err != nil {
			fields["error"] = err.Error()
		}
		r.bus.Warn("token undecodable, skipped", fields)
		r.record(ctx, model.CheckinRecord{Status: model.StatusInvalid})
		return
	}

	masked := accounts.MaskEmail(id.Email)
	r.bus.Info("account", map[string]any{"email": masked})

	if id.Expired(r.now()) {
		r.bus.Warn("token expired", map[string]any{
			"email":   masked,
			"expired": id.ExpiresAt.Format(time.RFC3339),
		})
		r.record(ctx, model.CheckinRecord{Email: id.Email, Subject: id.Subject, Status: model.StatusExpired})
		return
	}
	r.bus.Info("token active", map[string]any{
		"email":   masked,
		"expires": id.ExpiresAt.Format(time.RFC3339),
	})

	r.manageCheckin(ctx, token, id)
}

func (r *Runner) processEmail(ctx context.Context, cred model.Credential) {
	masked := accounts.MaskEmail(cred.Email)
	r.bus.Info("account", map[string]any{"email": masked})

	token, err := r.provider.SignIn(ctx, cred.Email, cred.Password)
	if err != nil {
		r.bus.Warn("sign-in failed", map[string]any{"email": masked, "error": err.Error()})
		r.record(ctx, model.CheckinRecord{Email: cred.Email, Status: model.StatusSignInFailed})
		return
	}

	id, err := identity.Decode(token)
	if err != nil || id.Subject == "" {
		r.bus.Warn("sign-in token undecodable", map[string]any{"email": masked})
		r.record(ctx, model.CheckinRecord{Email: cred.Email, Status: model.StatusInvalid})
		return
	}
	if id.Email == "" {
		id.Email = cred.Email
	}

	r.manageCheckin(ctx, token, id)
}

func (r *Runner) manageCheckin(ctx context.Context, token string, id identity.Identity) {
	masked := accounts.MaskEmail(id.Email)

	info, err := r.provider.UserInfo(ctx, token)
	if err != nil {
		r.bus.Warn("user info unavailable", map[string]any{"email": masked, "error": err.Error()})
		r.record(ctx, model.CheckinRecord{Email: id.Email, Subject: id.Subject, Status: model.StatusStatusFailed})
		return
	}
	r.bus.Info("balance", map[string]any{"email": masked, "points": info.TokenBalance})

	dec := Evaluate(info.LastCheckin, r.now())
	if !dec.Due {
		r.bus.Info("already checked in", map[string]any{
			"email":     masked,
			"next":      dec.Next.Format("02-01-2006 15:04:05 MST"),
			"remaining": console.FormatDuration(dec.Remaining),
		})
		r.record(ctx, model.CheckinRecord{
			Email:   id.Email,
			Subject: id.Subject,
			Balance: info.TokenBalance,
			Status:  model.StatusCooldown,
		})
		return
	}

	result, err := r.provider.CheckIn(ctx, token, id.Subject)
	if err != nil {
		r.bus.Warn("check-in failed", map[string]any{"email": masked, "error": err.Error()})
		r.record(ctx, model.CheckinRecord{
			Email:   id.Email,
			Subject: id.Subject,
			Balance: info.TokenBalance,
			Status:  model.StatusCheckinFailed,
		})
		return
	}

	r.bus.Info("check-in done", map[string]any{"email": masked, "award": result.Award})
	r.record(ctx, model.CheckinRecord{
		Email:   id.Email,
		Subject: id.Subject,
		Balance: info.TokenBalance,
		Award:   result.Award,
		Status:  model.StatusCheckedIn,
	})
	if r.notifier != nil {
		r.notifier.CheckinSucceeded(ctx, notify.CheckinEvent{
			At:      r.now().UnixMilli(),
			Email:   id.Email,
			Subject: id.Subject,
			Balance: info.TokenBalance,
			Award:   result.Award,
		})
	}
}

func (r *Runner) record(ctx context.Context, rec model.CheckinRecord) {
	if r.store == nil {
		return
	}
	rec.At = r.now()
	if _, err := r.store.RecordCheckin(ctx, rec); err != nil {
		r.bus.Warn("history write failed", map[string]any{"error": err.Error()})
	}
}

// sleepCycle waits out the configured cycle, redrawing a countdown line
// once per second when a printer is attached.
func (r *Runner) sleepCycle(ctx context.Context) error {
	cycle := r.cfg.Scheduler.Cycle()
	r.bus.Info("all accounts processed, sleeping", map[string]any{
		"duration": console.FormatDuration(cycle),
	})

	deadline := r.now().Add(cycle)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			return nil
		}
		if r.printer != nil {
			r.printer.Countdown(remaining)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
