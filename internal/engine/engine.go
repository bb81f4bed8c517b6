// Package engine owns the authenticated portal session and the polling loop
// that confirms attendance. All shared state lives in one mutex-guarded
// struct; the tick goroutine and the API handlers both go through it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"autoabsen/internal/extract"
	"autoabsen/internal/models"
	"autoabsen/internal/policy"
	"autoabsen/internal/portal"
	"autoabsen/internal/schedule"
)

var (
	ErrNotLoggedIn        = errors.New("belum login")
	ErrAlreadyRunning     = errors.New("engine sudah berjalan")
	ErrNotRunning         = errors.New("engine tidak berjalan")
	ErrLoginRejected      = errors.New("login ditolak")
	ErrLoginIndeterminate = errors.New("status login tidak dikenali")
)

// PortalClient is the web-client capability the engine consumes. A fresh
// client (with a fresh cookie jar) is created per login.
type PortalClient interface {
	Login(ctx context.Context, npm, password string) (portal.LoginResult, error)
	AttendancePage(ctx context.Context) (string, error)
	SchedulePage(ctx context.Context) (string, error)
	SubmitConfirmation(ctx context.Context, data url.Values) (string, error)
}

// Recorder archives fetched page bodies for diagnostics. Archiving is
// best-effort; failures never affect a tick.
type Recorder interface {
	Save(ctx context.Context, name, content string) error
}

// Options configures an Engine.
type Options struct {
	// NewClient builds a portal client for a login attempt. Required.
	NewClient func() PortalClient
	// Recorder is optional.
	Recorder Recorder
	// CheckInterval between ticks. Defaults to 60s.
	CheckInterval time.Duration
	// IdleTimeout invalidates the session after this long without a
	// heartbeat. Defaults to 20m. Zero disables the watchdog.
	IdleTimeout time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Snapshot is the externally visible engine state.
type Snapshot struct {
	LoggedIn  bool                   `json:"logged_in"`
	NPM       string                 `json:"npm,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Running   bool                   `json:"engine_running"`
	LastCheck *time.Time             `json:"last_check,omitempty"`
	Logs      []models.LogEntry      `json:"logs"`
	Settings  models.Settings        `json:"settings"`
	Schedule  []models.ScheduleEntry `json:"schedule,omitempty"`
}

// Engine drives the attendance-confirmation loop.
type Engine struct {
	newClient     func() PortalClient
	recorder      Recorder
	checkInterval time.Duration
	idleTimeout   time.Duration
	now           func() time.Time

	ledger *Ledger
	logs   *LogBuffer

	mu           sync.Mutex
	client       PortalClient
	npm          string
	name         string
	loggedIn     bool
	scheduleTab  []models.ScheduleEntry
	settings     models.Settings
	running      bool
	cancel       context.CancelFunc
	lastCheck    time.Time
	lastLiveness time.Time
}

// New creates an engine. It starts stopped and logged out.
func New(opts Options) *Engine {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 60 * time.Second
	}
	if opts.IdleTimeout < 0 {
		opts.IdleTimeout = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		newClient:     opts.NewClient,
		recorder:      opts.Recorder,
		checkInterval: opts.CheckInterval,
		idleTimeout:   opts.IdleTimeout,
		now:           opts.Now,
		ledger:        NewLedger(),
		logs:          NewLogBuffer(),
		settings:      models.Settings{Mode: models.ModeImmediate, OffsetMinutes: 1}.Normalize(),
	}
}

// Login authenticates against the portal. On success the previous session,
// ledger and logs are discarded and the new session becomes current.
// Rejected credentials and an unrecognized page layout are distinct errors.
func (e *Engine) Login(ctx context.Context, npm, password string) (string, error) {
	client := e.newClient()

	e.logs.Add(models.LogLevelInfo, fmt.Sprintf("Mencoba login dengan NPM %s...", npm))
	res, err := client.Login(ctx, npm, password)
	if err != nil {
		e.logs.Add(models.LogLevelError, fmt.Sprintf("Login gagal: %v", err))
		return "", err
	}

	switch res.Outcome {
	case portal.OutcomeAuthenticated:
		e.mu.Lock()
		if e.running {
			e.stopLocked()
		}
		e.client = client
		e.npm = npm
		e.name = res.DisplayName
		e.loggedIn = true
		e.scheduleTab = nil
		e.lastLiveness = e.now()
		e.mu.Unlock()

		e.ledger.Clear()
		e.logs.Clear()
		e.logs.Add(models.LogLevelSuccess, fmt.Sprintf("Login berhasil. Nama: %s", res.DisplayName))
		return res.DisplayName, nil

	case portal.OutcomeRejected:
		e.logs.Add(models.LogLevelWarning, "Login ditolak: "+res.Reason)
		return "", fmt.Errorf("%w: %s", ErrLoginRejected, res.Reason)

	default:
		e.logs.Add(models.LogLevelWarning, "Status login tidak dikenali, layout halaman mungkin berubah")
		return "", fmt.Errorf("%w", ErrLoginIndeterminate)
	}
}

// Logout stops the engine if running and discards session, ledger, logs and
// the cached schedule.
func (e *Engine) Logout() {
	e.mu.Lock()
	if e.running {
		e.stopLocked()
	}
	e.client = nil
	e.npm = ""
	e.name = ""
	e.loggedIn = false
	e.scheduleTab = nil
	e.mu.Unlock()

	e.ledger.Clear()
	e.logs.Clear()
}

// FetchSchedule loads and normalizes the semester schedule, caches it, and
// returns it with statuses computed for the current time.
func (e *Engine) FetchSchedule(ctx context.Context) ([]models.ScheduleEntry, error) {
	e.mu.Lock()
	client := e.client
	e.mu.Unlock()
	if client == nil {
		return nil, ErrNotLoggedIn
	}

	e.logs.Add(models.LogLevelInfo, "Mengambil jadwal kuliah...")
	page, err := client.SchedulePage(ctx)
	if err != nil {
		e.logs.Add(models.LogLevelError, fmt.Sprintf("Gagal mengambil jadwal: %v", err))
		return nil, err
	}
	e.record(ctx, "jadwal_semester.html", page)

	entries, err := schedule.Parse(page)
	if err != nil {
		e.logs.Add(models.LogLevelError, fmt.Sprintf("Gagal membaca jadwal: %v", err))
		return nil, err
	}

	if len(entries) == 0 {
		e.logs.Add(models.LogLevelWarning, "Jadwal tidak ditemukan di halaman jadwal")
	} else {
		schedule.UpdateStatus(entries, e.now())
		e.logs.Add(models.LogLevelSuccess, fmt.Sprintf("Ditemukan %d jadwal kuliah", len(entries)))
	}

	cached := make([]models.ScheduleEntry, len(entries))
	copy(cached, entries)
	e.mu.Lock()
	e.scheduleTab = cached
	e.mu.Unlock()

	return entries, nil
}

// Start launches the polling loop with the given settings. Starting an
// already running engine is rejected, not restarted.
func (e *Engine) Start(settings models.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loggedIn {
		return ErrNotLoggedIn
	}
	if e.running {
		return ErrAlreadyRunning
	}

	e.settings = settings.Normalize()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running = true

	go e.run(ctx)

	e.logs.Add(models.LogLevelSuccess, "Engine dimulai, memantau halaman absensi")
	return nil
}

// Stop requests cancellation. The loop observes it between ticks; an
// in-flight network call is never interrupted forcibly.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ErrNotRunning
	}
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.running = false
	e.logs.Add(models.LogLevelWarning, "Engine dihentikan")
}

// UpdateSettings replaces the timing-policy configuration. Takes effect on
// the next tick.
func (e *Engine) UpdateSettings(settings models.Settings) {
	e.mu.Lock()
	e.settings = settings.Normalize()
	e.mu.Unlock()
	e.logs.Add(models.LogLevelInfo, "Pengaturan waktu absen diperbarui")
}

// Settings returns the current timing-policy configuration.
func (e *Engine) Settings() models.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Heartbeat records external liveness; it keeps the idle watchdog from
// evicting the session.
func (e *Engine) Heartbeat() {
	e.mu.Lock()
	e.lastLiveness = e.now()
	e.mu.Unlock()
}

// Status returns a snapshot of the engine state. The idle watchdog runs on
// this read path: a session idle past the timeout is stopped and
// invalidated here, not by a separate timer.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()

	if e.loggedIn && e.idleTimeout > 0 && !e.lastLiveness.IsZero() &&
		e.now().Sub(e.lastLiveness) > e.idleTimeout {
		if e.running {
			e.stopLocked()
		}
		e.client = nil
		e.loggedIn = false
		e.logs.Add(models.LogLevelWarning, "Sesi berakhir karena tidak ada aktivitas")
	}

	snap := Snapshot{
		LoggedIn: e.loggedIn,
		NPM:      e.npm,
		Name:     e.name,
		Running:  e.running,
		Settings: e.settings,
	}
	if len(e.scheduleTab) > 0 {
		// Copy: the tick goroutine rewrites statuses in place under the lock.
		snap.Schedule = make([]models.ScheduleEntry, len(e.scheduleTab))
		copy(snap.Schedule, e.scheduleTab)
	}
	if !e.lastCheck.IsZero() {
		t := e.lastCheck
		snap.LastCheck = &t
	}
	e.mu.Unlock()

	snap.Logs = e.logs.Recent(50)
	return snap
}

// ClearLogs empties the caller-facing log buffer.
func (e *Engine) ClearLogs() {
	e.logs.Clear()
}

// Ledger exposes the dedup ledger, primarily for tests and status detail.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// run is the polling loop. Ticks execute sequentially; the inter-tick wait
// is interruptible by cancellation. A failing tick logs and the loop keeps
// going — only a missing session terminates it.
func (e *Engine) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		e.tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(e.checkInterval):
		}
	}
}

// tick runs one check-and-act cycle.
func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	client := e.client
	settings := e.settings
	e.lastCheck = e.now()
	e.mu.Unlock()

	if client == nil {
		e.logs.Add(models.LogLevelError, "Session tidak tersedia, engine berhenti")
		_ = e.Stop()
		return
	}

	e.checkAttendance(ctx, client, settings)

	e.mu.Lock()
	if len(e.scheduleTab) > 0 {
		schedule.UpdateStatus(e.scheduleTab, e.now())
	}
	e.mu.Unlock()
}

// checkAttendance fetches the attendance page, extracts candidates, applies
// the timing policy and submits every eligible candidate.
func (e *Engine) checkAttendance(ctx context.Context, client PortalClient, settings models.Settings) {
	page, err := client.AttendancePage(ctx)
	if err != nil {
		e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Gagal memuat halaman absensi: %v", err))
		return
	}
	e.record(ctx, "absensi_page.html", page)

	today := e.now().Format("2006-01-02")
	res := extract.Extract(page, func(id string) bool {
		return e.ledger.Contains(today, id)
	})

	switch res.State {
	case extract.PageAlreadyConfirmed:
		e.logs.Add(models.LogLevelInfo, "Anda sudah absen untuk kelas yang sedang berlangsung")
		return
	case extract.PageNoActiveClass:
		e.logs.Add(models.LogLevelInfo, "Tidak ada kelas aktif yang memerlukan absen saat ini")
		return
	}

	for _, id := range res.Incomplete {
		e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Tidak dapat mengekstrak parameter absen untuk ID %s", id))
	}

	for _, cand := range res.Candidates {
		e.logs.Add(models.LogLevelInfo, fmt.Sprintf("Kelas aktif ditemukan: %s (Pertemuan %s, %s - %s)",
			cand.CourseName, cand.MeetingNumber, cand.ScheduledStart, cand.ScheduledEnd))

		dec, err := policy.Decide(settings, cand, e.now())
		if err != nil {
			// Never drop a detected active class over a malformed time.
			e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Tidak bisa menghitung waktu absen, absen langsung: %v", err))
			dec = policy.Decision{Action: policy.ActionSubmit}
		}
		if dec.Note != "" {
			e.logs.Add(models.LogLevelWarning, dec.Note)
		}
		if dec.Action == policy.ActionWait {
			e.logs.Add(models.LogLevelInfo, fmt.Sprintf("Menunggu waktu absen %s untuk %s",
				dec.Target.Format("15:04"), cand.CourseName))
			continue
		}

		e.submit(ctx, client, cand, today)
	}
}

// submit posts one confirmation and records terminal outcomes in the ledger.
func (e *Engine) submit(ctx context.Context, client PortalClient, cand models.ConfirmationCandidate, today string) {
	e.logs.Add(models.LogLevelInfo, "Mengirim konfirmasi kehadiran...")

	body, err := client.SubmitConfirmation(ctx, cand.FormValues())
	if err != nil {
		e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Gagal mengirim konfirmasi: %v", err))
		return
	}
	e.record(ctx, "absen_response.html", body)

	switch ClassifySubmission(body) {
	case SubmitConfirmed:
		e.ledger.Mark(today, cand.ConfirmationID)
		e.logs.Add(models.LogLevelSuccess, fmt.Sprintf("Absen berhasil untuk %s", cand.CourseName))
	case SubmitAlreadyRecorded:
		e.ledger.Mark(today, cand.ConfirmationID)
		e.logs.Add(models.LogLevelInfo, fmt.Sprintf("Absen sudah tercatat untuk %s", cand.CourseName))
	default:
		snippet := body
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Response absen tidak dikenali: %s", snippet))
	}
}

// record archives a fetched page body, best-effort.
func (e *Engine) record(ctx context.Context, name, content string) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Save(ctx, name, content); err != nil {
		e.logs.Add(models.LogLevelWarning, fmt.Sprintf("Gagal menyimpan snapshot %s: %v", name, err))
	}
}
