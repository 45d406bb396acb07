package poller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dpontes/smartbin/backend/internal/domain"
	"github.com/dpontes/smartbin/backend/internal/timefmt"
)

// defaultInterval is the fixed refresh period. No jitter, no backoff — the
// loop ticks for the lifetime of the dashboard session.
const defaultInterval = 5 * time.Second

// slotCount is the size of the history view: last, second-last, third-last.
const slotCount = 3

// errorLabel is rendered in identity fields of a section whose fetch failed.
const errorLabel = "Erro"

// State is the reconciliation state of a dashboard session.
type State int

const (
	StateIdle State = iota
	StateRefreshing
	StateDisplaying
	StateError
)

// LinkStatus is the device connectivity badge. It is injected from the
// sensor-link collaborator, never derived by the poller itself.
type LinkStatus int

const (
	LinkConnecting LinkStatus = iota
	LinkConnected
)

// String returns the badge text the dashboard shows.
func (l LinkStatus) String() string {
	if l == LinkConnected {
		return "Conectado"
	}
	return "Conectando"
}

// Slot is one entry of the three-slot history view.
// Both fields are empty when the slot has no record to show.
type Slot struct {
	Nome    string
	Horario string
}

// Snapshot is one fully rendered refresh cycle. Every field is already in
// display form: failed sections carry their sentinel values instead of
// blocking the rest.
type Snapshot struct {
	Slots     [slotCount]Slot
	SinceLast string
	Today     string
	Counts    map[domain.Material]string
	Link      LinkStatus
}

// Poller drives the reconciliation loop: every interval it issues the
// independent fetches, assembles a Snapshot, and hands it to the callback.
type Poller struct {
	client    *Client
	materials []domain.Material
	interval  time.Duration
	now       func() time.Time
	log       *slog.Logger
	session   uuid.UUID
	onRefresh func(Snapshot)

	mu    sync.Mutex
	state State
	link  LinkStatus
	// stopped and done belong to the currently running loop; Start replaces
	// both so a stopped poller can be started again.
	stopped chan struct{}
	done    chan struct{}
	running bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the refresh period (tests use a short one).
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaterials overrides the set of tracked materials.
func WithMaterials(materials []domain.Material) Option {
	return func(p *Poller) { p.materials = materials }
}

// WithClock overrides the clock used for the elapsed-time display.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithLogger overrides the logger (defaults to slog.Default).
func WithLogger(log *slog.Logger) Option {
	return func(p *Poller) { p.log = log }
}

// New builds a Poller. onRefresh receives every assembled Snapshot and must
// not block for long — it runs on the polling goroutine.
func New(client *Client, onRefresh func(Snapshot), opts ...Option) *Poller {
	p := &Poller{
		client:    client,
		materials: domain.Materials(),
		interval:  defaultInterval,
		now:       time.Now,
		log:       slog.Default(),
		session:   uuid.New(),
		onRefresh: onRefresh,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the loop: one immediate refresh, then one per interval.
// Calling Start on a running poller is a no-op; after Stop it launches a
// fresh loop, so the handle can be reused across dashboard sessions.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	// Fresh channels per launch: the previous pair is closed and must not
	// leak into the new loop.
	p.stopped = make(chan struct{})
	p.done = make(chan struct{})
	stopped, done := p.stopped, p.done
	p.mu.Unlock()

	p.log.Info("poller started", "session", p.session, "interval", p.interval)
	go p.run(ctx, stopped, done)
}

// Stop halts the loop and waits for the current cycle to finish.
// Calling Stop on an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stopped, done := p.stopped, p.done
	p.mu.Unlock()

	close(stopped)
	<-done
	p.log.Info("poller stopped", "session", p.session)
}

// State returns the current reconciliation state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetLinkStatus records the device connectivity reported by the sensor link.
// The new status shows up in the next Snapshot.
func (p *Poller) SetLinkStatus(status LinkStatus) {
	p.mu.Lock()
	p.link = status
	p.mu.Unlock()
}

// Delete removes a record out of band. On success the view is refreshed
// immediately instead of waiting for the next tick; on failure the displayed
// state is left untouched and the error is returned to the caller.
func (p *Poller) Delete(ctx context.Context, id int64) error {
	if err := p.client.Delete(ctx, id); err != nil {
		return fmt.Errorf("poller.Poller.Delete: %w", err)
	}
	p.Refresh(ctx)
	return nil
}

func (p *Poller) run(ctx context.Context, stopped <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopped:
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one full reconciliation cycle: the independent fetches
// run concurrently, each writes into its own result slot, and the snapshot
// is assembled from whatever succeeded. Errors never abort the cycle.
func (p *Poller) Refresh(ctx context.Context) {
	p.setState(StateRefreshing)

	var (
		wg sync.WaitGroup

		recent    []domain.Collection
		recentErr error

		today    int
		todayErr error

		countsMu sync.Mutex
		counts   = make(map[domain.Material]int, len(p.materials))
		countErr = make(map[domain.Material]error, len(p.materials))
	)

	wg.Add(2 + len(p.materials))
	go func() {
		defer wg.Done()
		recent, recentErr = p.client.Recent(ctx, slotCount)
	}()
	go func() {
		defer wg.Done()
		today, todayErr = p.client.TodayCount(ctx)
	}()
	for _, m := range p.materials {
		go func(m domain.Material) {
			defer wg.Done()
			n, err := p.client.MaterialCount(ctx, m)
			countsMu.Lock()
			counts[m], countErr[m] = n, err
			countsMu.Unlock()
		}(m)
	}
	wg.Wait()

	snap := p.render(recent, recentErr, today, todayErr, counts, countErr)

	failures := 0
	for _, err := range []error{recentErr, todayErr} {
		if err != nil {
			failures++
			p.log.Warn("section fetch failed", "session", p.session, "error", err)
		}
	}
	for m, err := range countErr {
		if err != nil {
			failures++
			p.log.Warn("section fetch failed", "session", p.session, "tipo", m, "error", err)
		}
	}

	if failures == 2+len(p.materials) {
		p.setState(StateError)
	} else {
		p.setState(StateDisplaying)
	}

	if p.onRefresh != nil {
		p.onRefresh(snap)
	}
}

// render maps raw section results to display form, applying the cardinality
// rules for the history slots and the sentinel values for failed sections.
func (p *Poller) render(recent []domain.Collection, recentErr error, today int, todayErr error, counts map[domain.Material]int, countErr map[domain.Material]error) Snapshot {
	snap := Snapshot{
		Counts: make(map[domain.Material]string, len(p.materials)),
		Link:   p.linkStatus(),
	}

	switch {
	case recentErr != nil:
		snap.Slots[0] = Slot{Nome: errorLabel}
		snap.SinceLast = timefmt.Unknown
	case len(recent) == 0:
		snap.SinceLast = ""
	default:
		for i := 0; i < slotCount && i < len(recent); i++ {
			snap.Slots[i] = Slot{
				Nome:    capitalize(string(recent[i].Tipo)),
				Horario: recent[i].Horario,
			}
		}
		now := p.now()
		snap.SinceLast = timefmt.ElapsedAt(now, recent[0].Horario, domain.FormatTime(now))
	}

	if todayErr != nil {
		snap.Today = "0"
	} else {
		snap.Today = fmt.Sprintf("%02d", today)
	}

	for _, m := range p.materials {
		if countErr[m] != nil {
			snap.Counts[m] = "0"
		} else {
			snap.Counts[m] = strconv.Itoa(counts[m])
		}
	}

	return snap
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) linkStatus() LinkStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.link
}

// capitalize upper-cases the first rune, the way the dashboard shows
// material names ("metal" → "Metal").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
