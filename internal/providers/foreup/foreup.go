// Package foreup races ForeUp-hosted golf tee sheets. One Provider instance
// owns one page session and one run; it is not safe for concurrent use.
package foreup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/example/slot-sniper/internal/domain/booking"
	"github.com/example/slot-sniper/internal/engine"
	"github.com/example/slot-sniper/internal/page"
)

// Selectors for the ForeUp booking flow.
const (
	selLoginEmail    = "#login_email"
	selLoginPassword = "#login_password"
	selLoginButton   = "[name='login_button']"
	selReservations  = "a[href='#/teetimes']"

	selBookNow   = "button.btn.btn-primary.col-md-4.col-xs-12.col-md-offset-4"
	selDateField = "#date-field"

	selTimeTiles = "div.time.time-tile:not(.unavailable)"
	selTileTime  = "div.booking-start-time-label"

	selBookButton         = "button.btn.btn-success.js-book-button"
	selBookButtonDisabled = "button.js-book-button[disabled]"
	selConfirmation       = "div.booking-confirmation"
)

// ForeUp renders dates as MM-DD-YYYY in the date field.
const dateLayout = "01-02-2006"

type Credentials struct {
	Username string
	Password string
}

type Config struct {
	// URL of the course's booking page.
	URL         string
	Credentials Credentials
	Window      booking.TargetWindow

	// MaxUnknownStreak caps consecutive unknown outcomes; zero uses the
	// engine default.
	MaxUnknownStreak int
}

type Provider struct {
	page page.Page
	cfg  Config
	cls  *engine.Classifier
	log  *slog.Logger

	loggedIn bool
	prepared bool
}

func New(pg page.Page, cfg Config, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		page: pg,
		cfg:  cfg,
		cls:  &engine.Classifier{MaxUnknownStreak: cfg.MaxUnknownStreak},
		log:  log,
	}
}

func (p *Provider) Name() string { return "foreup" }

// Login authenticates and lands on the tee times listing.
func (p *Provider) Login(ctx context.Context) error {
	if err := p.page.Navigate(ctx, p.cfg.URL); err != nil {
		return fmt.Errorf("open booking page: %w", err)
	}
	if err := p.page.Fill(ctx, selLoginEmail, p.cfg.Credentials.Username); err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := p.page.Fill(ctx, selLoginPassword, p.cfg.Credentials.Password); err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := p.click(ctx, selLoginButton); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := p.click(ctx, selReservations); err != nil {
		return fmt.Errorf("open reservations: %w", err)
	}
	p.log.Info("logged in", "provider", p.Name())
	return nil
}

// prepare walks from the listing to the tee sheet for the target date and
// party size.
func (p *Provider) prepare(ctx context.Context) error {
	if err := p.click(ctx, selBookNow); err != nil {
		return fmt.Errorf("book now: %w", err)
	}
	if err := p.page.Fill(ctx, selDateField, p.cfg.Window.Date.Format(dateLayout)); err != nil {
		return fmt.Errorf("date field: %w", err)
	}
	if err := p.click(ctx, p.playerGroupSelector()); err != nil {
		return fmt.Errorf("player count: %w", err)
	}
	p.prepared = true
	return nil
}

func (p *Provider) playerGroupSelector() string {
	return fmt.Sprintf("div.btn-group.btn-group-justified.hidden-xs.players a[data-value='%d']", p.cfg.Window.RequiredCapacity)
}

func (p *Provider) bookingPlayerSelector() string {
	return fmt.Sprintf("div.js-booking-field-buttons[data-field='players'] a[data-value='%d']", p.cfg.Window.RequiredCapacity)
}

// fetchSlots reads the available time tiles off the prepared tee sheet.
func (p *Provider) fetchSlots(ctx context.Context) ([]booking.Slot, error) {
	tiles, err := p.page.FindAll(ctx, selTimeTiles)
	if err != nil {
		return nil, fmt.Errorf("time tiles: %w", err)
	}

	var slots []booking.Slot
	for _, tile := range tiles {
		label, err := tile.Find(ctx, selTileTime)
		if err != nil {
			continue // tile without a start-time label is decoration
		}
		text, err := label.Text(ctx)
		if err != nil {
			continue
		}
		t, err := booking.ParseTimeOfDay(text)
		if err != nil {
			p.log.Warn("unparseable tee time label", "text", text)
			continue
		}

		// The sheet already filters tiles by the selected player count,
		// so a missing spots attribute means the slot fits the party.
		capacity := p.cfg.Window.RequiredCapacity
		if v, ok, _ := tile.Attr(ctx, "data-spots"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				capacity = n
			}
		}
		slots = append(slots, booking.Slot{Time: t, Capacity: capacity, Ref: tile})
	}
	return slots, nil
}

// claim clicks through the booking form for the chosen tile.
func (p *Provider) claim(ctx context.Context, slot booking.Slot) error {
	tile, ok := slot.Ref.(page.Element)
	if !ok {
		return fmt.Errorf("slot has no page handle")
	}
	if err := tile.Click(ctx); err != nil {
		return fmt.Errorf("select tile %s: %w", slot.Time, err)
	}
	if err := p.click(ctx, p.bookingPlayerSelector()); err != nil {
		return fmt.Errorf("booking player count: %w", err)
	}
	if err := p.click(ctx, selBookButton); err != nil {
		return fmt.Errorf("book button: %w", err)
	}
	return nil
}

// observe reads the page state after a claim.
func (p *Provider) observe(ctx context.Context) engine.Observation {
	if ok, _ := p.page.IsPresent(ctx, selConfirmation); ok {
		return engine.Observation{Confirmed: true}
	}
	if ok, _ := p.page.IsPresent(ctx, selBookButtonDisabled); ok {
		return engine.Observation{Transient: true, Reason: "book button disabled"}
	}
	return engine.Observation{Reason: "no confirmation after claim"}
}

// Attempt runs one full acquisition cycle: authenticate if needed, reach the
// tee sheet, fetch and select a slot, claim it, classify the result.
func (p *Provider) Attempt(ctx context.Context) booking.AttemptOutcome {
	if !p.loggedIn {
		if err := p.Login(ctx); err != nil {
			return booking.Fatal("authentication failed", err)
		}
		p.loggedIn = true
	}

	if !p.prepared {
		if err := p.prepare(ctx); err != nil {
			return p.cls.Classify(engine.Observation{Reason: "prepare tee sheet", Err: err})
		}
	}

	slots, err := p.fetchSlots(ctx)
	if err != nil {
		return p.cls.Classify(engine.Observation{Reason: "fetch tee times", Err: err})
	}

	slot, ok := booking.SelectSlot(slots, p.cfg.Window)
	if !ok {
		return p.cls.Classify(engine.Observation{Transient: true, Reason: "no matching slot in window"})
	}
	p.log.Info("selected slot", "time", slot.Time.String(), "capacity", slot.Capacity)

	if err := p.claim(ctx, slot); err != nil {
		return p.cls.Classify(engine.Observation{Reason: "claim", Err: err})
	}
	return p.cls.Classify(p.observe(ctx))
}

// Recover reloads the listing after a retryable outcome; the next attempt
// walks the flow again from the tee sheet.
func (p *Provider) Recover(ctx context.Context) error {
	p.prepared = false
	return p.page.Reload(ctx)
}

// FetchAvailability is the monitor's fetch strategy: authenticate if needed,
// reach the tee sheet, read the slots. Never claims.
func (p *Provider) FetchAvailability(ctx context.Context) ([]booking.Slot, error) {
	if !p.loggedIn {
		if err := p.Login(ctx); err != nil {
			return nil, err
		}
		p.loggedIn = true
	}
	if err := p.prepare(ctx); err != nil {
		return nil, err
	}
	return p.fetchSlots(ctx)
}

func (p *Provider) click(ctx context.Context, selector string) error {
	el, err := p.page.Find(ctx, selector)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}
