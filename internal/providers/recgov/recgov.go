// Package recgov races recreation.gov campground availability. Campsites are
// claimed per date rather than per time of day, so slot times collapse to
// midnight and the window is normally left wide open.
package recgov

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/slot-sniper/internal/domain/booking"
	"github.com/example/slot-sniper/internal/engine"
	"github.com/example/slot-sniper/internal/page"
)

const baseURL = "https://www.recreation.gov"

const (
	selLoginLink     = "#ga-global-nav-log-in-link"
	selLoginEmail    = "#email"
	selLoginPassword = "#rec-acct-sign-in-password"
	selLoginSubmit   = "button.rec-acct-sign-in-btn"

	selDateField    = "#campground-start-date-calendar"
	selGuestCounter = "#guest-counter"
	selGuestField   = "#guest-counter-number-field-People"

	selAvailabilityCell = "button.rec-availability-date"
	disabledClass       = "sarsa-button-disabled"

	selBookNow      = "button.availability-book-now"
	selErrorModal   = "div.modal"
	selOrderDetails = "h1.order-details-heading"
)

const dateLayout = "2006-01-02"

type Credentials struct {
	Username string
	Password string
}

type Config struct {
	// URL of the campground's availability page.
	URL         string
	Credentials Credentials
	Window      booking.TargetWindow

	MaxUnknownStreak int
}

type Provider struct {
	page page.Page
	cfg  Config
	cls  *engine.Classifier
	log  *slog.Logger

	loggedIn bool
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

func (p *Provider) Name() string { return "recgov" }

func (p *Provider) Login(ctx context.Context) error {
	if err := p.page.Navigate(ctx, baseURL); err != nil {
		return fmt.Errorf("open recreation.gov: %w", err)
	}
	if err := p.click(ctx, selLoginLink); err != nil {
		return fmt.Errorf("login link: %w", err)
	}
	if err := p.page.Fill(ctx, selLoginEmail, p.cfg.Credentials.Username); err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := p.page.Fill(ctx, selLoginPassword, p.cfg.Credentials.Password); err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := p.click(ctx, selLoginSubmit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	p.log.Info("logged in", "provider", p.Name())
	return nil
}

// prepare opens the campground page and applies date and group size.
func (p *Provider) prepare(ctx context.Context) error {
	if err := p.page.Navigate(ctx, p.cfg.URL); err != nil {
		return fmt.Errorf("open campground page: %w", err)
	}
	if err := p.page.Fill(ctx, selDateField, p.cfg.Window.Date.Format(dateLayout)); err != nil {
		return fmt.Errorf("date field: %w", err)
	}
	if err := p.click(ctx, selGuestCounter); err != nil {
		return fmt.Errorf("guest counter: %w", err)
	}
	if err := p.page.Fill(ctx, selGuestField, fmt.Sprintf("%d", p.cfg.Window.RequiredCapacity)); err != nil {
		return fmt.Errorf("guest count: %w", err)
	}
	return nil
}

// fetchSlots maps enabled availability cells to slots. The grid is per-date,
// so every slot carries time 00:00 and the configured group size.
func (p *Provider) fetchSlots(ctx context.Context) ([]booking.Slot, error) {
	cells, err := p.page.FindAll(ctx, selAvailabilityCell)
	if err != nil {
		return nil, fmt.Errorf("availability cells: %w", err)
	}

	var slots []booking.Slot
	for _, cell := range cells {
		if class, ok, _ := cell.Attr(ctx, "class"); ok && strings.Contains(class, disabledClass) {
			continue
		}
		slots = append(slots, booking.Slot{
			Time:     0,
			Capacity: p.cfg.Window.RequiredCapacity,
			Ref:      cell,
		})
	}
	return slots, nil
}

func (p *Provider) claim(ctx context.Context, slot booking.Slot) error {
	cell, ok := slot.Ref.(page.Element)
	if !ok {
		return fmt.Errorf("slot has no page handle")
	}
	if err := cell.Click(ctx); err != nil {
		return fmt.Errorf("select availability cell: %w", err)
	}
	if err := p.click(ctx, selBookNow); err != nil {
		return fmt.Errorf("book now: %w", err)
	}
	return nil
}

// observe: an error modal is the usual losing outcome and is retryable after
// a reload; reaching the order details page means the site is held in cart.
func (p *Provider) observe(ctx context.Context) engine.Observation {
	if ok, _ := p.page.IsPresent(ctx, selOrderDetails); ok {
		return engine.Observation{Confirmed: true}
	}
	if ok, _ := p.page.IsPresent(ctx, selErrorModal); ok {
		return engine.Observation{Transient: true, Reason: "error dialog"}
	}
	return engine.Observation{Reason: "no checkout or error marker"}
}

func (p *Provider) Attempt(ctx context.Context) booking.AttemptOutcome {
	if !p.loggedIn {
		if err := p.Login(ctx); err != nil {
			return booking.Fatal("authentication failed", err)
		}
		p.loggedIn = true
	}

	if err := p.prepare(ctx); err != nil {
		return p.cls.Classify(engine.Observation{Reason: "prepare availability grid", Err: err})
	}

	slots, err := p.fetchSlots(ctx)
	if err != nil {
		return p.cls.Classify(engine.Observation{Reason: "fetch availability", Err: err})
	}

	slot, ok := booking.SelectSlot(slots, p.cfg.Window)
	if !ok {
		return p.cls.Classify(engine.Observation{Transient: true, Reason: "no availability for date"})
	}

	if err := p.claim(ctx, slot); err != nil {
		return p.cls.Classify(engine.Observation{Reason: "claim", Err: err})
	}
	return p.cls.Classify(p.observe(ctx))
}

func (p *Provider) Recover(ctx context.Context) error {
	return p.page.Reload(ctx)
}

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
