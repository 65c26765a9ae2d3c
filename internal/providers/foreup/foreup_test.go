package foreup

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/slot-sniper/internal/domain/booking"
	"github.com/example/slot-sniper/internal/page/pagetest"
)

func testConfig() Config {
	return Config{
		URL: "https://foreupsoftware.com/index.php/booking/19348/1470",
		Credentials: Credentials{
			Username: "golfer@example.com",
			Password: "secret",
		},
		Window: booking.TargetWindow{
			Date:             time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Desired:          booking.MustTimeOfDay("09:30"),
			WindowStart:      booking.MustTimeOfDay("09:00"),
			WindowEnd:        booking.MustTimeOfDay("10:00"),
			RequiredCapacity: 4,
		},
	}
}

func tile(label string) *pagetest.Element {
	return &pagetest.Element{
		Children: map[string]*pagetest.Element{
			selTileTime: {TextVal: label},
		},
	}
}

// stubFlow wires every element the happy-path flow touches.
func stubFlow(f *pagetest.Fake, cfg Config, tiles ...*pagetest.Element) {
	f.Stub(selLoginEmail, &pagetest.Element{Attrs: map[string]string{"name": "email"}})
	f.Stub(selLoginPassword, &pagetest.Element{Attrs: map[string]string{"name": "password"}})
	f.Stub(selLoginButton, &pagetest.Element{})
	f.Stub(selReservations, &pagetest.Element{})
	f.Stub(selBookNow, &pagetest.Element{})
	f.Stub(selDateField, &pagetest.Element{Attrs: map[string]string{"name": "date"}})
	f.Stub("div.btn-group.btn-group-justified.hidden-xs.players a[data-value='4']", &pagetest.Element{})
	f.Stub("div.js-booking-field-buttons[data-field='players'] a[data-value='4']", &pagetest.Element{})
	f.Stub(selBookButton, &pagetest.Element{})
	f.Stub(selTimeTiles, tiles...)
}

func TestAttemptBooksClosestSlot(t *testing.T) {
	f := pagetest.New()
	cfg := testConfig()
	best := tile("9:10am")
	stubFlow(f, cfg, best, tile("8:15am"), tile("10:40am"))

	// Booking the slot lands on the confirmation page.
	best.OnClick = func() {
		f.Stub(selConfirmation, &pagetest.Element{})
	}

	p := New(f, cfg, slog.Default())
	out := p.Attempt(context.Background())

	require.Equal(t, booking.OutcomeSuccess, out.Kind)
	require.Equal(t, cfg.Credentials.Username, f.Fills[selLoginEmail])
	require.Equal(t, "09-01-2026", f.Fills[selDateField])
	require.Contains(t, f.Clicks, selBookButton)
}

func TestAttemptNoMatchingSlotIsRetryable(t *testing.T) {
	f := pagetest.New()
	cfg := testConfig()
	// Everything outside the window or already started too late.
	stubFlow(f, cfg, tile("7:00am"), tile("11:30am"))

	p := New(f, cfg, slog.Default())
	out := p.Attempt(context.Background())

	require.Equal(t, booking.OutcomeRetryable, out.Kind)
	require.Equal(t, "no matching slot in window", out.Reason)
}

func TestAttemptLoginFailureIsFatal(t *testing.T) {
	f := pagetest.New()
	// No login form elements stubbed: the login flow cannot proceed.
	p := New(f, testConfig(), slog.Default())
	out := p.Attempt(context.Background())

	require.Equal(t, booking.OutcomeFatal, out.Kind)
	require.Equal(t, "authentication failed", out.Reason)
	require.Error(t, out.Err)
}

func TestAttemptMissingConfirmationEscalatesEventually(t *testing.T) {
	f := pagetest.New()
	cfg := testConfig()
	cfg.MaxUnknownStreak = 2
	stubFlow(f, cfg, tile("9:30am"))
	// No confirmation and no disabled book button ever appears.

	p := New(f, cfg, slog.Default())

	out := p.Attempt(context.Background())
	require.Equal(t, booking.OutcomeRetryable, out.Kind)

	out = p.Attempt(context.Background())
	require.Equal(t, booking.OutcomeFatal, out.Kind)
}

func TestRecoverReloadsAndReprepares(t *testing.T) {
	f := pagetest.New()
	cfg := testConfig()
	stubFlow(f, cfg, tile("9:30am"))

	p := New(f, cfg, slog.Default())
	_ = p.Attempt(context.Background())

	require.NoError(t, p.Recover(context.Background()))
	require.Equal(t, 1, f.Reloads)

	// The next attempt prepares the tee sheet again.
	clicksBefore := len(f.Clicks)
	_ = p.Attempt(context.Background())
	require.Contains(t, f.Clicks[clicksBefore:], selBookNow)
}

func TestFetchAvailabilityNeverClaims(t *testing.T) {
	f := pagetest.New()
	cfg := testConfig()
	stubFlow(f, cfg, tile("9:10am"), tile("9:40am"))

	p := New(f, cfg, slog.Default())
	slots, err := p.FetchAvailability(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.NotContains(t, f.Clicks, selBookButton)
}
