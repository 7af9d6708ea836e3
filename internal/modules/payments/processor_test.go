package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
)

type mockNotifier struct {
	paid   []string // checkout ids
	bkCnt  []int    // bookings delivered with each paid call
	failed []string
}

func (m *mockNotifier) CheckoutPaid(_ context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking) {
	m.paid = append(m.paid, co.ID)
	m.bkCnt = append(m.bkCnt, len(bks))
}

func (m *mockNotifier) CheckoutFailed(_ context.Context, co checkouts.CheckoutRequest) {
	m.failed = append(m.failed, co.ID)
}

type fixture struct {
	ledger   *checkouts.Repo
	bookings *bookings.Repo
	notifier *mockNotifier
	proc     *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&checkouts.CheckoutRequest{}, &bookings.Booking{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := checkouts.NewRepo(db)
	bkRepo := bookings.NewRepo(db)
	n := &mockNotifier{}
	return &fixture{
		ledger:   ledger,
		bookings: bkRepo,
		notifier: n,
		proc:     NewProcessor(ledger, bookings.NewMaterializer(bkRepo, log), n, log),
	}
}

func (f *fixture) seed(t *testing.T, depositID, status string, items ...checkouts.LineItem) checkouts.CheckoutRequest {
	t.Helper()
	if len(items) == 0 {
		items = []checkouts.LineItem{
			{Type: checkouts.ItemProperty, RefID: "prop-1", Title: "Diani Cottage", UnitCents: 10000, Currency: "USD", Qty: 1, Nights: 2},
			{Type: checkouts.ItemTour, RefID: "tour-1", Title: "Reef Snorkeling", UnitCents: 5000, Currency: "USD", Qty: 1},
		}
	}
	now := time.Now()
	dep := depositID
	co := checkouts.CheckoutRequest{
		ID:            uuid.NewString(),
		DepositID:     &dep,
		GuestName:     "Amina Odhiambo",
		GuestEmail:    "amina@example.com",
		TotalCents:    17250,
		Currency:      "USD",
		PaymentStatus: status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	co.Metadata = datatypes.NewJSONType(checkouts.Metadata{Items: items})
	if err := f.ledger.Create(context.Background(), &co); err != nil {
		t.Fatalf("seed checkout: %v", err)
	}
	return co
}

func (f *fixture) mustStatus(t *testing.T, id, want string) checkouts.CheckoutRequest {
	t.Helper()
	co, err := f.ledger.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload checkout: %v", err)
	}
	if co.PaymentStatus != want {
		t.Fatalf("expected ledger status %q, got %q", want, co.PaymentStatus)
	}
	return co
}

func TestProcessCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-ok", checkouts.StatusAwaitingCallback)

	out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-ok", Status: ProviderCompleted})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !out.Applied {
		t.Fatal("expected the transition to apply")
	}
	if out.NewStatus != checkouts.StatusPaid {
		t.Errorf("expected new status paid, got %q", out.NewStatus)
	}
	if out.CheckoutID != co.ID {
		t.Errorf("expected checkout %s, got %s", co.ID, out.CheckoutID)
	}

	got := f.mustStatus(t, co.ID, checkouts.StatusPaid)
	if len(got.Events()) != 1 {
		t.Errorf("expected 1 audit event, got %d", len(got.Events()))
	}

	bks, err := f.bookings.ListByOrderID(ctx, co.ID)
	if err != nil {
		t.Fatalf("ListByOrderID failed: %v", err)
	}
	if len(bks) != 2 {
		t.Errorf("expected 2 bookings materialized, got %d", len(bks))
	}

	if len(f.notifier.paid) != 1 || f.notifier.paid[0] != co.ID {
		t.Errorf("expected one paid notification for %s, got %v", co.ID, f.notifier.paid)
	}
	if len(f.notifier.bkCnt) == 1 && f.notifier.bkCnt[0] != 2 {
		t.Errorf("expected 2 bookings in the notification, got %d", f.notifier.bkCnt[0])
	}
}

func TestProcessDuplicateCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-dup", checkouts.StatusAwaitingCallback)

	cb := DepositCallback{DepositID: "dep-dup", Status: ProviderCompleted}
	if _, err := f.proc.Process(ctx, cb); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	// the gateway redelivers; every extra copy must be a pure ack
	for i := 0; i < 3; i++ {
		out, err := f.proc.Process(ctx, cb)
		if err != nil {
			t.Fatalf("redelivery %d failed: %v", i+1, err)
		}
		if out.Applied {
			t.Fatalf("redelivery %d applied a transition", i+1)
		}
		if out.Note != "already paid" {
			t.Errorf("redelivery %d: expected note %q, got %q", i+1, "already paid", out.Note)
		}
	}

	got := f.mustStatus(t, co.ID, checkouts.StatusPaid)
	if len(got.Events()) != 1 {
		t.Errorf("expected exactly 1 audit event after redeliveries, got %d", len(got.Events()))
	}

	bks, err := f.bookings.ListByOrderID(ctx, co.ID)
	if err != nil {
		t.Fatalf("ListByOrderID failed: %v", err)
	}
	if len(bks) != 2 {
		t.Errorf("expected 2 bookings after redeliveries, got %d", len(bks))
	}

	if len(f.notifier.paid) != 1 {
		t.Errorf("expected exactly 1 paid notification, got %d", len(f.notifier.paid))
	}
}

func TestProcessFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-fail", checkouts.StatusAwaitingCallback)

	out, err := f.proc.Process(ctx, DepositCallback{
		DepositID:     "dep-fail",
		Status:        ProviderRejected,
		FailureReason: "insufficient funds",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !out.Applied || out.NewStatus != checkouts.StatusFailed {
		t.Fatalf("expected applied failure, got %+v", out)
	}

	got := f.mustStatus(t, co.ID, checkouts.StatusFailed)
	if evs := got.Events(); len(evs) != 1 || evs[0].FailureReason != "insufficient funds" {
		t.Errorf("expected failure reason in the audit trail, got %+v", evs)
	}

	bks, err := f.bookings.ListByOrderID(ctx, co.ID)
	if err != nil {
		t.Fatalf("ListByOrderID failed: %v", err)
	}
	if len(bks) != 0 {
		t.Errorf("failed checkout must not materialize bookings, got %d", len(bks))
	}
	if len(f.notifier.failed) != 1 {
		t.Errorf("expected 1 failure notification, got %d", len(f.notifier.failed))
	}
	if len(f.notifier.paid) != 0 {
		t.Error("failure must not trigger a paid notification")
	}
}

func TestProcessFailedThenCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-recover", checkouts.StatusAwaitingCallback)

	if _, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-recover", Status: ProviderFailed}); err != nil {
		t.Fatalf("failure delivery failed: %v", err)
	}
	f.mustStatus(t, co.ID, checkouts.StatusFailed)

	// the gateway corrects itself; the late COMPLETED must still win
	out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-recover", Status: ProviderCompleted})
	if err != nil {
		t.Fatalf("recovery delivery failed: %v", err)
	}
	if !out.Applied || out.NewStatus != checkouts.StatusPaid {
		t.Fatalf("expected recovery to paid, got %+v", out)
	}

	got := f.mustStatus(t, co.ID, checkouts.StatusPaid)
	if len(got.Events()) != 2 {
		t.Errorf("expected both deliveries in the audit trail, got %d", len(got.Events()))
	}

	bks, err := f.bookings.ListByOrderID(ctx, co.ID)
	if err != nil {
		t.Fatalf("ListByOrderID failed: %v", err)
	}
	if len(bks) != 2 {
		t.Errorf("expected bookings after recovery, got %d", len(bks))
	}
	if len(f.notifier.paid) != 1 {
		t.Errorf("expected 1 paid notification, got %d", len(f.notifier.paid))
	}
}

func TestProcessFailureAfterPaidIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-late-fail", checkouts.StatusAwaitingCallback)

	if _, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-late-fail", Status: ProviderCompleted}); err != nil {
		t.Fatalf("paid delivery failed: %v", err)
	}

	// out-of-order FAILED arriving after COMPLETED: paid is terminal
	out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-late-fail", Status: ProviderFailed})
	if err != nil {
		t.Fatalf("late failure delivery failed: %v", err)
	}
	if out.Applied {
		t.Fatal("late failure must not apply")
	}

	f.mustStatus(t, co.ID, checkouts.StatusPaid)
	if len(f.notifier.failed) != 0 {
		t.Error("late failure must not notify the guest")
	}
}

func TestProcessEarlyStatusLadder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	co := f.seed(t, "dep-ladder", checkouts.StatusAwaitingCallback)

	out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-ladder", Status: ProviderAccepted})
	if err != nil {
		t.Fatalf("ACCEPTED delivery failed: %v", err)
	}
	if !out.Applied || out.NewStatus != checkouts.StatusPending {
		t.Fatalf("expected pending after ACCEPTED, got %+v", out)
	}

	out, err = f.proc.Process(ctx, DepositCallback{DepositID: "dep-ladder", Status: ProviderCompleted})
	if err != nil {
		t.Fatalf("COMPLETED delivery failed: %v", err)
	}
	if !out.Applied || out.NewStatus != checkouts.StatusPaid {
		t.Fatalf("expected paid after COMPLETED, got %+v", out)
	}

	got := f.mustStatus(t, co.ID, checkouts.StatusPaid)
	if len(got.Events()) != 2 {
		t.Errorf("expected 2 audit events, got %d", len(got.Events()))
	}
}

func TestProcessAcks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing deposit id", func(t *testing.T) {
		out, err := f.proc.Process(ctx, DepositCallback{Status: ProviderCompleted})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if out.Applied || out.Note != "missing depositId" {
			t.Errorf("expected missing-depositId ack, got %+v", out)
		}
	})

	t.Run("unknown deposit id", func(t *testing.T) {
		out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-nobody", Status: ProviderCompleted})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if out.Applied || out.Note != "unknown depositId" {
			t.Errorf("expected unknown-depositId ack, got %+v", out)
		}
	})

	t.Run("unrecognized provider status", func(t *testing.T) {
		co := f.seed(t, "dep-weird", checkouts.StatusAwaitingCallback)

		out, err := f.proc.Process(ctx, DepositCallback{DepositID: "dep-weird", Status: "ON_HOLD"})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if out.Applied || out.Note != "unrecognized status" {
			t.Errorf("expected unrecognized-status ack, got %+v", out)
		}

		got := f.mustStatus(t, co.ID, checkouts.StatusAwaitingCallback)
		if len(got.Events()) != 0 {
			t.Errorf("unrecognized status must not touch the audit trail, got %d events", len(got.Events()))
		}
	})
}

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		in         string
		want       string
		recognized bool
	}{
		{ProviderCompleted, checkouts.StatusPaid, true},
		{ProviderFailed, checkouts.StatusFailed, true},
		{ProviderRejected, checkouts.StatusFailed, true},
		{ProviderCancelled, checkouts.StatusFailed, true},
		{ProviderSubmitted, checkouts.StatusPending, true},
		{ProviderAccepted, checkouts.StatusPending, true},
		{"completed", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := mapProviderStatus(tc.in)
		if got != tc.want || ok != tc.recognized {
			t.Errorf("mapProviderStatus(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.recognized)
		}
	}
}
