package teller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestController(t *testing.T, url string) *Controller {
	t.Helper()
	client := loggedInClient(t, url)
	return NewController(client, NewBalanceView(client))
}

// waitForState polls until the controller reaches the wanted state.
func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("controller state = %s, want %s", c.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestController_SingleFlight(t *testing.T) {
	ledger := newFakeLedger("100.00")
	ledger.gate = make(chan struct{})
	srv := ledger.server()
	defer srv.Close()

	controller := newTestController(t, srv.URL)

	done := make(chan Outcome, 1)
	go func() {
		done <- controller.Submit(context.Background(), OperationRequest{Kind: Deposit, Amount: "50"})
	}()
	waitForState(t, controller, InFlight)

	// rapid repeated submissions while one operation is in flight
	for i := 0; i < 3; i++ {
		outcome := controller.Submit(context.Background(), OperationRequest{Kind: Deposit, Amount: "50"})
		if !errors.Is(outcome.Err, ErrBusy) {
			t.Errorf("Submit() while in flight, error = %v, want ErrBusy", outcome.Err)
		}
	}

	close(ledger.gate)
	outcome := <-done
	if outcome.Err != nil {
		t.Fatalf("first Submit() error = %v", outcome.Err)
	}
	if got := ledger.mutationCount(); got != 1 {
		t.Errorf("mutations dispatched = %d, want exactly 1", got)
	}

	// still settled: a new submission is rejected until the outcome is acknowledged
	if next := controller.Submit(context.Background(), OperationRequest{Kind: Deposit, Amount: "1"}); !errors.Is(next.Err, ErrBusy) {
		t.Errorf("Submit() before Ack(), error = %v, want ErrBusy", next.Err)
	}
	controller.Ack()
	if controller.State() != Idle {
		t.Errorf("state after Ack() = %s, want idle", controller.State())
	}
}

func TestController_ValidationGate(t *testing.T) {
	ledger := newFakeLedger("100.00")
	srv := ledger.server()
	defer srv.Close()

	tests := []struct {
		name string
		req  OperationRequest
	}{
		{"negative amount", OperationRequest{Kind: Deposit, Amount: "-5"}},
		{"zero amount", OperationRequest{Kind: Withdraw, Amount: "0"}},
		{"non-numeric amount", OperationRequest{Kind: Deposit, Amount: "fifty"}},
		{"empty amount", OperationRequest{Kind: Withdraw, Amount: ""}},
		{"transfer without recipient", OperationRequest{Kind: Transfer, Amount: "10"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			controller := newTestController(t, srv.URL)
			outcome := controller.Submit(context.Background(), tc.req)
			var verr *ValidationError
			if !errors.As(outcome.Err, &verr) {
				t.Fatalf("Submit() error = %v, want *ValidationError", outcome.Err)
			}
			if outcome.Message.Kind != KindValidation {
				t.Errorf("message kind = %v, want KindValidation", outcome.Message.Kind)
			}
			if controller.State() != SettledFailure {
				t.Errorf("state = %s, want settled-failure", controller.State())
			}
		})
	}
	if got := ledger.mutationCount(); got != 0 {
		t.Errorf("mutations dispatched = %d, want 0: validation failures must not reach the network", got)
	}
}

func TestController_BalanceNeverSelfComputed(t *testing.T) {
	ledger := newFakeLedger("100.00")
	// the service reports a balance that plain arithmetic would not predict
	ledger.onDeposit = func(decimal.Decimal) {
		ledger.balance = decimal.RequireFromString("175.25")
	}
	srv := ledger.server()
	defer srv.Close()

	controller := newTestController(t, srv.URL)
	outcome := controller.Submit(context.Background(), OperationRequest{Kind: Deposit, Amount: "50"})
	if outcome.Err != nil {
		t.Fatalf("Submit() error = %v", outcome.Err)
	}
	if !outcome.Refreshed {
		t.Fatal("a successful mutation must refresh the balance")
	}
	// not 150: the displayed balance is whatever the fetch returned
	if want := M(175.25, DefaultCurrency); !outcome.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s as reported by the service", outcome.Balance, want)
	}
}

func TestController_FailureKeepsBalance(t *testing.T) {
	ledger := newFakeLedger("250.00")
	srv := ledger.server()
	defer srv.Close()

	client := loggedInClient(t, srv.URL)
	view := NewBalanceView(client)
	if _, err := view.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	controller := NewController(client, view)
	outcome := controller.Submit(context.Background(), OperationRequest{Kind: Withdraw, Amount: "300"})
	if outcome.Err == nil {
		t.Fatal("Submit() succeeded, want insufficient funds rejection")
	}
	if outcome.Message.Text != "insufficient funds" {
		t.Errorf("message = %q, want the server's message verbatim", outcome.Message.Text)
	}
	balance, known := view.Current()
	if !known || !balance.Equal(M(250, DefaultCurrency)) {
		t.Errorf("held balance = %s (known=%v), want $250.00 retained", balance, known)
	}

	controller.Ack()
	if controller.State() != Idle {
		t.Errorf("state after Ack() = %s, want idle", controller.State())
	}
}

func TestController_TransferSuccess(t *testing.T) {
	ledger := newFakeLedger("250.00")
	srv := ledger.server()
	defer srv.Close()

	controller := newTestController(t, srv.URL)
	outcome := controller.Submit(context.Background(), OperationRequest{Kind: Transfer, Amount: "25", To: "bob"})
	if outcome.Err != nil {
		t.Fatalf("Submit() error = %v", outcome.Err)
	}
	if outcome.Message.Text != "Transfer to bob successful" {
		t.Errorf("message = %q", outcome.Message.Text)
	}
	if want := M(225, DefaultCurrency); !outcome.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s", outcome.Balance, want)
	}
}

func TestController_TransferUnknownRecipient(t *testing.T) {
	ledger := newFakeLedger("250.00")
	srv := ledger.server()
	defer srv.Close()

	controller := newTestController(t, srv.URL)
	outcome := controller.Submit(context.Background(), OperationRequest{Kind: Transfer, Amount: "25", To: "nobody"})
	if outcome.Message.Text != "Recipient not found" {
		t.Errorf("message = %q, want the server's message verbatim", outcome.Message.Text)
	}
}

func TestController_RefreshFailureAfterSuccess(t *testing.T) {
	ledger := newFakeLedger("100.00")
	srv := ledger.server()
	defer srv.Close()

	client := loggedInClient(t, srv.URL)
	view := NewBalanceView(client)
	controller := NewController(client, view)

	// the mutation succeeds, then the balance endpoint starts failing
	ledger.gate = make(chan struct{})
	done := make(chan Outcome, 1)
	go func() {
		done <- controller.Submit(context.Background(), OperationRequest{Kind: Deposit, Amount: "50"})
	}()
	waitForState(t, controller, InFlight)
	ledger.mu.Lock()
	ledger.failBalance = true
	ledger.mu.Unlock()
	close(ledger.gate)
	outcome := <-done

	if outcome.Err != nil {
		t.Fatalf("Submit() error = %v: the deposit itself succeeded", outcome.Err)
	}
	if outcome.Refreshed {
		t.Fatal("Refreshed = true, want false when the follow-up fetch fails")
	}
	if controller.State() != SettledSuccess {
		t.Errorf("state = %s, want settled-success", controller.State())
	}
}

// End-to-end: login, observe 250.00, withdraw 300, get rejected verbatim,
// balance unchanged, controller back to idle.
func TestScenario_RejectedWithdraw(t *testing.T) {
	ledger := newFakeLedger("250.00")
	srv := ledger.server()
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if err := client.Login(context.Background(), "carol", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := client.Store().Load(); err != nil {
		t.Fatalf("credential not stored: %v", err)
	}

	view := NewBalanceView(client)
	balance, err := view.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if balance.String() != "$250.00" {
		t.Errorf("displayed balance = %s, want $250.00", balance)
	}

	controller := NewController(client, view)
	outcome := controller.Submit(context.Background(), OperationRequest{Kind: Withdraw, Amount: "300"})
	if outcome.Err == nil {
		t.Fatal("withdraw of 300 against 250 should be rejected")
	}
	if outcome.Message.Text != "insufficient funds" {
		t.Errorf("error shown = %q, want %q", outcome.Message.Text, "insufficient funds")
	}
	if held, _ := view.Current(); held.String() != "$250.00" {
		t.Errorf("displayed balance after rejection = %s, want $250.00", held)
	}

	controller.Ack()
	if controller.State() != Idle {
		t.Errorf("controller state = %s, want idle and ready to retry", controller.State())
	}
}
