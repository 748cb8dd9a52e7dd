package teller

import (
	"context"
	"fmt"
	"sync/atomic"
)

// State of the operation controller. The single-flight rule is expressed as an
// explicit state value so transitions can be asserted on directly.
type State int32

const (
	// Idle: ready to accept a submission.
	Idle State = iota
	// Validating: checking input locally, nothing sent yet.
	Validating
	// InFlight: a mutating request has been dispatched and has not settled.
	InFlight
	// SettledSuccess: the last operation succeeded; awaiting Ack.
	SettledSuccess
	// SettledFailure: the last operation failed; awaiting Ack.
	SettledFailure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case InFlight:
		return "in-flight"
	case SettledSuccess:
		return "settled-success"
	case SettledFailure:
		return "settled-failure"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// OperationKind tags an OperationRequest.
type OperationKind int

const (
	Deposit OperationKind = iota
	Withdraw
	Transfer
)

func (k OperationKind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Transfer:
		return "transfer"
	default:
		return fmt.Sprintf("operation(%d)", int(k))
	}
}

// OperationRequest is one user-initiated balance mutation, built from raw
// input at submission time and discarded once settled.
type OperationRequest struct {
	Kind   OperationKind
	Amount string // raw user input, parsed during validation
	To     string // transfer recipient, ignored otherwise
}

// validate parses and checks the request locally. The service enforces
// everything else (insufficient funds, unknown recipient, self-transfer).
func (r OperationRequest) validate() (Money, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return Money{}, err
	}
	if r.Kind == Transfer && r.To == "" {
		return Money{}, &ValidationError{Reason: "please enter a recipient username"}
	}
	return amount, nil
}

// Outcome is the terminal record of one submission. It is display state only,
// never queued or persisted.
type Outcome struct {
	Err     error       // nil on success
	Message UserMessage // what to show the user
	Balance Money       // authoritative balance after a successful mutation
	// Refreshed is false when the mutation succeeded but the follow-up
	// balance fetch failed; the previously displayed value is then stale.
	Refreshed bool
}

// BalanceView holds the last balance reported by the service. The value is
// replaced wholesale on every successful refresh and never derived from
// pending operations.
type BalanceView struct {
	client  *Client
	balance Money
	known   bool
}

func NewBalanceView(client *Client) *BalanceView { return &BalanceView{client: client} }

// Refresh fetches the authoritative balance. On failure the previous value is
// retained; the balance is never zeroed or guessed.
func (v *BalanceView) Refresh(ctx context.Context) (Money, error) {
	balance, err := v.client.Balance(ctx)
	if err != nil {
		return v.balance, err
	}
	v.balance = balance
	v.known = true
	return balance, nil
}

// Current returns the held balance and whether any refresh has succeeded yet.
func (v *BalanceView) Current() (Money, bool) { return v.balance, v.known }

// Controller validates and executes balance-mutating operations, one at a
// time. There is one controller per session; the state gate is the only
// concurrency control and is sufficient because all mutations flow through it.
type Controller struct {
	client *Client
	view   *BalanceView
	state  atomic.Int32
}

func NewController(client *Client, view *BalanceView) *Controller {
	return &Controller{client: client, view: view}
}

// State returns the controller's current state.
func (c *Controller) State() State { return State(c.state.Load()) }

// Submit validates and executes one operation.
//
// While a prior submission has not been acknowledged, Submit fails immediately
// with ErrBusy and no request is issued: at most one mutating operation is
// ever in flight. Validation failures also settle without touching the
// network. On service success the controller refreshes the balance through the
// view; the mutation response itself is never trusted as the new balance.
func (c *Controller) Submit(ctx context.Context, req OperationRequest) Outcome {
	if !c.state.CompareAndSwap(int32(Idle), int32(Validating)) {
		return Outcome{Err: ErrBusy, Message: Classify(ErrBusy)}
	}

	amount, err := req.validate()
	if err != nil {
		c.state.Store(int32(SettledFailure))
		return Outcome{Err: err, Message: Classify(err)}
	}

	c.state.Store(int32(InFlight))
	switch req.Kind {
	case Deposit:
		err = c.client.Deposit(ctx, amount)
	case Withdraw:
		err = c.client.Withdraw(ctx, amount)
	case Transfer:
		err = c.client.Transfer(ctx, req.To, amount)
	default:
		err = &ValidationError{Reason: fmt.Sprintf("unknown operation %s", req.Kind)}
	}
	if err != nil {
		c.state.Store(int32(SettledFailure))
		return Outcome{Err: err, Message: Classify(err)}
	}

	c.state.Store(int32(SettledSuccess))
	outcome := Outcome{Message: UserMessage{Text: successText(req)}}
	if balance, err := c.view.Refresh(ctx); err == nil {
		outcome.Balance = balance
		outcome.Refreshed = true
	}
	return outcome
}

func successText(req OperationRequest) string {
	switch req.Kind {
	case Withdraw:
		return "Withdraw successful"
	case Transfer:
		return fmt.Sprintf("Transfer to %s successful", req.To)
	default:
		return "Deposit successful"
	}
}

// Ack acknowledges a settled outcome and returns the controller to Idle, ready
// for the next submission. Acking an unsettled controller does nothing.
func (c *Controller) Ack() {
	c.state.CompareAndSwap(int32(SettledSuccess), int32(Idle))
	c.state.CompareAndSwap(int32(SettledFailure), int32(Idle))
}
