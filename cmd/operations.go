package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"teller"
)

// submit runs one balance-mutating operation through the controller and
// reports its outcome.
func submit(ctx context.Context, req teller.OperationRequest) subcommands.ExitStatus {
	client, status := ensureSession()
	if status != subcommands.ExitSuccess {
		return status
	}
	controller := teller.NewController(client, teller.NewBalanceView(client))
	outcome := controller.Submit(ctx, req)
	defer controller.Ack()

	if outcome.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", outcome.Message.Text)
		return subcommands.ExitFailure
	}
	fmt.Println(outcome.Message.Text)
	if outcome.Refreshed {
		fmt.Printf("Account balance: %s\n", outcome.Balance)
	} else {
		fmt.Fprintln(os.Stderr, "Warning: the operation succeeded but the balance could not be refreshed.")
	}
	return subcommands.ExitSuccess
}

// --- Deposit Command ---

type depositCmd struct {
	amount string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit cash into the account" }
func (*depositCmd) Usage() string {
	return `tlr deposit -a <amount>

  Deposits the amount into the account. The displayed balance is re-fetched
  from the service after the deposit is confirmed.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount of cash to deposit")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return submit(ctx, teller.OperationRequest{Kind: teller.Deposit, Amount: c.amount})
}

// --- Withdraw Command ---

type withdrawCmd struct {
	amount string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw cash from the account" }
func (*withdrawCmd) Usage() string {
	return `tlr withdraw -a <amount>

  Withdraws the amount from the account. The service is authoritative on
  insufficient funds; there is no local pre-check against the last-known
  balance, which may be stale.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount of cash to withdraw")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return submit(ctx, teller.OperationRequest{Kind: teller.Withdraw, Amount: c.amount})
}

// --- Transfer Command ---

type transferCmd struct {
	amount string
	to     string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "transfer money to another account" }
func (*transferCmd) Usage() string {
	return `tlr transfer -to <username> -a <amount>

  Debits the account by the amount and credits the recipient. The service
  rejects unknown recipients and transfers to yourself.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Recipient username")
	f.StringVar(&c.amount, "a", "", "Amount of cash to transfer")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return submit(ctx, teller.OperationRequest{Kind: teller.Transfer, Amount: c.amount, To: c.to})
}
