package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"teller"
)

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display the authoritative account balance" }
func (*balanceCmd) Usage() string {
	return `tlr balance

  Fetches and displays the account balance as the service reports it.
`
}

func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := ensureSession()
	if status != subcommands.ExitSuccess {
		return status
	}
	view := teller.NewBalanceView(client)
	balance, err := view.Refresh(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account balance: %s\n", balance)
	return subcommands.ExitSuccess
}
