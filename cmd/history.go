package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"teller"
)

type historyCmd struct {
	tail int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the account statement" }
func (*historyCmd) Usage() string {
	return `tlr history [-tail <n>]

  Lists the movements recorded on the account, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.tail, "tail", 0, "Show only the last N entries.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := ensureSession()
	if status != subcommands.ExitSuccess {
		return status
	}
	entries, err := client.Transactions(ctx)
	if err != nil {
		return fail(err)
	}
	if c.tail > 0 && len(entries) > c.tail {
		entries = entries[len(entries)-c.tail:]
	}
	printMarkdown(teller.StatementMarkdown(entries))
	return subcommands.ExitSuccess
}
