package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	username string
	password string
	confirm  string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account on the banking service" }
func (*registerCmd) Usage() string {
	return `tlr register -u <username> -p <password> -confirm <password>

  Creates a new account. Registration does not log you in; run 'tlr login'
  afterwards.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Desired username")
	f.StringVar(&c.password, "p", "", "Desired password")
	f.StringVar(&c.confirm, "confirm", "", "Password confirmation")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := openClient()
	if err != nil {
		return fail(err)
	}
	if err := client.Register(ctx, c.username, c.password, c.confirm); err != nil {
		return fail(err)
	}
	fmt.Println("✅ Account created. You can now run 'tlr login'.")
	return subcommands.ExitSuccess
}
