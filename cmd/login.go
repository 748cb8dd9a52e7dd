package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type loginCmd struct {
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "authenticate and store the session credential" }
func (*loginCmd) Usage() string {
	return `tlr login -u <username> -p <password>

  Authenticates against the banking service and stores the returned session
  credential on disk. Later commands attach it automatically.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Account username")
	f.StringVar(&c.password, "p", "", "Account password")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := openClient()
	if err != nil {
		return fail(err)
	}
	if err := client.Login(ctx, c.username, c.password); err != nil {
		return fail(err)
	}
	fmt.Println("✅ Logged in. Session credential stored.")
	return subcommands.ExitSuccess
}
