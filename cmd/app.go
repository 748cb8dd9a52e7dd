// Package cmd implements the CLI commands of the tlr banking client.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"teller"
)

// Register the subcommands.
// A main package calls Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&loginCmd{}, "session")
	c.Register(&registerCmd{}, "session")
	c.Register(&logoutCmd{}, "session")

	c.Register(&balanceCmd{}, "account")
	c.Register(&depositCmd{}, "account")
	c.Register(&withdrawCmd{}, "account")
	c.Register(&transferCmd{}, "account")
	c.Register(&historyCmd{}, "account")
}

// as a CLI application, commands are short lived, so it is ok to use global flags.

const (
	apiURLEnv      = "TELLER_API_URL"
	sessionFileEnv = "TELLER_SESSION_FILE"
	defaultAPIURL  = "http://localhost:8080"
)

var apiURL = flag.String("api-url", "", "Base URL of the banking service.\n If missing it will read the environment variable \""+apiURLEnv+"\", then default to "+defaultAPIURL)
var sessionFile = flag.String("session-file", "", "Path to the session credential file.\n If missing it will read the environment variable \""+sessionFileEnv+"\", then default to the user config dir")

// openStore resolves the session file location and opens the store.
func openStore() (*teller.Store, error) {
	path := *sessionFile
	if path == "" {
		path = os.Getenv(sessionFileEnv)
	}
	if path == "" {
		var err error
		path, err = teller.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}
	return teller.NewStore(path), nil
}

// openClient builds the service client from flags and environment.
func openClient() (*teller.Client, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	url := *apiURL
	if url == "" {
		url = os.Getenv(apiURLEnv)
	}
	if url == "" {
		url = defaultAPIURL
	}
	return teller.NewClient(url, store), nil
}

// ensureSession gates protected commands: it returns a client only when a
// session credential is stored, and prints the redirect message otherwise.
func ensureSession() (*teller.Client, subcommands.ExitStatus) {
	client, err := openClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	guard := teller.NewGuard(client.Store())
	if _, err := guard.Ensure(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", teller.Classify(err).Text)
		return nil, subcommands.ExitFailure
	}
	return client, subcommands.ExitSuccess
}

// fail prints a classified error and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %s\n", teller.Classify(err).Text)
	return subcommands.ExitFailure
}
