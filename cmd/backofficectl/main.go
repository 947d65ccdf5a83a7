// Command backofficectl is the operator CLI: schema migrations, account
// provisioning and read-only ledger reports printed as JSON.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
