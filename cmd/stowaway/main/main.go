package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/stowaway/cmd/stowaway"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/style"
)

func main() {
	rootCmd := stowaway.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if details := errors.GetErrorDetails(err); len(details) > 0 {
			msg += fmt.Sprintf(" %v", details)
		}
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(msg))
		os.Exit(1)
	}
}
