// Package commands provides the command implementations behind the CLI.
//
// Each command lives in its own subdirectory:
//   - deploy/   - Deploy command
//   - status/   - Status command
//   - internal/ - Store selection and descriptor conversion
//
// This file re-exports the command functions.
package commands

import (
	"github.com/arthur-debert/stowaway/pkg/commands/deploy"
	"github.com/arthur-debert/stowaway/pkg/commands/status"
	"github.com/arthur-debert/stowaway/pkg/types"
)

// DeployOptions configures Deploy.
type DeployOptions = deploy.DeployOptions

// Deploy deploys a descriptor's bundle onto its destination.
func Deploy(opts DeployOptions) (*types.DeployResult, error) {
	return deploy.Deploy(opts)
}

// StatusOptions configures Status.
type StatusOptions = status.StatusOptions

// Status inspects a destination.
func Status(opts StatusOptions) (*types.DestinationStatus, error) {
	return status.Status(opts)
}
