package stowaway

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort    = "Deploy file bundles and keep local edits safe"
	MsgDeployShort  = "Deploy a bundle described by a descriptor file"
	MsgStatusShort  = "Show recorded deployments and drift of a destination"
	MsgVersionShort = "Print version information"

	MsgVersionFormat = "stowaway %s (commit %s, built %s)\n"

	// Error messages
	MsgErrNoDestination = "a descriptor or --dest is required"
	MsgErrReportErrors  = "deployment finished with %d error(s)"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig         = "User configuration file (default $XDG_CONFIG_HOME/stowaway/config.toml)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagRestoreBackups = "Restore files backed up by the previous deployment"
	MsgFlagDest           = "Destination directory to inspect"
	MsgFlagFormat         = "Output format: %s"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/deploy-long.txt
	msgDeployLongRaw string
	MsgDeployLong    = strings.TrimSpace(msgDeployLongRaw)

	//go:embed msgs/deploy-example.txt
	msgDeployExampleRaw string
	MsgDeployExample    = strings.TrimRight(msgDeployExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/status-example.txt
	msgStatusExampleRaw string
	MsgStatusExample    = strings.TrimRight(msgStatusExampleRaw, "\n")

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
