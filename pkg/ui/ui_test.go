package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/arthur-debert/stowaway/pkg/ui"
	"github.com/arthur-debert/stowaway/pkg/ui/structured"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// updateResult is a dry-run update that touched every report category
func updateResult() *types.DeployResult {
	diff := types.NewDeployDifferences()
	diff.AddAddedFile(pathkey.Key("conf/new.conf"))
	diff.AddChangedFile(pathkey.Key("conf/app.conf"))
	diff.AddDeletedFile(pathkey.Key("lib/old.jar"))
	diff.AddBackedUpFile(pathkey.Key("conf/app.conf"), "/srv/app/.stowaway/2/backup/conf/app.conf")
	diff.AddRealizedFile(pathkey.Key("conf/app.conf"), "password=hunter2\n")

	return &types.DeployResult{
		Destination: "/srv/app",
		Deployment:  types.DeploymentRecord{ID: 2, BundleName: "app", BundleVersion: "1.1"},
		DryRun:      true,
		Report:      diff.Report(),
	}
}

func driftStatus() *types.DestinationStatus {
	current := types.DeploymentRecord{ID: 2, BundleName: "app", BundleVersion: "1.1"}
	previous := types.DeploymentRecord{ID: 1, BundleName: "app", BundleVersion: "1.0"}
	return &types.DestinationStatus{
		Destination: "/srv/app",
		Managed:     true,
		Current:     &current,
		Previous:    &previous,
		Tracked:     3,
		Drift: []types.Drift{
			{Path: "conf/app.conf", State: types.DriftModified},
			{Path: "lib/a.jar", State: types.DriftMissing},
		},
	}
}

func renderer(t *testing.T, format ui.Format) (ui.Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(format, &buf)
	require.NoError(t, err)
	return r, &buf
}

func TestNewRendererRejectsUnknownFormat(t *testing.T) {
	_, err := ui.NewRenderer(ui.Format("xml"), &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestAutoRendersTextIntoBuffers(t *testing.T) {
	r, buf := renderer(t, ui.FormatAuto)
	require.NoError(t, r.RenderStatus(&types.DestinationStatus{Destination: "/opt/x"}))
	assert.Equal(t, "/opt/x is not managed\n", buf.String())
}

func TestTextDeploy(t *testing.T) {
	r, buf := renderer(t, ui.FormatText)
	require.NoError(t, r.RenderDeploy(updateResult()))

	assert.Equal(t, `Update deployment app v1.1 (deployment 2) to /srv/app (dry run)
Added:
  conf/new.conf
Changed:
  conf/app.conf
Deleted:
  lib/old.jar
Realized:
  conf/app.conf
Backed up:
  conf/app.conf (/srv/app/.stowaway/2/backup/conf/app.conf)
1 added, 1 changed, 1 deleted, 1 backed up, 0 restored, 0 errors
`, buf.String())
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestTextInitialDeployWithoutChanges(t *testing.T) {
	r, buf := renderer(t, ui.FormatText)
	require.NoError(t, r.RenderDeploy(&types.DeployResult{
		Destination: "/srv/app",
		Deployment:  types.DeploymentRecord{ID: 1, BundleName: "app", BundleVersion: "1.0"},
		Initial:     true,
	}))
	assert.Equal(t, "Initial deployment app v1.0 (deployment 1) to /srv/app\nNo changes.\n", buf.String())
}

func TestTextStatus(t *testing.T) {
	r, buf := renderer(t, ui.FormatText)
	require.NoError(t, r.RenderStatus(driftStatus()))

	out := buf.String()
	assert.Contains(t, out, "current:  app v1.1 (deployment 2)")
	assert.Contains(t, out, "previous: app v1.0 (deployment 1)")
	assert.Contains(t, out, "Modified:\n  conf/app.conf\n")
	assert.Contains(t, out, "Missing:\n  lib/a.jar\n")
}

func TestTextErrorListsDetails(t *testing.T) {
	r, buf := renderer(t, ui.FormatText)
	err := errors.New(errors.ErrRescanFailed, "failed to rescan").WithDetail("dest", "/srv/app")
	require.NoError(t, r.RenderError(err))
	assert.Equal(t, "Error: [RESCAN_FAILED] failed to rescan\n  dest: /srv/app\n", buf.String())
}

func TestJSONDeploy(t *testing.T) {
	r, buf := renderer(t, ui.FormatJSON)
	require.NoError(t, r.RenderDeploy(updateResult()))

	var doc structured.DeployDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "deploy", doc.Command)
	assert.Equal(t, "update", doc.Kind)
	assert.True(t, doc.DryRun)
	assert.True(t, doc.Changed)
	assert.True(t, doc.OK)
	assert.Equal(t, []string{"lib/old.jar"}, doc.Report.Deleted)
	assert.Equal(t, []types.PathValue{
		{Path: "conf/app.conf", Value: hashutil.DigestBytes([]byte("password=hunter2\n"))},
	}, doc.Report.Realized)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestJSONDeployWithErrorsIsNotOK(t *testing.T) {
	diff := types.NewDeployDifferences()
	diff.AddError(pathkey.Key("old.txt"), "File [/srv/app/old.txt] did not delete")

	r, buf := renderer(t, ui.FormatJSON)
	require.NoError(t, r.RenderDeploy(&types.DeployResult{Destination: "/srv/app", Report: diff.Report()}))

	var doc structured.DeployDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.False(t, doc.OK)
	assert.False(t, doc.Changed)
}

func TestYAMLStatus(t *testing.T) {
	r, buf := renderer(t, ui.FormatYAML)
	require.NoError(t, r.RenderStatus(driftStatus()))

	var doc structured.StatusDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "status", doc.Command)
	assert.False(t, doc.Clean)
	assert.Equal(t, 2, doc.Current.ID)
	assert.Equal(t, driftStatus().Drift, doc.Drift)
}

func TestStructuredErrorKeepsCode(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatJSON, ui.FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			r, buf := renderer(t, format)
			require.NoError(t, r.RenderError(errors.New(errors.ErrCrossRoot, "cross root").WithDetail("path", "D:/x")))

			var doc map[string]interface{}
			if format == ui.FormatJSON {
				require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
			} else {
				require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
			}
			assert.Equal(t, "CROSS_ROOT", doc["code"])
			assert.Equal(t, map[string]interface{}{"path": "D:/x"}, doc["details"])
		})
	}
}

func TestTerminalMentionsEveryPath(t *testing.T) {
	r, buf := renderer(t, ui.FormatTerminal)
	require.NoError(t, r.RenderDeploy(updateResult()))
	for _, p := range []string{"conf/new.conf", "conf/app.conf", "lib/old.jar", "/srv/app", "dry run"} {
		assert.Contains(t, buf.String(), p)
	}

	buf.Reset()
	require.NoError(t, r.RenderStatus(driftStatus()))
	assert.Contains(t, buf.String(), "Modified")
	assert.Contains(t, buf.String(), "lib/a.jar")

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrStore, "locked").WithDetail("dest", "/srv/app")))
	assert.Contains(t, buf.String(), "locked")
	assert.Contains(t, buf.String(), "/srv/app")
}
