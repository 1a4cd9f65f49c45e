package structured

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialDeployDocument(t *testing.T) {
	doc := NewDeployDocument(&types.DeployResult{
		Destination: "/srv/app",
		Initial:     true,
		Report:      types.Report{Summary: types.Summary{Added: 2}, Added: []string{"a", "b"}},
	})

	assert.Equal(t, "initial", doc.Kind)
	assert.True(t, doc.Changed)
	assert.True(t, doc.OK)
}

func TestDeployDocumentLeavesResultUntouched(t *testing.T) {
	result := &types.DeployResult{
		Report: types.Report{Realized: []types.PathValue{{Path: "conf/app.conf", Value: "secret"}}},
	}

	doc := NewDeployDocument(result)
	assert.NotEqual(t, "secret", doc.Report.Realized[0].Value)
	assert.Equal(t, "secret", result.Report.Realized[0].Value)
}

func TestCleanStatusHasEmptyDriftList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, JSON).RenderStatus(&types.DestinationStatus{Destination: "/srv/app", Managed: true}))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, true, raw["clean"])
	assert.Equal(t, []interface{}{}, raw["drift"])
	assert.NotContains(t, raw, "current")
}

func TestErrorDocumentForPlainError(t *testing.T) {
	doc := NewErrorDocument(stderrors.New("boom"))
	assert.Equal(t, "boom", doc.Error)
	assert.Equal(t, errors.ErrUnknown, doc.Code)
	assert.Nil(t, doc.Details)
}
