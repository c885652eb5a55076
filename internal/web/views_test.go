package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/salesimport/internal/core"
)

func TestImportSummaryPage_Render(t *testing.T) {
	res := &core.ImportResult{
		ImportID:        "imp-1",
		FileName:        "ventas<1>.csv",
		Success:         true,
		Message:         "Import completed",
		TotalRows:       3,
		SalesCreated:    2,
		UnmappedHeaders: []string{"Color", "<Notas>"},
		Errors: []core.ErrorRecord{
			{Row: 4, Entity: "Sale", Class: core.ErrorClass("Validation"), Field: "Precio", Value: "-1", Message: "must be positive"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ImportSummaryPage(res).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<title>Import imp-1</title>")
	assert.Contains(t, html, "<h1>ventas&lt;1&gt;.csv</h1>")
	assert.Contains(t, html, `<p class="ok"><strong>Succeeded</strong>: Import completed</p>`)
	assert.Contains(t, html, "<tr><th>Sales created</th><td>2</td></tr>")
	assert.Contains(t, html, "<code>Color</code>")
	assert.Contains(t, html, "<code>&lt;Notas&gt;</code>")
	assert.Contains(t, html, "<tr><td>4</td><td>Sale</td><td>Validation</td><td>Precio</td><td>-1</td><td>must be positive</td></tr>")
	assert.NotContains(t, html, "No errors.")
}

func TestImportSummaryPage_NoErrors(t *testing.T) {
	res := &core.ImportResult{ImportID: "imp-2", FileName: "x.csv", Message: "Import failed"}

	var buf bytes.Buffer
	require.NoError(t, ImportSummaryPage(res).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `<p class="fail"><strong>Failed</strong>: Import failed</p>`)
	assert.Contains(t, buf.String(), "No errors.")
	assert.NotContains(t, buf.String(), "Ignored columns")
}

func TestErrorPage_Render(t *testing.T) {
	msg := core.UserMessage{Message: "File <too> large", Action: "Split it", Code: "IMP002"}

	var buf bytes.Buffer
	require.NoError(t, ErrorPage(msg).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "<title>Error IMP002</title>")
	assert.Contains(t, buf.String(), `<h1 class="fail">File &lt;too&gt; large</h1>`)
	assert.Contains(t, buf.String(), `<p class="muted">Code: IMP002</p>`)
}

func TestErrorPage_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := ErrorPage(core.UserMessage{Code: "ERR000"}).Render(ctx, &buf)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
