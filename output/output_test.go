package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandalgo/vandal/heuristics"
	"github.com/vandalgo/vandal/query"
	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/trace"
)

func timestampFinding(t *testing.T) Finding {
	t.Helper()
	h := heuristics.TimestampDependency{}
	trc := "" +
		"0,0,1,TIMESTAMP,_,_,0x64\n" +
		"2,0,1,PUSH1,_,_,0x0\n" +
		"4,0,1,ADD,_,_,0x0\n" +
		"6,0,1,PUSH1,_,_,0x1\n" +
		"7,0,1,JUMPI,_,_,0x"

	ops, err := trace.Decode(trc)
	require.NoError(t, err)
	prog, err := tac.Lift(ops, "0xdead")
	require.NoError(t, err)

	views, _, err := query.LoadViews(prog, h.RequiredOps())
	require.NoError(t, err)

	results, err := h.Analyze(views)
	require.NoError(t, err)
	require.True(t, heuristics.IsVulnerable(results))

	return Finding{Heuristic: h.Name(), TxHash: "0xabc123", Results: results}
}

func TestJSONSinkWritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	sink := JSONSink{Dir: dir}

	finding := timestampFinding(t)
	require.NoError(t, sink.Write(finding))

	path := filepath.Join(dir, "timestamp-0xabc123.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "timestamp", doc.Heuristic)
	assert.Equal(t, "0xabc123", doc.TxHash)
	assert.Equal(t, []string{"TIMESTAMP.op_index", "JUMPI.op_index"}, doc.Keys)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, float64(0), doc.Rows[0][0])
	assert.Equal(t, float64(4), doc.Rows[0][1])
}

func TestTableSinkPrintsBannerAndTable(t *testing.T) {
	var buf bytes.Buffer
	sink := TableSink{Writer: &buf}

	require.NoError(t, sink.Write(timestampFinding(t)))

	out := buf.String()
	assert.Contains(t, out, "Found vulnerable: 0xabc123 from timestamp heuristic")
	assert.Contains(t, out, "TIMESTAMP OP INDEX")
	assert.Contains(t, out, "JUMPI OP INDEX")
}

func TestTableSinkSkipsTableWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	sink := TableSink{Writer: &buf}

	require.NoError(t, sink.Write(Finding{Heuristic: "timestamp", TxHash: "0xnone", Results: &query.Results{}}))

	out := buf.String()
	assert.Contains(t, out, "Found vulnerable: 0xnone from timestamp heuristic")
	assert.NotContains(t, out, "OP INDEX")
}
