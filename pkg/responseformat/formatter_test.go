package responseformat

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type summary struct {
	RunID    string    `json:"run_id"`
	Segments []segment `json:"segments"`
}

type segment struct {
	ID     int     `json:"id"`
	Length float64 `json:"length"`
}

var testSummary = summary{
	RunID:    "0d6c4b8e",
	Segments: []segment{{ID: 1, Length: 0.04}, {ID: 2, Length: 0.05}},
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(false).Write(&buf, FormatJSON, testSummary))

	assert.JSONEq(t, `{"run_id":"0d6c4b8e","segments":[{"id":1,"length":0.04},{"id":2,"length":0.05}]}`, buf.String())
	assert.NotContains(t, buf.String(), "\n  ")

	buf.Reset()
	require.NoError(t, NewFormatter(true).Write(&buf, FormatJSON, testSummary))
	assert.Contains(t, buf.String(), "\n  \"run_id\"")

	var decoded summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testSummary, decoded)
}

func TestWriteMsgPackUsesJSONTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(true).Write(&buf, FormatMsgPack, testSummary))

	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "0d6c4b8e", decoded["run_id"])
	assert.Len(t, decoded["segments"], 2)
}

func TestWriteUnsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewFormatter(false).Write(&buf, Format("xml"), testSummary))
	assert.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"MsgPack", FormatMsgPack, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatMsgPack, FormatForPath("out/summary.MSGPACK"))
	assert.Equal(t, FormatMsgPack, FormatForPath("summary.mpk"))
	assert.Equal(t, FormatJSON, FormatForPath("summary.json"))
	assert.Equal(t, FormatJSON, FormatForPath("summary"))
}
