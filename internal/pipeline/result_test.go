package processor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageMarshalsAsSingleKeyObject(t *testing.T) {
	b, err := json.Marshal(Page{Index: 0, Text: "hello world"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":"hello world"}`, string(b))
}

func TestPageUnmarshalRoundTrip(t *testing.T) {
	var p Page
	require.NoError(t, json.Unmarshal([]byte(`{"7":"page text"}`), &p))
	assert.Equal(t, 7, p.Index)
	assert.Equal(t, "page text", p.Text)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"0":"x","1":"y"}`), &p))
}

func TestProcessedResultWireShape(t *testing.T) {
	res := Result{
		Status:        StatusProcessed,
		JSONData:      []Page{{Index: 0, Text: "fixed a"}, {Index: 1, Text: "fixed b"}},
		OCROutput:     []Page{{Index: 0, Text: "raw a"}, {Index: 1, Text: "raw b"}},
		ProcessedDate: "2026-08-31T12:00:00Z",
	}

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "processed",
		"json_data": [{"0":"fixed a"},{"1":"fixed b"}],
		"ocr_output": [{"0":"raw a"},{"1":"raw b"}],
		"processed_date": "2026-08-31T12:00:00Z"
	}`, string(b))
}

func TestFailedResultCarriesOnlyMessage(t *testing.T) {
	b, err := json.Marshal(Failed("No data extracted"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","message":"No data extracted"}`, string(b))
}
