package timeline_test

import (
	"encoding/json"
	"testing"

	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    timeline.Format
		wantErr bool
	}{
		{name: "json", want: timeline.FormatJSON},
		{name: " MsgPack ", want: timeline.FormatMsgpack},
		{name: "yaml", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := timeline.ParseFormat(testCase.name)
			if testCase.wantErr {
				require.ErrorIs(t, err, timeline.ErrUnknownFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestFormat_Metadata(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "json", timeline.FormatJSON.FileExtension())
	assert.Equal(t, "application/json", timeline.FormatJSON.ContentType())
	assert.Equal(t, "msgpack", timeline.FormatMsgpack.FileExtension())
	assert.Equal(t, "application/vnd.msgpack", timeline.FormatMsgpack.ContentType())
}

func TestEncode_JSONShape(t *testing.T) {
	t.Parallel()

	tl, err := timeline.Build(convert(t, "no"), timeline.DefaultOptions())
	require.NoError(t, err)

	data, err := timeline.Encode(tl, timeline.FormatJSON)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "NO", raw["text"])

	events, ok := raw["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 2)

	first, ok := events[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "nn", first["viseme"])
	assert.InDelta(t, float64(timeline.OculusNN), first["visemeId"], tolerance)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	tl, err := timeline.Build(convert(t, "buongiorno, Italia"), timeline.Options{
		MsPerUnit:    80,
		PadSilence:   true,
		SilenceUnits: 1,
	})
	require.NoError(t, err)

	for _, format := range []timeline.Format{timeline.FormatJSON, timeline.FormatMsgpack} {
		data, err := timeline.Encode(tl, format)
		require.NoError(t, err)

		decoded, err := timeline.Decode(data, format)
		require.NoError(t, err)
		assert.Equal(t, tl, decoded, "format %s", format)
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := timeline.Encode(&timeline.Timeline{}, timeline.Format("xml"))
	require.ErrorIs(t, err, timeline.ErrUnknownFormat)

	_, err = timeline.Decode([]byte("{}"), timeline.Format("xml"))
	require.ErrorIs(t, err, timeline.ErrUnknownFormat)
}

func TestDecode_Corrupt(t *testing.T) {
	t.Parallel()

	_, err := timeline.Decode([]byte("{not json"), timeline.FormatJSON)
	require.Error(t, err)
}
