package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-china/dotenvx-go/internal/envfile"
)

var sampleEntries = []envfile.Entry{
	{Key: "HELLO", Value: "World"},
	{Key: "MOTD", Value: "two words"},
}

func TestEmitEntries(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, emitEntries(&buf, sampleEntries, "text"))
		assert.Equal(t, "HELLO=World\nMOTD=two words\n", buf.String())
	})

	t.Run("shell quotes where needed", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, emitEntries(&buf, sampleEntries, "shell"))
		assert.Equal(t, "export HELLO=World\nexport MOTD='two words'\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, emitEntries(&buf, sampleEntries, "json"))
		var values map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &values))
		assert.Equal(t, map[string]string{"HELLO": "World", "MOTD": "two words"}, values)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, emitEntries(&buf, sampleEntries, "csv"))
		assert.Equal(t, "HELLO,World\nMOTD,two words\n", buf.String())
	})

	t.Run("raw", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, emitEntries(&buf, sampleEntries, "raw"))
		assert.Equal(t, "World\ntwo words\n", buf.String())
	})

	t.Run("unknown format is rejected, not silently text", func(t *testing.T) {
		var buf bytes.Buffer
		err := emitEntries(&buf, sampleEntries, "xml")
		assert.Error(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestEmitValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitValue(&buf, "HELLO", "World", "text"))
	assert.Equal(t, "World\n", buf.String())

	buf.Reset()
	require.NoError(t, emitValue(&buf, "HELLO", "two words", "shell"))
	assert.Equal(t, "export HELLO='two words'\n", buf.String())
}
