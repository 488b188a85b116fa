package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/config"
)

func TestConfigShow(t *testing.T) {
	for _, args := range [][]string{nil, {"show"}} {
		h := newHarness(t)
		h.app.Config.BaseURL = "http://lists.test"
		h.app.Config.Sources["base_url"] = string(config.SourceFlag)

		require.NoError(t, h.run(NewConfigCmd(), args...))

		env := h.envelope(t)
		assert.Equal(t, "Effective configuration", env.Summary)

		var data map[string]map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, map[string]string{"value": "http://lists.test", "source": "flag"}, data["base_url"])
		assert.Equal(t, map[string]string{"value": "200ms", "source": "default"}, data["edit_blur_delay"])
		assert.Equal(t, "1", data["owner_id"]["value"])
		assert.NotContains(t, data, "log_file", "unset keys are omitted")
		assert.NotContains(t, data, "stats")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	h := newHarness(t)

	require.NoError(t, h.run(NewConfigCmd(), "path"))

	var data map[string]string
	require.NoError(t, json.Unmarshal(h.envelope(t).Data, &data))
	assert.Equal(t, "/cfg/shoplist/config.yaml", data["global_config"])
	assert.Equal(t, "/state/shoplist/shoplist.log", data["log_file"])
}

func TestConfigPath_ConfiguredLogFile(t *testing.T) {
	h := newHarness(t)
	h.app.Config.LogFile = "/tmp/list.log"

	require.NoError(t, h.run(NewConfigCmd(), "path"))

	var data map[string]string
	require.NoError(t, json.Unmarshal(h.envelope(t).Data, &data))
	assert.Equal(t, "/tmp/list.log", data["log_file"])
}
