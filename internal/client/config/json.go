package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/roomchat/internal/flagx"
	"github.com/dmitrijs2005/roomchat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	Nickname            string         `json:"nickname"`
	Room                string         `json:"room"`
	DataDir             string         `json:"data_dir"`
	LogLevel            string         `json:"log_level"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	ScrollThreshold     int            `json:"scroll_threshold"`
	HighlightDuration   timex.Duration `json:"highlight_duration"`
	ViewportHeight      int            `json:"viewport_height"`
}

// parseJson overlays cfg with the fields present in the file given by -c or
// -config. Absent fields keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.Nickname, jc.Nickname)
	setString(&cfg.Room, jc.Room)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.HighlightDuration.Duration > 0 {
		cfg.HighlightDuration = jc.HighlightDuration.Duration
	}
	if jc.ScrollThreshold > 0 {
		cfg.ScrollThreshold = jc.ScrollThreshold
	}
	if jc.ViewportHeight > 0 {
		cfg.ViewportHeight = jc.ViewportHeight
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
