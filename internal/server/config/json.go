package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/roomchat/internal/flagx"
	"github.com/dmitrijs2005/roomchat/internal/timex"
)

// JsonConfig is the shape of the optional JSON config file. Durations accept
// both "1m" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	MetricsAddr                  string         `json:"metrics_addr"`
	WriteRate                    float64        `json:"write_rate"`
	WriteBurst                   int            `json:"write_burst"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ArchiveLinkTTL               timex.Duration `json:"archive_link_ttl"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config, if any, and copies the
// fields it sets into config. Panics when the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTokenValidityDuration.Duration > 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.ArchiveLinkTTL.Duration > 0 {
		config.ArchiveLinkTTL = c.ArchiveLinkTTL.Duration
	}
	if c.WriteRate > 0 {
		config.WriteRate = c.WriteRate
	}
	if c.WriteBurst > 0 {
		config.WriteBurst = c.WriteBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
