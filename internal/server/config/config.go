// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the roomchat document store server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps everything in memory.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - SessionTokenValidityDuration: session token lifetime.
//   - MetricsAddr: bind address of the Prometheus /metrics endpoint. Empty disables it.
//   - WriteRate / WriteBurst: per-session write limit, requests per second and burst.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings for transcripts.
//   - ArchiveLinkTTL: lifetime of presigned transcript links.
type Config struct {
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	SecretKey                    string
	SessionTokenValidityDuration time.Duration
	MetricsAddr                  string
	WriteRate                    float64
	WriteBurst                   int
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	ArchiveLinkTTL               time.Duration
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionTokenValidityDuration = 1 * time.Hour
	c.MetricsAddr = ":9090"
	c.WriteRate = 5
	c.WriteBurst = 10
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "roomchat"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ArchiveLinkTTL = 15 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
