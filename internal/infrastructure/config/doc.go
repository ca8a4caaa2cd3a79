// Package config loads and validates Sensornet Core configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (SENSORNET_* pattern). Validation runs at load time so
// misconfiguration is caught at startup, not at first request — in
// particular, the daemon refuses to start without a JWT signing secret.
package config
