// Package config loads the shiftcal configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file named by SHIFTCAL_CONFIG, or config.yaml
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables follow the pattern SHIFTCAL_<SECTION>_<FIELD>:
//
//	SHIFTCAL_SERVER_PORT=8080
//	SHIFTCAL_SCAN_PAST_POLICY=inclusive
//	SHIFTCAL_SCAN_ROLE_PREFIXES=open,close,flex,dm support
//	SHIFTCAL_CALENDAR_TIME_ZONE=Australia/Sydney
//	SHIFTCAL_TELEMETRY_TRACE_EXPORTER=stdout
//
// An environment value equal to the default counts as unset when a file
// provides the field.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := shiftscan.NewEngine(cfg.EngineParams())
package config
