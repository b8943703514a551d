// Package app provides application initialization and lifecycle management
// for the shiftcal web service. It wires configuration, logging,
// observability and the roster services into one HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration from environment and optional YAML file
//	2. Initialize logging and OpenTelemetry
//	3. Build the scan engine, downloader and shift service
//	4. Set up HTTP handlers and middleware
//	5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then lets active requests finish within
// the configured shutdown timeout and flushes the telemetry providers.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, so main controls the exit code.
package app
