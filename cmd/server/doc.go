// Command chatrelay runs and drives the ChatRelay agent.
//
// The serve command is the privileged agent: it owns the stored credential,
// the interactive sign-in window and the CRM gateway, and answers control
// messages on its /runtime websocket. The other commands play the isolated
// side against a running agent or a page.
//
// Usage:
//
//	# Run the privileged agent
//	chatrelay serve --config chatrelay.yaml
//
//	# Read the active conversation from a scripted page
//	chatrelay extract --page-script page.js --user Alice
//
//	# Read the open chat tab and save it as a note on person 42
//	chatrelay extract --live --save-to 42
//
//	# Sign in, check, sign out
//	chatrelay signin
//	chatrelay status
//	chatrelay signout
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - YAML overlay via --config or CHATRELAY_CONFIG
//   - --log-level and --dev override logging
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
