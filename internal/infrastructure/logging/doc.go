// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON, development mode writes colored console
// output. Each execution context (page, content, background, gateway, oauth)
// logs through a named child logger so a single stream can be filtered by
// the side of the sandbox boundary that produced a line.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	gw := gateway.New(gwConfig, creds, logger.For(logging.ContextGateway), metrics)
package logging
