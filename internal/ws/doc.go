// Package ws serves the runtime channel at /runtime.
//
// Every frame is a runtime.Envelope. The handler hands the inner message to
// the router and writes the reply back under the same envelope id, so a
// single connection may carry many requests in flight at once.
//
// Example Usage:
//
//	handler := ws.NewHandler(router, logger, metrics)
//	engine.GET("/runtime", handler.HandleConnection)
package ws
