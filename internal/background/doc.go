/*
Package background is the privileged agent.

The Router receives raw control messages from the isolated agent, decodes
them into the closed message union and runs the handler for the tag. Every
message gets exactly one reply:

	decoded, handler succeeds   K_SUCCESS
	decoded, handler fails      K_ERROR {statusCode, message, code}
	known tag, bad body         K_ERROR 400 invalid_request
	missing or unknown tag      UNKNOWN_MESSAGE

Messages are handled concurrently, one goroutine each, with at most
DefaultMaxInFlight handlers running at a time. Handlers share one
Session, which owns the stored credential and the session-scoped OAuth
state. The credential is read once at the start of each backend call, so a
sign-out racing an in-flight call surfaces as a 401 on that call.

	session := background.NewSession(durable, launcher, 5*time.Minute, logger, metrics)
	router, err := background.NewRouter(background.NewHandlers(crmClient, session, tabs, logger).Table(), logger, metrics, tracer)
*/
package background
