/*
Package content is the isolated agent.

It sits between the page world and the privileged agent. The Extractor pulls
chat data out of the page over the event bridge with a correlated,
time-bounded request. The Relay forwards typed control messages to the
privileged router over the runtime channel and unwraps the typed reply.

	ext := content.NewExtractor(bus, 10*time.Second, logger, metrics)
	msgs, err := ext.Extract(ctx, content.Params{ContactName: "John", UserName: "Me"})
	if errors.Is(err, content.ErrExtractionTimeout) {
		// the page never answered; the caller decides whether to retry
	}
*/
package content
