/*
Package tracing provides lightweight request tracing.

A trace follows one control message from the isolated agent, through the
router and into the backend: the runtime envelope id seeds the trace id, the
router opens one span per dispatch, and the gateway forwards X-Trace-ID on
every outbound call so backend logs line up with ours.

	tracer := tracing.New("background", logger)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(ctx, "PERSON_LOOKUP")
	defer tracer.Finish(span)
*/
package tracing
