/*
Package page is the page-world side of extraction.

The observer listens on the event bridge for extraction requests, reads the
host application's internal client state and answers with a normalized
snapshot: the active chat, its participant directory and the message history
in ascending timestamp order.

# Evaluators

The object graph is read by an embedded JavaScript walker that returns JSON.
The walker is evaluated through an Evaluator:

  - Runtime: a goja VM holding a scripted page. Used by tests and by the
    extract command against a saved page script.
  - Live: a tab in a real browser driven through rod.

Nothing is cached between requests. The host page may replace its state at
any time, so every request walks the graph again.

# Outcomes

	ready, active chat       success, messages (possibly empty), chat
	ready, no active chat    failure "No active chat"
	state not initialized    failure, code not_ready
	walker throws            failure, code traversal_failed

# Usage

	rt, _ := page.NewRuntime(page.DefaultConfig(), logger)
	_ = rt.Load(pageScript)

	obs := page.NewObserver(bus, rt, logger)
	obs.Attach()
	defer obs.Detach()
*/
package page
