/*
Package oauth implements the two halves of the sign-in handshake.

The isolated agent (Initiator) builds a state token, asks the backend for an
authorization URL carrying that state, and hands both to the privileged
router as SIGN_IN_START. The privileged agent (Coordinator) parks the state in
session storage, runs the interactive flow and inspects the redirect:

	UNAUTHENTICATED
	  -> AWAITING_AUTHORIZATION_URL     (Initiator)
	  -> AWAITING_INTERACTIVE_RESULT    (Coordinator)
	  -> AUTHENTICATED | FAILED

The backend checks the echoed state server-side. A redirect is accepted only
if it carries both verification_code and success=true. The session state is
erased once the flow ends, whatever the outcome, so a retry always starts
clean.
*/
package oauth
