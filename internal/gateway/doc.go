/*
Package gateway is the privileged agent's client for the CRM backend.

Every authenticated call carries the stored credential as a bearer header.
Failures come back as *Error with a closed set of outcomes:

	no credential stored   401  Not authenticated (no request is made)
	401                    401  Authentication expired. Please sign in again.
	                            (the stored credential is deleted)
	404                    404  <Resource> not found
	429                    429  Too many requests. Please try again later.
	500                    500  Server error. Please try again later.
	any other non-2xx      raw  An error occurred. Please try again.
	no response at all       0  Unable to connect. Please check your connection.

The client never retries. Status 0 is the caller's hint that the failure is
likely transient.
*/
package gateway
