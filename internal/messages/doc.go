/*
Package messages defines the control messages exchanged between the isolated
agent and the privileged router.

The set is closed. Every request kind K has exactly one success response
(K_SUCCESS) and one error response (K_ERROR). UNKNOWN_MESSAGE answers input
whose tag is missing or unrecognized. On the wire each message is a JSON
object whose "type" field carries the tag:

	{"type":"PERSON_LOOKUP","phone":"+15550100"}
	{"type":"PERSON_LOOKUP_SUCCESS","person":null}
	{"type":"PERSON_LOOKUP_ERROR","statusCode":401,"message":"Not authenticated"}

Request and Response are sealed interfaces. RequestTypes lists every request
kind so a dispatcher can verify at construction that it handles all of them.
*/
package messages
