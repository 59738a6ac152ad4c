// Package types holds the records that cross context boundaries.
//
// Chat records (Message, Participant, Chat) come out of the page world and
// travel unchanged to the isolated agent. Extraction wire types ride the
// event bridge. CRM records (Person, Deal, Note, ...) travel between the
// isolated agent, the router and the backend.
package types
