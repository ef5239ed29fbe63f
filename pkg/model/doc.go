// Package model holds the taghive domain types (accounts, containers,
// events), the write payloads, the Store contract, and the shared error
// kinds. Every other package speaks in these types; none of them carries
// transport or storage concerns.
package model
