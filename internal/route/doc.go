// Package route describes the backend integrations the gateway forwards to.
//
// A Descriptor pairs a public match pattern ("<name>/{**remainder}") with a
// destination and an outbound request transform. Descriptors come in a closed
// set of kinds; each kind selects its transform at construction and carries it
// as data. The Registry holds the descriptors assembled at startup and is
// read-only once the gateway starts serving.
package route
