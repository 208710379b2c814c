// Package common holds small helpers shared by the client packages.
package common

// WipeByteArray overwrites b with zeros. It is used to drop passwords from
// memory once they have been sent. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
