package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop passcodes from memory after use. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
