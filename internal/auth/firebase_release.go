//go:build !devauth

package auth

// Signature verification is always on in release builds.
const skipFirebaseSignature = false
