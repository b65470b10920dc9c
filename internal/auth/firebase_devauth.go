//go:build devauth

package auth

// Built with -tags devauth: Firebase ID tokens are accepted without a
// signature check so local frontends can log in against emulators.
// Issuer, audience, and expiry are still enforced. Never ship this tag.
const skipFirebaseSignature = true
