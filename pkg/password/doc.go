// Package password provides bcrypt-based credential hashing for user
// authentication.
//
// Hashes embed a random salt and the cost factor, so Verify needs only the
// stored hash and the candidate password. Comparison is delegated to bcrypt,
// which is constant-time with respect to the password; a malformed stored
// hash takes the same code path and simply fails verification.
//
// # Usage
//
//	hash, err := password.Hash("s3cret")
//	if err != nil {
//	    // handle error
//	}
//
//	if password.Verify("s3cret", hash) {
//	    // authenticated
//	}
package password
