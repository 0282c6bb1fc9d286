// Package password provides adaptive, salted password hashing. Digests
// use argon2id in PHC string format; verification is constant-time.
// Plaintext passwords never leave this package once hashed.
package password
