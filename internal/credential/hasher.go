// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package credential provides one-way password hashing and verification.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// Hasher hashes plaintext credentials and verifies candidates against
// stored hashes. Hashing is CPU-bound on purpose; callers on a hot path
// should run it off the request goroutine.
type Hasher interface {
	// Hash produces a salted one-way hash of the plaintext. Every call
	// generates fresh salt, so hashing the same input twice yields two
	// different stored values. The empty string is a valid input.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the stored hash. It never
	// returns an error: a malformed, empty, or absent stored value is a
	// mismatch. The comparison of derived keys is constant time.
	Verify(plaintext, stored string) bool
}

// Argon2idHasher implements Hasher using argon2id in PHC string format.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the plaintext.
func (h *Argon2idHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("CREDENTIAL_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify reports whether plaintext matches the stored argon2id hash.
// Any parse failure of the stored value is treated as a mismatch rather
// than an error, so callers can branch on a single boolean.
func (h *Argon2idHasher) Verify(plaintext, stored string) bool {
	params, salt, expected, ok := decodeHash(stored)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt, params.time, params.memory, params.threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash parses a PHC-format argon2id string into its parameters,
// salt, and derived key. ok is false for anything that is not a
// well-formed argon2id hash.
func decodeHash(stored string) (params argon2Params, salt, key []byte, ok bool) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return params, nil, nil, false
	}
	if threads == 0 || threads > 255 {
		return params, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, false
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1<<30 {
		return params, nil, nil, false
	}

	params = argon2Params{memory: memory, time: time, threads: uint8(threads)}
	return params, salt, key, true
}
