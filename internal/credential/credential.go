// Copyright 2026 The TenantGov Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package credential produces one-time secrets for tenant admins and handles
// their adaptive hashing. The plaintext of a generated secret is handed to the
// caller exactly once and is never persisted or logged.
package credential

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Character classes for temporary passwords. Every generated secret contains
// at least one character from each class.
const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*"
	allChars    = upperChars + lowerChars + digitChars + symbolChars
)

// DefaultLength is the length of generated temporary passwords.
const DefaultLength = 14

// Generator produces temporary passwords from a cryptographically secure
// random source.
type Generator struct {
	length int
}

// NewGenerator creates a generator. Lengths below four cannot satisfy the
// per-class guarantee and are raised to DefaultLength.
func NewGenerator(length int) *Generator {
	if length < 4 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// GenerateTemporaryPassword returns a fresh secret containing at least one
// uppercase letter, one lowercase letter, one digit and one symbol. The four
// mandatory characters are drawn first, the rest from the union set, and the
// whole string is then permuted. The permutation reorders but never removes,
// so the per-class guarantee survives it.
func (g *Generator) GenerateTemporaryPassword() string {
	chars := make([]byte, 0, g.length)
	chars = append(chars,
		upperChars[randInt(len(upperChars))],
		lowerChars[randInt(len(lowerChars))],
		digitChars[randInt(len(digitChars))],
		symbolChars[randInt(len(symbolChars))],
	)
	for len(chars) < g.length {
		chars = append(chars, allChars[randInt(len(allChars))])
	}

	// Fisher-Yates with the same secure source
	for i := len(chars) - 1; i > 0; i-- {
		j := randInt(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars)
}

// randInt returns a uniform random int in [0, n) from crypto/rand.
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic(err)
	}
	return int(v.Int64())
}

// Hasher wraps bcrypt with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the given bcrypt cost.
func NewHasher(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// Hash hashes plaintext at the hasher's configured cost.
func (h *Hasher) Hash(plaintext string) (string, error) {
	return h.HashWithCost(plaintext, h.cost)
}

// HashWithCost hashes plaintext at an explicit cost. The lower seeding cost
// is only ever passed by administrative seeding paths.
func (h *Hasher) HashWithCost(plaintext string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
