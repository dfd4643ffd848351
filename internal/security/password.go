// Package security contiene el hashing de credenciales.
package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"signup-auth/internal/apperr"
)

// Parametros argon2id recomendados por OWASP.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// Cotas para los parametros leidos de un hash almacenado.
const (
	maxIterations = 16
	maxMemory     = 1 << 20 // KiB
)

// PasswordHasher convierte contrasenas en hashes almacenables y los verifica.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// Argon2Hasher usa argon2id con la clave secreta del servidor como material
// adicional: la contrasena se pre-firma con HMAC-SHA256(secret) antes de derivar.
type Argon2Hasher struct {
	secret []byte
	rand   func([]byte) (int, error)
}

func NewArgon2Hasher(secret string) (*Argon2Hasher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("secret key is required")
	}
	return &Argon2Hasher{secret: []byte(secret), rand: rand.Read}, nil
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := h.rand(salt); err != nil {
		return "", apperr.Wrap(apperr.Authentication("Could not hash password"), err)
	}

	key := argon2.IDKey(h.keyed(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify devuelve (false, nil) ante una contrasena incorrecta y error solo si
// el hash almacenado no se puede interpretar.
func (h *Argon2Hasher) Verify(encoded, password string) (bool, error) {
	fail := func(err error) (bool, error) {
		return false, apperr.Wrap(apperr.Authentication("Could not verify the password"), err)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return fail(errors.New("invalid hash format"))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fail(err)
	}
	if version != argon2.Version {
		return fail(fmt.Errorf("unsupported argon2 version %d", version))
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return fail(err)
	}
	if threads == 0 || threads > 255 {
		return fail(fmt.Errorf("invalid parallelism %d", threads))
	}
	if iterations == 0 || iterations > maxIterations {
		return fail(fmt.Errorf("invalid iterations %d", iterations))
	}
	if memory < 8*threads || memory > maxMemory {
		return fail(fmt.Errorf("invalid memory %d", memory))
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fail(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fail(err)
	}
	if len(expected) == 0 || len(expected) > 1024 {
		return fail(fmt.Errorf("invalid key length %d", len(expected)))
	}

	computed := argon2.IDKey(h.keyed(password), salt, iterations, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func (h *Argon2Hasher) keyed(password string) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
