package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

func (p Argon2idParams) normalized() Argon2idParams {
	if p.Time == 0 {
		return defaultArgon2idParams()
	}
	return p
}

// hashPasswordArgon2id returns a PHC formatted hash:
// $argon2id$v=19$m=<kib>,t=<time>,p=<threads>$<salt>$<hash>
func hashPasswordArgon2id(password string, p Argon2idParams) (string, error) {
	p = p.normalized()
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.WithStack(err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyPasswordArgon2id checks password against a PHC formatted hash and
// returns the parameters the hash was created with
func verifyPasswordArgon2id(encoded, password string) (Argon2idParams, bool, error) {
	p, salt, hash, err := parseArgon2id(encoded)
	if err != nil {
		return p, false, err
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(hash)))
	return p, subtle.ConstantTimeCompare(key, hash) == 1, nil
}

func parseArgon2id(encoded string) (p Argon2idParams, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		err = errors.New("unsupported password hash format")
		return
	}
	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		err = errors.New("unsupported argon2 version")
		return
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Parallelism); err != nil {
		err = errors.Wrap(err, "invalid argon2id parameters")
		return
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		err = errors.WithStack(err)
		return
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		err = errors.WithStack(err)
		return
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(hash))
	return
}
