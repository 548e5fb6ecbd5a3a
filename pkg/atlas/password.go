package atlas

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const DefaultPasswordLength = 24

// Character classes exclude characters which are easily confused like 0/O and 1/l/I.
const (
	upperCharacters  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerCharacters  = "abcdefghijkmnpqrstuvwxyz"
	digitCharacters  = "23456789"
	symbolCharacters = "!@#$%^&*-_=+"
	allCharacters    = upperCharacters + lowerCharacters + digitCharacters + symbolCharacters
)

var characterClasses = []string{upperCharacters, lowerCharacters, digitCharacters, symbolCharacters}

// GeneratePassword returns a random password of the given length containing at least one upper
// case letter, one lower case letter, one digit and one symbol.
func GeneratePassword(length int) (string, error) {
	if length < len(characterClasses) {
		return "", fmt.Errorf("password length must be at least %d, got %d", len(characterClasses), length)
	}

	password := make([]byte, 0, length)
	for _, class := range characterClasses {
		c, err := randomCharacter(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	for len(password) < length {
		c, err := randomCharacter(allCharacters)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	if err := shuffle(password); err != nil {
		return "", err
	}

	return string(password), nil
}

func randomCharacter(alphabet string) (byte, error) {
	i, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

// shuffle is a Fisher-Yates shuffle so the guaranteed characters don't always lead the password.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random number: %w", err)
	}
	return int(v.Int64()), nil
}
