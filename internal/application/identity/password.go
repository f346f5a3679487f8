package identity

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for generated passwords. Ambiguous characters (0/O, 1/l/I) are
// left out because these passwords get typed from a mail.
const (
	passwordLetters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSymbols = "!#%+?"

	temporaryPasswordLength = 12
)

// generateTemporaryPassword builds a random password that satisfies the
// account password rules: at least one letter and one digit are always
// present.
func generateTemporaryPassword() (string, error) {
	chars := make([]byte, temporaryPasswordLength)

	letter, err := randomChar(passwordLetters)
	if err != nil {
		return "", err
	}
	digit, err := randomChar(passwordDigits)
	if err != nil {
		return "", err
	}
	chars[0] = letter
	chars[1] = digit

	all := passwordLetters + passwordDigits + passwordSymbols
	for i := 2; i < temporaryPasswordLength; i++ {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}

	// Shuffle so the guaranteed characters are not always in front.
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := n.Int64()
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
