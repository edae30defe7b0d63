package accounts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/k2wGG/Check-bot/internal/model"
)

var ErrMalformed = errors.New("malformed credential line")

// Load reads the accounts file and returns its non-blank lines. Lines
// starting with '#' are treated as comments.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Parse classifies one credential line. No '@' means a bearer token; an
// '@' with no ':' separator is malformed.
func Parse(line string) (model.Credential, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Credential{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	if !strings.Contains(line, "@") {
		return model.Credential{Token: line}, nil
	}
	email, password, ok := strings.Cut(line, ":")
	if !ok || email == "" || password == "" {
		return model.Credential{}, fmt.Errorf("%w: expected email:password", ErrMalformed)
	}
	return model.Credential{Email: email, Password: password}, nil
}

// MaskEmail keeps the first and last three characters of the local part.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return MaskToken(email)
	}
	return clip(local, 3) + "***" + clipEnd(local, 3) + "@" + domain
}

// MaskToken keeps the first four and last four characters.
func MaskToken(token string) string {
	return clip(token, 4) + "*****" + clipEnd(token, 4)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clipEnd(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
