package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// PromptCredentials asks for email and password on the terminal.
// The password read is masked; if the terminal read fails (redirected stdin,
// interrupt during entry) it degrades to a plain line read.
func PromptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter your email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	password, err := readPassword(reader)
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	return email, password, nil
}

func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Enter your password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err == nil {
		return string(raw), nil
	}

	// degraded path: unmasked read
	log.Warnf("masked password input Failed {%s}, falling back to plain read", err.Error())
	fmt.Print("Enter your password (input not masked): ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
