package settings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// TerminalPasswordPrompt reads passwords from the terminal on in without echo.
func TerminalPasswordPrompt(in *os.File, out io.Writer) PasswordPrompter {
	return func(prompt string) (string, error) {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New("cannot prompt for a password: standard input is not a terminal")
		}
		fmt.Fprint(out, prompt)
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", errors.WithStack(err)
		}
		return string(password), nil
	}
}

// IsProduction reports whether server is the one named in the system-wide config.
func IsProduction(server string, system FileConfig) bool {
	return system.APIServerName != "" && strings.EqualFold(server, system.APIServerName)
}

// ConfirmProduction asks before running against the production server. Only an
// answer of "y" confirms.
func ConfirmProduction(in io.Reader, out io.Writer, server string) (bool, error) {
	fmt.Fprintf(out, "%s is the production server. Tests create and delete objects. Are you sure? (y/n) ", server)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "reading confirmation")
	}
	return strings.TrimSpace(answer) == "y", nil
}
