package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Ning0612/cptrash/internal/browser"
	"github.com/Ning0612/cptrash/internal/config"
)

// ErrNoInput is returned when the input closes before an answer is given
var ErrNoInput = errors.New("no input available")

// Prompter asks questions on a line-oriented terminal
type Prompter struct {
	in     *bufio.Reader
	file   *os.File
	out    io.Writer
	hidden func(fd int) ([]byte, error)
}

// NewPrompter reads answers from in and writes questions to out.
// Passwords are read without echo when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		hidden: term.ReadPassword,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

// Interactive reports whether answers come from a terminal
func (p *Prompter) Interactive() bool {
	return p.file != nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask prints question and returns the trimmed answer; empty answers are
// re-asked with required as the hint
func (p *Prompter) Ask(question, required string, validate func(string) error) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s %s ", theme.title.Render("?"), question)
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			fmt.Fprintln(p.out, theme.danger.Render(">> "+required))
			continue
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				fmt.Fprintln(p.out, theme.danger.Render(">> "+err.Error()))
				continue
			}
		}
		return answer, nil
	}
}

// AskPassword reads a password without echo on terminals
func (p *Prompter) AskPassword(question string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s %s ", theme.title.Render("?"), question)
		var answer string
		if p.file != nil {
			data, err := p.hidden(int(p.file.Fd()))
			fmt.Fprintln(p.out)
			if err != nil {
				return "", fmt.Errorf("failed to read password: %w", err)
			}
			answer = string(data)
		} else {
			line, err := p.readLine()
			if err != nil {
				return "", err
			}
			answer = line
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, theme.danger.Render(">> Password is required"))
	}
}

// Confirm asks a yes/no question
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	for {
		fmt.Fprintf(p.out, "%s %s %s ", theme.title.Render("?"), question, theme.muted.Render(hint))
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// PromptCredentials asks for whatever cfg is missing.
// askHeadless adds the headless question when no flag or setting chose it.
func (p *Prompter) PromptCredentials(cfg *config.Config, askHeadless bool) error {
	if len(cfg.Missing()) == 0 && !askHeadless {
		return nil
	}
	fmt.Fprintln(p.out)

	if cfg.URL == "" {
		answer, err := p.Ask("cPanel URL (e.g., https://example.com:2083):", "URL is required", config.ValidateURL)
		if err != nil {
			return err
		}
		cfg.URL = answer
	}

	if cfg.Username == "" {
		answer, err := p.Ask("cPanel username:", "Username is required", nil)
		if err != nil {
			return err
		}
		cfg.Username = answer
	}

	if cfg.Password == "" {
		answer, err := p.AskPassword("cPanel password:")
		if err != nil {
			return err
		}
		cfg.Password = answer
	}

	if askHeadless {
		headless, err := p.Confirm("Run in headless mode (no browser window)?", false)
		if err != nil {
			return err
		}
		cfg.Headless = headless
	}
	return nil
}

// SelectBrowser lets the user pick one of several installed browsers
func (p *Prompter) SelectBrowser(installed []browser.Installed) (browser.Installed, error) {
	switch len(installed) {
	case 0:
		return browser.Installed{}, fmt.Errorf("no browsers to choose from")
	case 1:
		return installed[0], nil
	}

	for i, b := range installed {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, b.Name)
	}
	answer, err := p.Ask("Select a browser to use:", "Please enter a number", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(installed) {
			return fmt.Errorf("enter a number between 1 and %d", len(installed))
		}
		return nil
	})
	if err != nil {
		return browser.Installed{}, err
	}
	n, _ := strconv.Atoi(answer)
	return installed[n-1], nil
}
