// Package input provides interactive terminal input utilities.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Option is one choice in a Select or MultiSelect prompt.
type Option struct {
	Value string
	Help  string
}

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter. Nil arguments default to stdin/stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Prompt asks the user for text input with an optional default value.
// If the user presses Enter without typing anything, the default is returned.
//
// Example:
//
//	name := p.Prompt("Project name", "my-v1-app")
//	// Displays: Project name (my-v1-app): _
func (p *Prompter) Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(p.out, promptStyle.Render(message)+" "+
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue))+": ")
	} else {
		fmt.Fprint(p.out, promptStyle.Render(message)+": ")
	}

	line, ok := p.readLine()
	if !ok || line == "" {
		return defaultValue
	}
	return line
}

// Confirm asks the user a yes/no question.
// Returns true if the user answers yes (y/Y/yes/YES), false otherwise.
// If defaultYes is true, pressing Enter returns true.
//
// Example:
//
//	if p.Confirm("Do you want to add any services?", true) { ... }
//	// Displays: Do you want to add any services? [Y/n]: _
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	line, ok := p.readLine()
	if !ok || line == "" {
		return defaultYes
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes"
}

// Select asks the user to pick one option by number or value. Invalid answers
// re-prompt; end of input returns the default.
//
// Example:
//
//	pm := p.Select("Select a package manager", pms, 0)
func (p *Prompter) Select(message string, options []Option, defaultIndex int) string {
	if len(options) == 0 {
		return ""
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}

	p.renderOptions(message, options)
	for {
		fmt.Fprint(p.out, hintStyle.Render(fmt.Sprintf("Choice (%s): ", options[defaultIndex].Value)))
		line, ok := p.readLine()
		if !ok || line == "" {
			return options[defaultIndex].Value
		}
		if idx, found := lookup(options, line); found {
			return options[idx].Value
		}
		fmt.Fprintln(p.out, hintStyle.Render(fmt.Sprintf("  %q is not one of the options", line)))
	}
}

// MultiSelect asks the user to pick any number of options as a comma or
// space separated list of numbers or values. An empty answer selects nothing.
func (p *Prompter) MultiSelect(message string, options []Option) []string {
	if len(options) == 0 {
		return nil
	}

	p.renderOptions(message, options)
	for {
		fmt.Fprint(p.out, hintStyle.Render("Choices (e.g. 1,3 or empty for none): "))
		line, ok := p.readLine()
		if !ok || line == "" {
			return nil
		}

		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
		picked := make([]string, 0, len(fields))
		seen := make(map[int]bool, len(fields))
		valid := true
		for _, f := range fields {
			idx, found := lookup(options, f)
			if !found {
				fmt.Fprintln(p.out, hintStyle.Render(fmt.Sprintf("  %q is not one of the options", f)))
				valid = false
				break
			}
			if !seen[idx] {
				seen[idx] = true
				picked = append(picked, options[idx].Value)
			}
		}
		if valid {
			return picked
		}
	}
}

func (p *Prompter) renderOptions(message string, options []Option) {
	fmt.Fprintln(p.out, promptStyle.Render(message))
	for i, opt := range options {
		line := fmt.Sprintf("  %d) %s", i+1, opt.Value)
		if opt.Help != "" {
			line = itemStyle.Render(line) + hintStyle.Render("  "+opt.Help)
		} else {
			line = itemStyle.Render(line)
		}
		fmt.Fprintln(p.out, line)
	}
}

func (p *Prompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func lookup(options []Option, answer string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	for i, opt := range options {
		if strings.EqualFold(opt.Value, answer) {
			return i, true
		}
	}
	return 0, false
}
