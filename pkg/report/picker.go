package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// ErrAborted is returned when the user ends input before choosing both teams
var ErrAborted = errors.New("team selection aborted")

// lineReader is the part of readline the picker needs
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Picker asks for a home and an away team by number
type Picker struct {
	teams []string
	rl    lineReader
	out   io.Writer
}

// NewPicker opens a readline session on the terminal
func NewPicker(teams []string) (*Picker, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return &Picker{teams: teams, rl: rl, out: rl.Stdout()}, nil
}

func (p *Picker) Close() error {
	return p.rl.Close()
}

// ListTeams prints the numbered team list
func (p *Picker) ListTeams() {
	fmt.Fprintln(p.out, "Available teams:")
	for i, t := range p.teams {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, t)
	}
}

// Choose asks for both teams until two different valid numbers are given
func (p *Picker) Choose() (home, away string, err error) {
	if len(p.teams) < 2 {
		return "", "", fmt.Errorf("need at least two teams, have %d", len(p.teams))
	}
	p.ListTeams()
	for {
		hi, err := p.ask("Home team number: ")
		if err != nil {
			return "", "", err
		}
		ai, err := p.ask("Away team number: ")
		if err != nil {
			return "", "", err
		}
		if hi == ai {
			fmt.Fprintln(p.out, "A team cannot play itself, choose two different teams.")
			continue
		}
		return p.teams[hi], p.teams[ai], nil
	}
}

// ask re-prompts until the answer is a number from the list
func (p *Picker) ask(prompt string) (int, error) {
	p.rl.SetPrompt(prompt)
	for {
		line, err := p.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return 0, ErrAborted
			}
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > len(p.teams) {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(p.teams))
			continue
		}
		return n - 1, nil
	}
}
