package main

import (
	"fmt"

	"github.com/pterm/pterm"
)

// prompter asks the player at the keyboard for a decision.
type prompter interface {
	// Select returns the index of the chosen option.
	Select(prompt string, options []string) (int, error)
	Confirm(prompt string, def bool) (bool, error)
}

type ptermPrompter struct{}

func (ptermPrompter) Select(prompt string, options []string) (int, error) {
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText(prompt).WithOptions(options).Show()
	if err != nil {
		return -1, err
	}
	for i, o := range options {
		if o == choice {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown choice %q", choice)
}

func (ptermPrompter) Confirm(prompt string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultText(prompt).WithDefaultValue(def).Show()
}
