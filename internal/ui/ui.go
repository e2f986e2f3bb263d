// Package ui implements the interactive prompts of the mergegate panel.
package ui

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/mergegate/mergegate/pkg/mergebox"
	"github.com/mergegate/mergegate/pkg/platform"
)

const (
	// ActionPageSize is the number of actions to show at once in the selection UI.
	ActionPageSize = 10
)

var (
	// ErrNoEnabledActions is returned when every action for the current state is disabled.
	ErrNoEnabledActions = errors.New("no enabled actions for the current state")

	// ErrPromptCancelled is returned when the user cancels a prompt with Ctrl+C.
	ErrPromptCancelled = errors.New("prompt cancelled by user")
)

// Prompter asks for merge box decisions on an interactive terminal.
type Prompter struct{}

// NewPrompter creates a new prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// SelectAction presents the enabled actions and returns the chosen one.
// Disabled actions are not offered; the status render above the prompt
// already explains why they are missing.
func (p *Prompter) SelectAction(actions []mergebox.Action) (mergebox.Action, error) {
	enabled := make([]mergebox.Action, 0, len(actions))
	for _, action := range actions {
		if action.Enabled {
			enabled = append(enabled, action)
		}
	}
	if len(enabled) == 0 {
		return mergebox.Action{}, ErrNoEnabledActions
	}

	options := make([]string, len(enabled))
	for i, action := range enabled {
		options[i] = action.Title
	}

	prompt := &survey.Select{
		Message:  "Select action:",
		Options:  options,
		PageSize: ActionPageSize,
		Description: func(_ string, index int) string {
			option, ok := mergebox.OptionByKind(enabled[index].Option)
			if !ok {
				return ""
			}
			return option.Description
		},
	}

	var selectedIndex int
	if err := survey.AskOne(prompt, &selectedIndex); err != nil {
		return mergebox.Action{}, ErrPromptCancelled
	}

	return enabled[selectedIndex], nil
}

// ConfirmAction asks for the inline confirmation before an action runs.
// Close and branch deletion default to no, everything else to yes.
func (p *Prompter) ConfirmAction(action mergebox.Action, pr platform.PullRequest) (bool, error) {
	defaultYes := action.Kind != mergebox.ActionClose && action.Kind != mergebox.ActionDeleteBranch

	confirmed := false
	prompt := &survey.Confirm{
		Message: confirmMessage(action, pr),
		Default: defaultYes,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, ErrPromptCancelled
	}

	return confirmed, nil
}

// ConfirmBypass asks whether the current rule violations should be
// overridden. The caller prints the violation list first; the prompt itself
// stays on one line.
func (p *Prompter) ConfirmBypass(violations []platform.RuleViolation) (bool, error) {
	if len(violations) == 0 {
		return true, nil
	}

	confirmed := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Bypass %s and merge anyway?", violationSummary(violations)),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, ErrPromptCancelled
	}

	return confirmed, nil
}

func confirmMessage(action mergebox.Action, pr platform.PullRequest) string {
	switch action.Kind {
	case mergebox.ActionMergeOption:
		return fmt.Sprintf("%s #%d into %s?", action.Title, pr.Number, pr.TargetBranch)
	case mergebox.ActionDeleteBranch:
		return fmt.Sprintf("Delete branch %s?", pr.SourceBranch)
	case mergebox.ActionRestoreBranch:
		return fmt.Sprintf("Restore branch %s?", pr.SourceBranch)
	default:
		return fmt.Sprintf("%s #%d?", action.Title, pr.Number)
	}
}

func violationSummary(violations []platform.RuleViolation) string {
	if len(violations) == 1 {
		return fmt.Sprintf("%q", violations[0].Message)
	}
	return fmt.Sprintf("%d rule violations", len(violations))
}
