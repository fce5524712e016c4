package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-viewengine/internal/config"
)

var errAborted = errors.New("viewengine-cli: prompt aborted")

// prompter asks for a single value. It abstracts survey so param prompting
// can be tested without a terminal.
type prompter interface {
	Input(ctx context.Context, prompt config.Prompt) (string, error)
}

type surveyPrompter struct{}

func newSurveyPrompter() prompter {
	return surveyPrompter{}
}

func (surveyPrompter) Input(ctx context.Context, prompt config.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	input := &survey.Input{
		Message: prompt.Message,
		Default: prompt.Default,
		Help:    prompt.Help,
	}
	if err := survey.AskOne(input, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	return out, nil
}

// promptParams asks for every configured prompt whose param is not set yet.
func promptParams(ctx context.Context, p prompter, prompts []config.Prompt, params map[string]any) error {
	for _, prompt := range prompts {
		if _, ok := params[prompt.Name]; ok {
			continue
		}
		value, err := p.Input(ctx, prompt)
		if err != nil {
			return err
		}
		params[prompt.Name] = value
	}
	return nil
}
