package view

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
)

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// SurveyConfirmer prompts on the terminal. Any prompt error, including an
// interrupt, counts as a refusal.
type SurveyConfirmer struct {
	Opts []survey.AskOpt
}

func (c SurveyConfirmer) Confirm(message string) bool {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok, c.Opts...); err != nil {
		log.Debug().Err(err).Msg("confirm prompt aborted")
		return false
	}
	return ok
}
