// Package tui is the interactive terminal front end of the questionnaire.
//
// The survey.Controller decides; this package only renders. Key presses
// become controller intents run as tea.Cmd, and the controller's Presenter
// callbacks come back as tea messages through Presenter, so Update is the
// only place the screen state changes.
package tui
