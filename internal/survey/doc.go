// Package survey implements the questionnaire navigation state machine.
//
// The package is split into a pure decision layer and an effectful controller:
//   - NextStep: the step graph, a pure function of (current step, answers)
//   - History: visited steps and the current position, for backward movement
//   - Validator: decides whether the visible step may be left
//   - Controller: applies advance, retreat and submit intents and tells a
//     Presenter what to show
//
// Only the Controller has side effects. The decision functions can be tested
// without any presentation layer.
package survey
