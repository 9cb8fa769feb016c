// Package model defines the data structures shared by the survey client.
//
// This package contains the following main types:
//   - StepID: Identifies one question screen of the questionnaire
//   - Question: What a step shows (prompt and input groups)
//   - AnswerSet: The answers collected so far, keyed by Field
//   - Session: The respondent's session token and start time
//   - SubmissionRecord: The immutable payload sent to the collection endpoint
//   - Readiness: The backend liveness state
//
// Types live here so that the survey, submission, api and report packages
// can share them without import cycles.
package model
