// Package report writes what the respondent keeps after submitting.
//
// A Receipt lists the submitted answers, the SHA3-256 digest of the exact
// record that was sent and the submission time. It never contains the
// session token. Writers render it as plain text for the terminal, JSON for
// scripts or Markdown for sharing, and also render region listings for the
// regions command.
package report
