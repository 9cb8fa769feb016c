// Package database provides the local SQLite state store of anonyreport.
//
// The StateDB keeps what must survive between runs on the respondent's
// machine:
//   - the session token, created once and attached to every submission
//   - the "completed" flag, set only after the backend accepted a response
//   - a log of submission attempts (status and digests, never the answers)
//
// The token is stored in the clear because it is sent with every attempt;
// the attempt log only holds SHA3 digests so it does not link the machine
// to a particular response.
//
// We use SQLite via modernc.org/sqlite: a single CGO-free file with no
// server to run.
package database
