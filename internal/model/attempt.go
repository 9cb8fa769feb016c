package model

import "time"

// SubmissionStatus is how a submission attempt ended.
type SubmissionStatus string

const (
	// StatusAccepted means the collection endpoint answered 2xx.
	StatusAccepted SubmissionStatus = "accepted"

	// StatusRejected means the endpoint answered with a non-2xx status.
	StatusRejected SubmissionStatus = "rejected"

	// StatusNetworkError means no response arrived.
	StatusNetworkError SubmissionStatus = "network-error"
)

// String returns the status name.
func (s SubmissionStatus) String() string {
	return string(s)
}

// Attempt is one explicit submit made by the respondent.
type Attempt struct {
	// Token is the session token the record carried.
	Token string

	// Status is how the attempt ended.
	Status SubmissionStatus

	// Detail is the server message for a rejection or the transport error text.
	Detail string

	// Record is the payload that was sent.
	Record SubmissionRecord

	// At is when the attempt finished.
	At time.Time
}
