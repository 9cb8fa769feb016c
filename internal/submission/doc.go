// Package submission coordinates the single request that delivers a finished
// questionnaire to the collection endpoint.
//
// A Coordinator checks the location fields locally, consults the readiness
// prober when the backend state is still unknown, builds the submission
// record and sends it exactly once. It never retries; the respondent submits
// again explicitly after a rejection or a network failure.
package submission
