// Package message renders the respondent-facing texts.
//
// Messages are kept in embedded TOML files (one per language) and rendered
// with go-i18n. Spanish is the questionnaire's language and the fallback for
// any message missing in another language.
package message
