package domain

import "errors"

// ErrFundNotFound is returned when a fund name is not present in the catalogue.
var ErrFundNotFound = errors.New("fund not found")

// ErrNoNAVData is returned when a fund exists but has no NAV history.
var ErrNoNAVData = errors.New("no NAV data available")

// ErrCacheMiss is returned by a CandidateCache that holds no list.
var ErrCacheMiss = errors.New("candidate cache miss")

// ErrSessionNotFound is returned when an animation session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoFetcher is reported when an activation is requested without a fetch function.
var ErrNoFetcher = errors.New("no candidate fetcher configured")

// ErrEmptySelection is returned when a suggestion value is blank.
var ErrEmptySelection = errors.New("empty selection")

// ErrInputTooLarge is returned when input exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// ErrInvalidUTF8 is returned when input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")
