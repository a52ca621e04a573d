// Package errors provides structured error types for container loading and
// export.
//
// Every failure carries the phase it occurred in (decode, resolve, load,
// export, io) and a kind from the fixed taxonomy, plus the container and
// object full name where available. Errors compare by phase and kind under
// errors.Is, so callers can match categories without string inspection.
package errors
