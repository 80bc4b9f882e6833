// Package ratelimit bounds the number of outbound completion calls inside a
// trailing time window.
//
// A [Limiter] remembers the admission time of every call made within the last
// window. When the window is full, [Limiter.Acquire] blocks until the oldest
// admission ages out and then re-checks, so the number of admissions younger
// than the window never exceeds the ceiling. State is in memory and scoped to
// one process.
package ratelimit
