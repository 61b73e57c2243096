// Package testsupport provides shared helpers for tests: temp-dir configs,
// real tier constructors, in-memory fakes with failure injection, and
// entity fixtures.
package testsupport
