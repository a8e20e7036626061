// Package utils holds tiny cross-cutting helpers with no domain of their
// own.
package utils

// Must panics if err is non-nil, otherwise returns in unchanged. Intended
// for construction-time failures (e.g. a Kafka client that cannot reach its
// brokers at startup) that should never be recovered from locally.
func Must[T any](in T, err error) T {
	if err != nil {
		panic(err)
	}
	return in
}
