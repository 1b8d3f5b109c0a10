package expression

import "github.com/rs/zerolog"

// testLogger is the no-op logger used across _test.go files that need to
// construct a Registry or Evaluator without asserting on log output.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
