// Package log provides the logging abstraction used across seqbatch.
//
// Core packages log through the Logger interface so that library users can
// plug in their own logging. A zerolog-backed adapter and a no-op logger
// are provided:
//
//	zl, err := log.NewConsole(os.Stderr, "debug")
//	if err != nil {
//	    return err
//	}
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Tests and library callers that do not care about output use NewNoopLogger.
package log
