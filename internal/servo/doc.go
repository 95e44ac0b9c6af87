// Package servo defines the shared primitives of the stabilizer console.
//
// The package holds the types every other package agrees on:
//
//   - [Channel]: closed set of telemetry channel identifiers
//   - [Sample]: one timestamped vector of channel readings
//   - the error taxonomy ([InvalidParameterError], [ConfigError],
//     [ParseError], [SampleError]) and its sentinels
//
// # Error Handling
//
// Every struct error unwraps to a sentinel so callers can branch with
// errors.Is:
//
//	if errors.Is(err, servo.ErrInvalidParameter) {
//	    // setup mistake, never retried
//	}
package servo
