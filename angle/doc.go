// Package angle holds the vocabulary of the native shader translator:
// input specifications, output dialects, shader stages, compile option
// flags and built-in resource limits, together with the integer constants
// the translator's C interface expects for each of them.
//
// Everything here is a pure value; nothing talks to the translator.
// Querying the translator's default resource limits lives in package
// validator because it needs an initialized engine.
package angle
