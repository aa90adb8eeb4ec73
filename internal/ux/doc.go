// Package ux renders operator-facing terminal output for crosspost: timestamped
// progress lines, the final summary table and simple line prompts.
//
// Everything here writes human-readable text; structured logs go through zap.
// Output stays line-oriented so it remains legible next to a browser window the
// operator is actively using.
package ux
