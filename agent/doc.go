// Package agent implements the three-stage recommendation pipeline:
// a planning model decides which search tools to call, the tools run
// in order with failures recorded rather than raised, and a summary
// model fuses and ranks the results. Every run streams progress
// events and ends with a recorded Artifact that can later be replayed
// offline with the same stage and tool sequence.
package agent
