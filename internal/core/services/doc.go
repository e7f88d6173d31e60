// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The segmenter, term extractor and tree editor are pure functions of their
// input. The grouping engine and review service mutate the session's vector
// index; they run sequentially and are deterministic for a fixed input order
// and fixed index contents.
package services
