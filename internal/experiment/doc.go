// Package experiment runs the changelog pipeline under several model
// configurations against the same commits and records how each performed.
//
// Experiments run one after another and share whatever cache and limiter
// the engine factory wires in, so the second run over the same commits with
// the same model is served from the cache. Results are saved as JSON, a
// plain-text comparison report, and one markdown changelog per experiment.
package experiment
