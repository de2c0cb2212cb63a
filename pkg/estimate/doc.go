// Package estimate infers elapsed time since death from post-mortem
// phenomena.
//
// Three independent estimators each produce an interval of elapsed hours:
//
//   - cooling.go: a two-phase (plateau + exponential) body cooling curve
//     solved for time with Brent's method (brent.go) on [0, 120] h. The
//     curve is scaled by a correction coefficient built from clothing, body
//     type, sex, age and ambient humidity (humidity.go).
//   - rigor.go: a fixed interval per rigor mortis stage.
//   - livor.go: the intersection of the livor mortis stage interval and the
//     blanching-pressure interval.
//
// crossval.go drops rigor and livor estimates whose midpoint disagrees with
// the temperature midpoint by more than 12 h; temperature always wins.
// fusion.go combines the survivors into a weighted midpoint and weighted
// standard deviation and derives symmetric 50/70/90% intervals.
//
// Engine.Infer (engine.go) runs the whole pipeline. It is pure: all lookup
// tables are package-level values that are never written after init, and an
// Engine holds only immutable options, so one Engine can serve concurrent
// callers.
package estimate
