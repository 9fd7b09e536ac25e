// Package analysis post-processes recorded metric traces.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation content of a
//     series, e.g. particles bouncing under gravity
//   - [SettleTick]: when a series such as the rest fraction reaches and
//     holds a level
package analysis
