// Package analysis characterizes recorded run series.
//
//   - [PowerSpectrum]: magnitude spectrum of a uniformly sampled series
//   - [DominantFrequency]: strongest non-zero frequency, e.g. the sloshing
//     frequency of a tank's kinetic energy
//   - [SettlingTime]: time after which a series stays below a fraction of its
//     peak
//
// # Sloshing
//
// A dam break sloshes back and forth with a period set by the tank width:
//
//	f, _ := analysis.DominantFrequency(energy, sampleDt)
//	period := 1 / f
package analysis
