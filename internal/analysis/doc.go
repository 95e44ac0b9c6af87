// Package analysis turns captured channels into spectra.
//
//   - [PowerSpectrumDB]: one-sided, Hann-windowed power spectrum in dB
//   - [Spectrum.Band]: the bins inside a frequency band
//
// The output of PowerSpectrumDB is the single-column trace format read
// by the offline renderer:
//
//	spec, _ := analysis.PowerSpectrumDB(values, fs)
//	analysis.WriteColumn(w, spec.DB)
package analysis
