package models

// AcousticMetrics holds the eight scalar measurements computed for a
// recording. Values the analysis engine could not determine are 0, never
// NaN or Inf.
type AcousticMetrics struct {
	MeanPitchHz  float64 `json:"mean_pitch_hz" doc:"Mean fundamental frequency over voiced frames, Hz"`
	F1Hz         float64 `json:"f1_hz" doc:"Mean first formant frequency, Hz"`
	F2Hz         float64 `json:"f2_hz" doc:"Mean second formant frequency, Hz"`
	F3Hz         float64 `json:"f3_hz" doc:"Mean third formant frequency, Hz"`
	Jitter       float64 `json:"jitter" doc:"Local jitter as a fraction of the mean period"`
	Shimmer      float64 `json:"shimmer" doc:"Local shimmer as a fraction of the mean amplitude"`
	HNRdB        float64 `json:"hnr_db" doc:"Mean harmonics-to-noise ratio over voiced frames, dB"`
	LowHighRatio float64 `json:"low_high_ratio" doc:"Summed spectral magnitude below 1000 Hz over summed magnitude above"`
}

// Spectrogram is a decimated magnitude matrix for the spectrogram plot
type Spectrogram struct {
	Times       []float64   `json:"times" doc:"Frame center times, seconds"`
	Frequencies []float64   `json:"frequencies" doc:"Bin center frequencies, Hz"`
	MagnitudeDB [][]float64 `json:"magnitude_db" doc:"Magnitude in dB relative to the matrix peak, frames x bins"`
}

// FormantTracks carries the F1-F3 trajectories for the formant plot.
// All four slices have equal length; 0 marks frames where a formant
// could not be measured.
type FormantTracks struct {
	Times []float64 `json:"times" doc:"Frame center times, seconds"`
	F1    []float64 `json:"f1" doc:"First formant trajectory, Hz"`
	F2    []float64 `json:"f2" doc:"Second formant trajectory, Hz"`
	F3    []float64 `json:"f3" doc:"Third formant trajectory, Hz"`
}
