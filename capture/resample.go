package capture

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resampler converts mono int16 audio between the device rate and the fixed
// capture rate.
type resampler struct {
	rs resampling.Resampler
}

func newResampler(inRate, outRate int) (*resampler, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(inRate),
		OutputRate: float64(outRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler init: %w", err)
	}
	return &resampler{rs: rs}, nil
}

func (r *resampler) resample(samples []int16) ([]int16, error) {
	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := r.rs.Process(input)
	if err != nil {
		return nil, err
	}

	out := make([]int16, len(output))
	for i, s := range output {
		switch {
		case s > 1.0:
			out[i] = 32767
		case s < -1.0:
			out[i] = -32768
		default:
			out[i] = int16(s * 32767.0)
		}
	}
	return out, nil
}
