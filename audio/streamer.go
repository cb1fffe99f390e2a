package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

// waveSample evaluates one wave shape at phase in [0,1)
func waveSample(w core.WaveType, phase float64) float64 {
	switch w {
	case core.WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case core.WaveTriangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	case core.WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case core.WaveSaw:
		return 2.0 * (phase - 0.5)
	case core.WaveNoise:
		return rand.Float64()*2 - 1
	}
	return 0
}

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	endFreq  float64 // equal to freq for steady tones
	phase    float64
	duration int
	position int
	wave     core.WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a fixed-duration tone streamer
func NewOscillator(freq float64, duration time.Duration, wave core.WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

// NewGlideOscillator creates a tone sweeping from startFreq to endFreq
// over its whole duration
func NewGlideOscillator(startFreq, endFreq float64, duration time.Duration, wave core.WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     startFreq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		val := waveSample(o.wave, o.phase)
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*t
		o.phase += freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a fixed-length stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope shapes s with an attack ramp, unity sustain, and release ramp
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			remaining := e.totalSamples - e.position
			vol = float64(remaining) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// filteredNoise is a fixed-length noise burst through a biquad,
// used for percussive transients and low rumbles
type filteredNoise struct {
	duration int
	position int
	bp       biquad
}

// NewFilteredNoise creates a bandpassed noise burst
func NewFilteredNoise(duration time.Duration, centerHz, q float64, rate beep.SampleRate) beep.Streamer {
	f := &filteredNoise{duration: rate.N(duration)}
	f.bp.setBandpass(centerHz, q, float64(rate))
	return f
}

// NewRumbleNoise creates a lowpassed noise bed for dark, weighty hits
func NewRumbleNoise(duration time.Duration, cutoffHz, q float64, rate beep.SampleRate) beep.Streamer {
	f := &filteredNoise{duration: rate.N(duration)}
	f.bp.setLowpass(cutoffHz, q, float64(rate))
	return f
}

func (f *filteredNoise) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if f.position >= f.duration {
			return i, i > 0
		}
		v := f.bp.process(rand.Float64()*2 - 1)
		samples[i][0] = v
		samples[i][1] = v
		f.position++
	}
	return len(samples), true
}

func (f *filteredNoise) Err() error { return nil }

// newVolume wraps a streamer with a gain stage.
// math.Log2(0) is -Inf, so zero volume switches to silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// shapedTone is the common gesture building block: tone + envelope + gain
func shapedTone(freq float64, dur, attack, release time.Duration, wave core.WaveType, vol float64) beep.Streamer {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	osc := NewOscillator(freq, dur, wave, rate)
	return newVolume(NewEnvelope(osc, dur, attack, release, rate), vol)
}

// shapedGlide is shapedTone with a frequency sweep
func shapedGlide(startFreq, endFreq float64, dur, attack, release time.Duration, wave core.WaveType, vol float64) beep.Streamer {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	osc := NewGlideOscillator(startFreq, endFreq, dur, wave, rate)
	return newVolume(NewEnvelope(osc, dur, attack, release, rate), vol)
}

// shapedNoise is a bandpassed noise transient with envelope and gain
func shapedNoise(centerHz, q float64, dur, attack, release time.Duration, vol float64) beep.Streamer {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	noise := NewFilteredNoise(dur, centerHz, q, rate)
	return newVolume(NewEnvelope(noise, dur, attack, release, rate), vol)
}

// shapedRumble is a lowpassed noise bed with envelope and gain
func shapedRumble(cutoffHz, q float64, dur, attack, release time.Duration, vol float64) beep.Streamer {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	noise := NewRumbleNoise(dur, cutoffHz, q, rate)
	return newVolume(NewEnvelope(noise, dur, attack, release, rate), vol)
}

// dbToGain converts decibels to linear gain
func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
