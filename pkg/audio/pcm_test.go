package audio

import "testing"

func TestResampleSameRate(t *testing.T) {
	samples := []int16{1, 2, 3, 4}

	got := Resample(samples, 16000, 16000)
	if len(got) != 4 {
		t.Errorf("same-rate resample changed length: %d", len(got))
	}
}

func TestResampleDownsampleHalves(t *testing.T) {
	samples := make([]int16, 480) // 10ms at 48kHz
	for i := range samples {
		samples[i] = int16(i)
	}

	got := Resample(samples, 48000, 16000)
	if len(got) != 160 {
		t.Errorf("expected 160 samples at 16kHz, got %d", len(got))
	}
}

func TestResampleUpsample(t *testing.T) {
	samples := []int16{0, 100, 200, 300}

	got := Resample(samples, 8000, 16000)
	if len(got) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(got))
	}

	// Interpolated values stay within the source range
	for _, s := range got {
		if s < 0 || s > 300 {
			t.Errorf("interpolated sample %d out of range", s)
		}
	}
}

func TestResampleEmpty(t *testing.T) {
	if got := Resample(nil, 48000, 16000); len(got) != 0 {
		t.Error("empty input should stay empty")
	}
}

func TestBytesSamplesRoundTrip(t *testing.T) {
	samples := []int16{-32768, -1, 0, 1, 32767}

	got := BytesToSamples(SamplesToBytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestResampleBytesHalves(t *testing.T) {
	data := make([]byte, 960) // 480 samples

	got := ResampleBytes(data, 48000, 16000)
	if len(got) != 320 {
		t.Errorf("expected 320 bytes, got %d", len(got))
	}
}

func TestStereoToMono(t *testing.T) {
	stereo := []int16{100, 200, -100, -200}

	mono := StereoToMono(stereo)
	if len(mono) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(mono))
	}
	if mono[0] != 150 || mono[1] != -150 {
		t.Errorf("unexpected averages %v", mono)
	}
}
