package voice

import (
	"sync"
	"time"
)

// Metrics tracks latency at each stage of the voice pipeline.
// All durations are measured from the moment speech ends (the caller
// stops talking).
type Metrics struct {
	// Timestamps for key events
	SpeechEndTime    time.Time // When VAD detected end of speech
	TranscriptTime   time.Time // When STT completed transcription
	FirstTokenTime   time.Time // When the LLM response arrived
	FirstAudioTime   time.Time // When TTS produced its first audio chunk
	ResponseDoneTime time.Time // When the response was fully delivered

	// Computed latencies (from speech end)
	ASRLatency    time.Duration // Time to complete transcription
	LLMFirstToken time.Duration // Time to first LLM token
	TTSFirstAudio time.Duration // Time to first audio chunk
	TotalLatency  time.Duration // Total end-to-end latency

	// Counts for this conversation turn
	AudioChunksIn  int // Audio chunks received from the caller
	AudioChunksOut int // Audio chunks sent to the caller
	ToolCalls      int // Tool invocations during this turn
}

// MetricsCollector collects latency metrics during a conversation turn.
// It is goroutine-safe and can be used from multiple callbacks.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics
	history []Metrics // Recent turns for averaging
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		history: make([]Metrics, 0, 100),
	}
}

// MarkSpeechEnd records when the caller stopped speaking.
// This is the reference point for all latency measurements.
func (m *MetricsCollector) MarkSpeechEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Metrics{} // Reset for new turn
	m.current.SpeechEndTime = time.Now()
}

// MarkTranscript records when transcription completed.
func (m *MetricsCollector) MarkTranscript() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TranscriptTime = time.Now()
	if !m.current.SpeechEndTime.IsZero() {
		m.current.ASRLatency = m.current.TranscriptTime.Sub(m.current.SpeechEndTime)
	}
}

// MarkFirstToken records when the LLM response arrived.
func (m *MetricsCollector) MarkFirstToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.FirstTokenTime.IsZero() {
		m.current.FirstTokenTime = time.Now()
		if !m.current.SpeechEndTime.IsZero() {
			m.current.LLMFirstToken = m.current.FirstTokenTime.Sub(m.current.SpeechEndTime)
		}
	}
}

// MarkFirstAudio records when the first audio chunk was generated.
func (m *MetricsCollector) MarkFirstAudio() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.FirstAudioTime.IsZero() {
		m.current.FirstAudioTime = time.Now()
		if !m.current.SpeechEndTime.IsZero() {
			m.current.TTSFirstAudio = m.current.FirstAudioTime.Sub(m.current.SpeechEndTime)
		}
	}
}

// MarkResponseDone records when the response is fully delivered.
func (m *MetricsCollector) MarkResponseDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ResponseDoneTime = time.Now()
	if !m.current.SpeechEndTime.IsZero() {
		m.current.TotalLatency = m.current.ResponseDoneTime.Sub(m.current.SpeechEndTime)
	}
	// Archive this turn
	m.history = append(m.history, m.current)
	if len(m.history) > 100 {
		m.history = m.history[1:]
	}
}

// IncrementAudioIn increments the count of audio chunks received.
func (m *MetricsCollector) IncrementAudioIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.AudioChunksIn++
}

// IncrementAudioOut increments the count of audio chunks sent.
func (m *MetricsCollector) IncrementAudioOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.AudioChunksOut++
}

// IncrementToolCalls increments the count of tool invocations.
func (m *MetricsCollector) IncrementToolCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ToolCalls++
}

// Current returns the current metrics snapshot.
func (m *MetricsCollector) Current() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Average returns average metrics over recent turns.
func (m *MetricsCollector) Average() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return Metrics{}
	}

	var avg Metrics
	for _, h := range m.history {
		avg.ASRLatency += h.ASRLatency
		avg.LLMFirstToken += h.LLMFirstToken
		avg.TTSFirstAudio += h.TTSFirstAudio
		avg.TotalLatency += h.TotalLatency
	}

	n := time.Duration(len(m.history))
	avg.ASRLatency /= n
	avg.LLMFirstToken /= n
	avg.TTSFirstAudio /= n
	avg.TotalLatency /= n

	return avg
}

// FormatLatency returns a formatted string of current latencies.
func (m *Metrics) FormatLatency() string {
	return formatDuration(m.ASRLatency) + " ASR | " +
		formatDuration(m.LLMFirstToken) + " LLM | " +
		formatDuration(m.TTSFirstAudio) + " TTS | " +
		formatDuration(m.TotalLatency) + " TOTAL"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "---ms"
	}
	return d.Round(time.Millisecond).String()
}
