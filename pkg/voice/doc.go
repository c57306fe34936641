// Package voice provides a unified interface for voice conversation pipelines.
//
// A pipeline binds the four hosted components of a voice session (speech
// recognition, a language model, speech synthesis, and voice-activity
// detection) behind one Pipeline interface, with consistent latency
// measurement and tool registration across implementations.
//
// # Usage
//
// Create a pipeline using a registered provider:
//
//	import "github.com/dineai/go-dineai/pkg/voice"
//
//	cfg := voice.DefaultConfig().WithKeys(deepgramKey, groqKey)
//	pipeline, err := voice.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register tools the model can invoke
//	pipeline.RegisterTool(voice.Tool{
//	    Name:        "get_weather",
//	    Description: "Get the weather forecast for a booking date",
//	    Handler: func(args map[string]any) (string, error) {
//	        return "Clear, 30 degrees, outdoor seating recommended", nil
//	    },
//	})
//
//	// Wire callbacks
//	pipeline.OnAudioOut(func(pcm []byte) {
//	    speaker.Write(pcm)
//	})
//	pipeline.OnTranscript(func(text string, final bool) {
//	    fmt.Printf("Caller said: %s\n", text)
//	})
//
//	// Start the pipeline and greet the caller
//	if err := pipeline.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Stop()
//	pipeline.GenerateReply("Greet the customer warmly and ask for their name.")
//
//	// Stream caller audio
//	for audio := range microphone {
//	    pipeline.SendAudio(audio)
//	}
//
// # Latency Metrics
//
// Pipelines track per-stage latency for each conversation turn:
//
//	m := pipeline.Metrics()
//	fmt.Printf("ASR: %dms, LLM: %dms, TTS: %dms, Total: %dms\n",
//	    m.ASRLatency.Milliseconds(),
//	    m.LLMFirstToken.Milliseconds(),
//	    m.TTSFirstAudio.Milliseconds(),
//	    m.TotalLatency.Milliseconds(),
//	)
package voice
