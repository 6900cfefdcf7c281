// voice-entry: end-to-end demo of the voice entry flow against a
// synthetic microphone and a scripted transcriber.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/pulsekit/vitalvoice/internal/log"
	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/entry"
	"github.com/pulsekit/vitalvoice/pkg/extract"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

var (
	transcript = flag.String("say", "my blood pressure is 120 over 80 and heart rate 72", "transcript the scripted transcriber returns")
	duration   = flag.Duration("duration", 2*time.Second, "recording duration")
	premium    = flag.Bool("premium", true, "simulate a premium user")
)

func main() {
	godotenv.Load()
	flag.Parse()
	log.Init(os.Getenv("LOG_LEVEL"))

	source := capture.NewMockSource(capture.DefaultConfig(), log.L(), capture.WithSineWave(440, 0.5))
	defer source.Close()

	done := make(chan struct{})
	sink := entry.FormSinkFunc(func(metrics extract.Metrics) {
		defer close(done)
		fmt.Println("\nExtracted readings:")
		types := make([]string, 0, len(metrics))
		for t := range metrics {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			mt := extract.MetricType(t)
			fmt.Printf("  %-15s %s %s\n", t, metrics[mt], mt.Unit())
		}
	})

	failed := make(chan struct{})
	machine := entry.NewMachine(source, transcribe.FixedMock(*transcript), sink,
		entry.WithGate(entry.GateFunc(func(string) bool { return *premium })),
		entry.WithMaxRecordDuration(*duration),
		entry.WithMachineLogger(log.L()),
		entry.WithObserver(&entry.Observer{
			OnStateChange: func(from, to entry.State) {
				fmt.Printf("state: %s -> %s\n", from, to)
				if to == entry.StateError {
					close(failed)
				}
			},
			OnTranscriptionResult: func(text string) {
				fmt.Printf("transcript: %q\n", text)
			},
		}),
	)

	machine.Start(context.Background(), "demo-user")

	select {
	case <-done:
	case <-failed:
		fmt.Println(machine.Message())
		os.Exit(1)
	case <-time.After(*duration + 10*time.Second):
		fmt.Println("no metrics were applied")
		os.Exit(1)
	}
}
