package assembler

import (
	"context"
	"fmt"
	"testing"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/mixmap"
)

// fakeInputStreamAPI records every call so tests can assert on call counts
// and ordering.
type fakeInputStreamAPI struct {
	ingests     []api.IngestInputStream
	mixes       []api.AudioMixInputStream
	failIngestN int // 1-based index of the ingest call that should fail, 0 = never
	failMix     bool
}

func (f *fakeInputStreamAPI) CreateIngestInputStream(_ context.Context, _ string, stream api.IngestInputStream) (*api.IngestInputStream, error) {
	if f.failIngestN > 0 && len(f.ingests)+1 == f.failIngestN {
		return nil, errors.New(errors.APIError, "ingest rejected", "", errors.ErrAPIStatusRejected)
	}
	f.ingests = append(f.ingests, stream)
	created := stream
	created.ID = fmt.Sprintf("ingest-%d", len(f.ingests))
	return &created, nil
}

func (f *fakeInputStreamAPI) CreateAudioMixInputStream(_ context.Context, _ string, stream api.AudioMixInputStream) (*api.AudioMixInputStream, error) {
	if f.failMix {
		return nil, errors.New(errors.APIError, "mix rejected", "", errors.ErrAPIStatusRejected)
	}
	f.mixes = append(f.mixes, stream)
	created := stream
	created.ID = "mix-1"
	return &created, nil
}

type discardLogger struct{}

func (discardLogger) Debug(string, string, map[string]interface{}) {}
func (discardLogger) Info(string, string, map[string]interface{})  {}
func (discardLogger) Warn(string, string, map[string]interface{})  {}
func (discardLogger) Error(string, string, map[string]interface{}) {}
func (discardLogger) Fatal(string, string, map[string]interface{}) {}

func TestAssembleMixCallCountsAndOrder(t *testing.T) {
	tests := []struct {
		name   string
		layout api.ChannelLayout
		table  mixmap.Table
	}{
		{"stereo", api.ChannelLayoutStereo, mixmap.StereoMapping()},
		{"surround", api.ChannelLayout51Back, mixmap.SurroundMapping()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInputStreamAPI{}
			a := New(fake, discardLogger{})

			mix, err := a.AssembleMix(context.Background(), "enc-1", "in-1", "/videos/input.mp4", tt.layout, tt.table)
			if err != nil {
				t.Fatalf("AssembleMix() error = %v", err)
			}

			if len(fake.ingests) != len(tt.table) {
				t.Fatalf("ingest calls = %d, want %d", len(fake.ingests), len(tt.table))
			}
			if len(fake.mixes) != 1 {
				t.Fatalf("mix calls = %d, want 1", len(fake.mixes))
			}
			if mix.ChannelLayout != tt.layout {
				t.Errorf("layout = %q, want %q", mix.ChannelLayout, tt.layout)
			}
			if len(mix.AudioMixChannels) != len(tt.table) {
				t.Fatalf("mix channels = %d, want %d", len(mix.AudioMixChannels), len(tt.table))
			}

			for i, mapping := range tt.table {
				ingest := fake.ingests[i]
				if ingest.SelectionMode != api.SelectionModeAudioRelative {
					t.Errorf("ingest %d selection mode = %q, want %q", i, ingest.SelectionMode, api.SelectionModeAudioRelative)
				}
				if ingest.Position == nil || *ingest.Position != mapping.SourceTrack {
					t.Errorf("ingest %d position = %v, want %d", i, ingest.Position, mapping.SourceTrack)
				}

				channel := mix.AudioMixChannels[i]
				if channel.OutputChannelType != mapping.OutputChannel {
					t.Errorf("channel %d = %q, want %q", i, channel.OutputChannelType, mapping.OutputChannel)
				}
				wantID := fmt.Sprintf("ingest-%d", i+1)
				if channel.InputStreamID != wantID {
					t.Errorf("channel %d input stream = %q, want %q", i, channel.InputStreamID, wantID)
				}
				if len(channel.SourceChannels) != 1 {
					t.Fatalf("channel %d source channels = %d, want 1", i, len(channel.SourceChannels))
				}
				sc := channel.SourceChannels[0]
				if sc.Type != api.SourceChannelNumber || sc.ChannelNumber == nil || *sc.ChannelNumber != 0 {
					t.Errorf("channel %d source channel = %+v, want CHANNEL_NUMBER 0", i, sc)
				}
			}
		})
	}
}

func TestAssembleMixDoesNotShareIngests(t *testing.T) {
	fake := &fakeInputStreamAPI{}
	a := New(fake, discardLogger{})
	table := mixmap.StereoMapping()

	first, err := a.AssembleMix(context.Background(), "enc-1", "in-1", "/videos/input.mp4", api.ChannelLayoutStereo, table)
	if err != nil {
		t.Fatalf("first AssembleMix() error = %v", err)
	}
	second, err := a.AssembleMix(context.Background(), "enc-1", "in-1", "/videos/input.mp4", api.ChannelLayoutStereo, table)
	if err != nil {
		t.Fatalf("second AssembleMix() error = %v", err)
	}

	if len(fake.ingests) != 2*len(table) {
		t.Fatalf("ingest calls = %d, want %d", len(fake.ingests), 2*len(table))
	}
	seen := map[string]bool{}
	for _, mix := range []*api.AudioMixInputStream{first, second} {
		for _, ch := range mix.AudioMixChannels {
			if seen[ch.InputStreamID] {
				t.Errorf("ingest %q shared between mixes", ch.InputStreamID)
			}
			seen[ch.InputStreamID] = true
		}
	}
}

func TestAssembleMixFailuresPropagate(t *testing.T) {
	tests := []struct {
		name        string
		fake        *fakeInputStreamAPI
		wantIngests int
	}{
		{"first ingest fails", &fakeInputStreamAPI{failIngestN: 1}, 0},
		{"second ingest fails", &fakeInputStreamAPI{failIngestN: 2}, 1},
		{"mix creation fails", &fakeInputStreamAPI{failMix: true}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.fake, discardLogger{})
			_, err := a.AssembleMix(context.Background(), "enc-1", "in-1", "/videos/input.mp4", api.ChannelLayoutStereo, mixmap.StereoMapping())
			if err == nil {
				t.Fatal("AssembleMix() error = nil, want error")
			}
			if _, ok := err.(*errors.StructuredError); !ok {
				t.Errorf("error type = %T, want *errors.StructuredError", err)
			}
			if len(tt.fake.ingests) != tt.wantIngests {
				t.Errorf("ingests created before failure = %d, want %d", len(tt.fake.ingests), tt.wantIngests)
			}
		})
	}
}

func TestAssembleMixRejectsInvalidTable(t *testing.T) {
	fake := &fakeInputStreamAPI{}
	a := New(fake, discardLogger{})

	bad := mixmap.Table{{OutputChannel: api.ChannelCenter, SourceTrack: -3}}
	_, err := a.AssembleMix(context.Background(), "enc-1", "in-1", "/videos/input.mp4", api.ChannelLayoutStereo, bad)
	if err == nil {
		t.Fatal("AssembleMix() error = nil, want validation error")
	}
	if len(fake.ingests) != 0 {
		t.Errorf("ingest calls = %d, want 0 for invalid table", len(fake.ingests))
	}
}

func TestVideoIngestUsesAutoSelection(t *testing.T) {
	fake := &fakeInputStreamAPI{}
	a := New(fake, discardLogger{})

	_, err := a.VideoIngest(context.Background(), "enc-1", "in-1", "/videos/input.mp4")
	if err != nil {
		t.Fatalf("VideoIngest() error = %v", err)
	}
	if len(fake.ingests) != 1 {
		t.Fatalf("ingest calls = %d, want 1", len(fake.ingests))
	}
	if fake.ingests[0].SelectionMode != api.SelectionModeAuto {
		t.Errorf("selection mode = %q, want %q", fake.ingests[0].SelectionMode, api.SelectionModeAuto)
	}
	if fake.ingests[0].Position != nil {
		t.Errorf("position = %v, want nil", fake.ingests[0].Position)
	}
}
