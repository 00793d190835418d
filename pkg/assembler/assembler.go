// Package assembler turns channel mapping tables into the input stream graph
// of an encoding: one ingest per mapped source track, bundled into a single
// audio mix input stream that assigns each ingest to its output channel.
package assembler

import (
	"context"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/mixmap"
)

// InputStreamAPI is the slice of the encoding service client the assembler
// needs. *api.Client satisfies it.
type InputStreamAPI interface {
	CreateIngestInputStream(ctx context.Context, encodingID string, stream api.IngestInputStream) (*api.IngestInputStream, error)
	CreateAudioMixInputStream(ctx context.Context, encodingID string, stream api.AudioMixInputStream) (*api.AudioMixInputStream, error)
}

// Assembler creates input stream resources for one encoding.
type Assembler struct {
	client InputStreamAPI
	logger logger.Logger
}

// New creates an Assembler. A nil logger falls back to the default logger.
func New(client InputStreamAPI, log logger.Logger) *Assembler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Assembler{client: client, logger: log}
}

// VideoIngest creates the ingest input stream for the video track of the
// source file, letting the service pick the track automatically.
func (a *Assembler) VideoIngest(ctx context.Context, encodingID, inputID, inputPath string) (*api.IngestInputStream, error) {
	return a.client.CreateIngestInputStream(ctx, encodingID, api.IngestInputStream{
		InputID:       inputID,
		InputPath:     inputPath,
		SelectionMode: api.SelectionModeAuto,
	})
}

// AssembleMix creates one mixed audio input stream from a mapping table.
//
// For every table entry, in table order, it creates a dedicated ingest input
// stream selecting the audio track at the entry's source position, then
// assigns that ingest to the entry's output channel. Each assignment reads
// sub-channel 0 of its mono ingest. All assignments are submitted in a single
// audio mix creation call under the given layout, so the mix's channel order
// matches the table order. Ingests are never shared between calls; a second
// AssembleMix over the same table creates fresh ones.
//
// Any remote failure aborts immediately; previously created ingests are left
// behind on the service, matching the throwaway nature of this example.
func (a *Assembler) AssembleMix(ctx context.Context, encodingID, inputID, inputPath string, layout api.ChannelLayout, table mixmap.Table) (*api.AudioMixInputStream, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	mix := api.AudioMixInputStream{
		ChannelLayout:    layout,
		AudioMixChannels: make([]api.AudioMixChannel, 0, len(table)),
	}

	for _, mapping := range table {
		position := mapping.SourceTrack
		ingest, err := a.client.CreateIngestInputStream(ctx, encodingID, api.IngestInputStream{
			InputID:       inputID,
			InputPath:     inputPath,
			SelectionMode: api.SelectionModeAudioRelative,
			Position:      &position,
		})
		if err != nil {
			return nil, err
		}

		a.logger.Debug("Created audio ingest", "assembler", map[string]interface{}{
			"track":   mapping.SourceTrack,
			"channel": string(mapping.OutputChannel),
		})

		sourceChannel := 0
		mix.AudioMixChannels = append(mix.AudioMixChannels, api.AudioMixChannel{
			InputStreamID:     ingest.ID,
			OutputChannelType: mapping.OutputChannel,
			SourceChannels: []api.AudioMixSourceChannel{
				{Type: api.SourceChannelNumber, ChannelNumber: &sourceChannel},
			},
		})
	}

	created, err := a.client.CreateAudioMixInputStream(ctx, encodingID, mix)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Created audio mix input stream", "assembler", map[string]interface{}{
		"layout":   string(layout),
		"channels": len(table),
	})

	return created, nil
}
