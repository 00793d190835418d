// Package mixmap holds the static tables describing how the mono tracks of
// the source file are mapped onto named output channel positions.
//
// The source file is assumed to carry eight mono audio tracks: tracks 0 and 1
// feed the stereo mix, tracks 2 through 7 feed the 5.1 surround mix. The
// layout is asserted by this example, not derived from track metadata.
package mixmap

import (
	"fmt"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
)

// ChannelMapping associates one output channel position with the mono source
// track that feeds it. SourceTrack is the 0-based position of the track among
// the audio tracks of the source file, in source order.
type ChannelMapping struct {
	OutputChannel api.OutputChannelType
	SourceTrack   int
}

// Table is an ordered channel mapping, one entry per desired output channel.
// Its length determines the channel layout (2 entries for stereo, 6 for 5.1).
type Table []ChannelMapping

// StereoMapping returns the mapping for the stereo output track.
func StereoMapping() Table {
	return Table{
		{OutputChannel: api.ChannelFrontLeft, SourceTrack: 0},
		{OutputChannel: api.ChannelFrontRight, SourceTrack: 1},
	}
}

// SurroundMapping returns the mapping for the 5.1 surround output track. The
// source tracks continue after the stereo-destined ones.
func SurroundMapping() Table {
	return Table{
		{OutputChannel: api.ChannelFrontLeft, SourceTrack: 2},
		{OutputChannel: api.ChannelFrontRight, SourceTrack: 3},
		{OutputChannel: api.ChannelBackLeft, SourceTrack: 4},
		{OutputChannel: api.ChannelBackRight, SourceTrack: 5},
		{OutputChannel: api.ChannelCenter, SourceTrack: 6},
		{OutputChannel: api.ChannelLowFrequency, SourceTrack: 7},
	}
}

// Validate checks the structural invariants of a mapping table: it must not
// be empty, no source track index may be negative, and no output channel may
// be assigned twice.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New(errors.ValidationError, "Mapping table is empty", "", errors.ErrMappingTableEmpty)
	}
	seen := make(map[api.OutputChannelType]struct{}, len(t))
	for i, m := range t {
		if m.SourceTrack < 0 {
			return errors.New(errors.ValidationError, "Negative source track index",
				fmt.Sprintf("entry %d maps %s to track %d", i, m.OutputChannel, m.SourceTrack),
				errors.ErrMappingSourceTrackNegative)
		}
		if _, dup := seen[m.OutputChannel]; dup {
			return errors.New(errors.ValidationError, "Duplicate output channel",
				fmt.Sprintf("entry %d assigns %s a second time", i, m.OutputChannel),
				errors.ErrMappingDuplicateChannel)
		}
		seen[m.OutputChannel] = struct{}{}
	}
	return nil
}
