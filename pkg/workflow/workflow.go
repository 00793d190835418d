// Package workflow wires the whole example together: it provisions the
// remote resources for one encoding that reads a source file with a video
// track and eight mono audio tracks, synthesizes a stereo and a 5.1 surround
// audio track from them, muxes everything into a single MP4, and drives the
// job to completion.
package workflow

import (
	"context"
	"path"
	"time"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/assembler"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/config"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/lifecycle"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/mixmap"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/progress"
)

// ExampleName prefixes the per-run name under which output objects are
// written.
const ExampleName = "StreamMappingMonoInputTracks"

// OutputFileName is the name of the muxed container file.
const OutputFileName = "stereo-and-surround-tracks-mapped.mp4"

// ServiceAPI is the full slice of the encoding service client the workflow
// needs. *api.Client satisfies it.
type ServiceAPI interface {
	assembler.InputStreamAPI
	lifecycle.StatusAPI

	CreateEncoding(ctx context.Context, encoding api.Encoding) (*api.Encoding, error)
	CreateHTTPInput(ctx context.Context, input api.HTTPInput) (*api.HTTPInput, error)
	CreateS3Output(ctx context.Context, output api.S3Output) (*api.S3Output, error)
	CreateH264Config(ctx context.Context, cfg api.H264VideoConfiguration) (*api.H264VideoConfiguration, error)
	CreateAACConfig(ctx context.Context, cfg api.AACAudioConfiguration) (*api.AACAudioConfiguration, error)
	CreateDolbyDigitalConfig(ctx context.Context, cfg api.DolbyDigitalAudioConfiguration) (*api.DolbyDigitalAudioConfiguration, error)
	CreateStream(ctx context.Context, encodingID string, stream api.Stream) (*api.Stream, error)
	CreateMP4Muxing(ctx context.Context, encodingID string, muxing api.MP4Muxing) (*api.MP4Muxing, error)
}

// Options configures a Workflow.
type Options struct {
	// Name overrides the derived run name. Defaults to
	// "StreamMappingMonoInputTracks-<timestamp>".
	Name string
	// Runner configures the lifecycle polling (interval, backoff, bounds).
	Runner lifecycle.Options
	// Progress optionally renders encoding progress during polling.
	Progress progress.Reporter
	// Logger receives workflow logs. Defaults to the standard logger.
	Logger logger.Logger
}

// Workflow runs the stream mapping example end to end.
type Workflow struct {
	client   ServiceAPI
	provider *config.Provider
	name     string
	logger   logger.Logger
	runner   *lifecycle.Runner
	asm      *assembler.Assembler
}

// New creates a Workflow over the given client and configuration provider.
func New(client ServiceAPI, provider *config.Provider, opts Options) *Workflow {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger()
	}
	name := opts.Name
	if name == "" {
		name = ExampleName + "-" + time.Now().Format("2006-01-02T15:04:05")
	}
	runnerOpts := opts.Runner
	if runnerOpts.Logger == nil {
		runnerOpts.Logger = opts.Logger
	}
	if runnerOpts.Progress == nil {
		runnerOpts.Progress = opts.Progress
	}
	return &Workflow{
		client:   client,
		provider: provider,
		name:     name,
		logger:   opts.Logger,
		runner:   lifecycle.New(client, runnerOpts),
		asm:      assembler.New(client, opts.Logger),
	}
}

// Name returns the run name used in the output path.
func (w *Workflow) Name() string {
	return w.name
}

// OutputPath joins the configured S3 base path, the run name and a relative
// path into the absolute object path the muxing writes under.
func (w *Workflow) OutputPath(basePath, relative string) string {
	return path.Join(basePath, w.name, relative)
}

// Run executes the example: provision, assemble, mux, start, poll. Any
// remote-call failure aborts immediately; resources created up to that point
// are left behind on the service. The returned Result carries the job's
// terminal outcome; the error return is reserved for configuration and
// transport failures.
func (w *Workflow) Run(ctx context.Context) (lifecycle.Result, error) {
	var zero lifecycle.Result

	inputHost, err := w.provider.HTTPInputHost()
	if err != nil {
		return zero, err
	}
	inputFilePath, err := w.provider.InputFilePath()
	if err != nil {
		return zero, err
	}
	bucketName, err := w.provider.S3OutputBucketName()
	if err != nil {
		return zero, err
	}
	accessKey, err := w.provider.S3OutputAccessKey()
	if err != nil {
		return zero, err
	}
	secretKey, err := w.provider.S3OutputSecretKey()
	if err != nil {
		return zero, err
	}
	basePath, err := w.provider.S3OutputBasePath()
	if err != nil {
		return zero, err
	}

	encoding, err := w.client.CreateEncoding(ctx, api.Encoding{
		Name:        "Audio Mapping - Stream Mapping - Multiple Mono Tracks",
		Description: "Input with multiple mono tracks -> Output with stereo and surround tracks",
	})
	if err != nil {
		return zero, err
	}
	w.logger.Info("Created encoding", "workflow", map[string]interface{}{
		"encoding_id": encoding.ID,
		"name":        w.name,
	})

	httpInput, err := w.client.CreateHTTPInput(ctx, api.HTTPInput{Host: inputHost})
	if err != nil {
		return zero, err
	}
	s3Output, err := w.client.CreateS3Output(ctx, api.S3Output{
		BucketName: bucketName,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
	})
	if err != nil {
		return zero, err
	}

	h264, err := w.client.CreateH264Config(ctx, api.H264VideoConfiguration{
		Name:                "H.264 1080p @ 1.5 Mbit/s",
		Height:              1080,
		Bitrate:             1_500_000,
		PresetConfiguration: api.PresetVoDStandard,
	})
	if err != nil {
		return zero, err
	}
	aac, err := w.client.CreateAACConfig(ctx, api.AACAudioConfiguration{
		Name:    "AAC Audio @ 128 kbit/s",
		Bitrate: 128_000,
	})
	if err != nil {
		return zero, err
	}
	dolby, err := w.client.CreateDolbyDigitalConfig(ctx, api.DolbyDigitalAudioConfiguration{
		Name:          "Dolby Digital Channel Layout 5.1",
		Bitrate:       256_000,
		ChannelLayout: api.DolbyDigitalLayout51,
	})
	if err != nil {
		return zero, err
	}

	videoIngest, err := w.asm.VideoIngest(ctx, encoding.ID, httpInput.ID, inputFilePath)
	if err != nil {
		return zero, err
	}

	// The two mixes are assembled one after another; they share the source
	// file but never an ingest.
	stereoMix, err := w.asm.AssembleMix(ctx, encoding.ID, httpInput.ID, inputFilePath,
		api.ChannelLayoutStereo, mixmap.StereoMapping())
	if err != nil {
		return zero, err
	}
	surroundMix, err := w.asm.AssembleMix(ctx, encoding.ID, httpInput.ID, inputFilePath,
		api.ChannelLayout51Back, mixmap.SurroundMapping())
	if err != nil {
		return zero, err
	}

	videoStream, err := w.createStream(ctx, encoding.ID, videoIngest.ID, h264.ID)
	if err != nil {
		return zero, err
	}
	stereoStream, err := w.createStream(ctx, encoding.ID, stereoMix.ID, aac.ID)
	if err != nil {
		return zero, err
	}
	surroundStream, err := w.createStream(ctx, encoding.ID, surroundMix.ID, dolby.ID)
	if err != nil {
		return zero, err
	}

	_, err = w.client.CreateMP4Muxing(ctx, encoding.ID, api.MP4Muxing{
		Filename: OutputFileName,
		Streams: []api.MuxingStream{
			{StreamID: videoStream.ID},
			{StreamID: stereoStream.ID},
			{StreamID: surroundStream.ID},
		},
		Outputs: []api.EncodingOutput{{
			OutputID:   s3Output.ID,
			OutputPath: w.OutputPath(basePath, "/"),
			ACL:        []api.ACLEntry{{Permission: api.ACLPublicRead}},
		}},
	})
	if err != nil {
		return zero, err
	}

	w.logger.Info("Encoding fully configured", "workflow", map[string]interface{}{
		"encoding_id": encoding.ID,
		"output":      w.OutputPath(basePath, OutputFileName),
	})

	return w.runner.Run(ctx, encoding.ID)
}

func (w *Workflow) createStream(ctx context.Context, encodingID, inputStreamID, codecConfigID string) (*api.Stream, error) {
	return w.client.CreateStream(ctx, encodingID, api.Stream{
		InputStreams:  []api.StreamInput{{InputStreamID: inputStreamID}},
		CodecConfigID: codecConfigID,
		Mode:          api.StreamModeStandard,
	})
}
