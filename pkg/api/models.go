package api

// Status represents the lifecycle state of a remote encoding job as reported
// by the service. Only FINISHED and ERROR are terminal; every other value is
// treated uniformly as "still running".
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusQueued   Status = "QUEUED"
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusError    Status = "ERROR"
	StatusCanceled Status = "CANCELED"
)

// Terminal reports whether no further status transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusError || s == StatusCanceled
}

// MessageType classifies a message attached to a task by the service.
type MessageType string

const (
	MessageTypeInfo    MessageType = "INFO"
	MessageTypeDebug   MessageType = "DEBUG"
	MessageTypeWarning MessageType = "WARNING"
	MessageTypeError   MessageType = "ERROR"
)

// ChannelLayout designates the output channel layout of an audio mix.
type ChannelLayout string

const (
	// ChannelLayoutStereo is a two channel layout (front-left, front-right).
	ChannelLayoutStereo ChannelLayout = "STEREO"
	// ChannelLayout51Back is a six channel 5.1 layout with back surround speakers.
	ChannelLayout51Back ChannelLayout = "5.1_BACK"
)

// OutputChannelType names a speaker position an audio mix channel feeds.
type OutputChannelType string

const (
	ChannelFrontLeft    OutputChannelType = "FRONT_LEFT"
	ChannelFrontRight   OutputChannelType = "FRONT_RIGHT"
	ChannelBackLeft     OutputChannelType = "BACK_LEFT"
	ChannelBackRight    OutputChannelType = "BACK_RIGHT"
	ChannelCenter       OutputChannelType = "CENTER"
	ChannelLowFrequency OutputChannelType = "LOW_FREQUENCY"
)

// SourceChannelType selects how a source sub-channel is addressed within an
// ingested stream.
type SourceChannelType string

// SourceChannelNumber addresses a source sub-channel by its numeric index.
const SourceChannelNumber SourceChannelType = "CHANNEL_NUMBER"

// StreamSelectionMode controls which track an ingest input stream reads from
// the source file.
type StreamSelectionMode string

const (
	// SelectionModeAuto lets the service pick the obvious track (used for video).
	SelectionModeAuto StreamSelectionMode = "AUTO"
	// SelectionModeAudioRelative selects an audio track by its position among
	// the audio tracks of the source, in source order, starting at 0.
	SelectionModeAudioRelative StreamSelectionMode = "AUDIO_RELATIVE"
)

// StreamMode is the processing mode of a stream.
type StreamMode string

// StreamModeStandard is the default per-stream processing mode.
const StreamModeStandard StreamMode = "STANDARD"

// PresetConfiguration names a tuned bundle of codec settings.
type PresetConfiguration string

// PresetVoDStandard is the quality-optimized VoD preset.
const PresetVoDStandard PresetConfiguration = "VOD_STANDARD"

// ACLPermission is the access level granted on written output objects.
type ACLPermission string

// ACLPublicRead grants public read access so outputs can be fetched over HTTP.
const ACLPublicRead ACLPermission = "PUBLIC_READ"

// Encoding is the root job resource all streams, input streams and muxings
// hang off of.
type Encoding struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// HTTPInput represents an HTTP server hosting the input files.
type HTTPInput struct {
	ID   string `json:"id,omitempty"`
	Host string `json:"host"`
}

// S3Output represents an AWS S3 bucket the service writes generated content
// to. The credentials are relayed to the service, never used locally.
type S3Output struct {
	ID         string `json:"id,omitempty"`
	BucketName string `json:"bucketName"`
	AccessKey  string `json:"accessKey"`
	SecretKey  string `json:"secretKey"`
}

// H264VideoConfiguration configures the H.264 codec for video streams.
// Width is omitted so the service preserves the input aspect ratio.
type H264VideoConfiguration struct {
	ID                  string              `json:"id,omitempty"`
	Name                string              `json:"name"`
	Height              int                 `json:"height,omitempty"`
	Bitrate             int64               `json:"bitrate,omitempty"`
	PresetConfiguration PresetConfiguration `json:"presetConfiguration,omitempty"`
}

// AACAudioConfiguration configures the AAC codec for audio streams.
type AACAudioConfiguration struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Bitrate int64  `json:"bitrate,omitempty"`
}

// DolbyDigitalAudioConfiguration configures the Dolby Digital codec for
// surround audio streams.
type DolbyDigitalAudioConfiguration struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Bitrate       int64  `json:"bitrate,omitempty"`
	ChannelLayout string `json:"channelLayout,omitempty"`
}

// DolbyDigitalLayout51 is the 5.1 channel layout of the Dolby Digital codec
// configuration.
const DolbyDigitalLayout51 = "CL_5_1"

// IngestInputStream selects one track of a source file. With
// SelectionModeAudioRelative, Position is the 0-based index of the audio
// track among the source's audio tracks.
type IngestInputStream struct {
	ID            string              `json:"id,omitempty"`
	InputID       string              `json:"inputId"`
	InputPath     string              `json:"inputPath"`
	SelectionMode StreamSelectionMode `json:"selectionMode"`
	Position      *int                `json:"position,omitempty"`
}

// AudioMixSourceChannel addresses one sub-channel of an ingested stream that
// feeds an output channel.
type AudioMixSourceChannel struct {
	Type          SourceChannelType `json:"type"`
	ChannelNumber *int              `json:"channelNumber,omitempty"`
}

// AudioMixChannel assigns one ingest input stream to a named output channel
// position of the mix.
type AudioMixChannel struct {
	InputStreamID     string                  `json:"inputStreamId"`
	OutputChannelType OutputChannelType       `json:"outputChannelType"`
	SourceChannels    []AudioMixSourceChannel `json:"sourceChannels"`
}

// AudioMixInputStream synthesizes one audio stream out of multiple ingests by
// assigning each ingest to a named output channel under a declared layout.
type AudioMixInputStream struct {
	ID               string            `json:"id,omitempty"`
	Name             string            `json:"name,omitempty"`
	ChannelLayout    ChannelLayout     `json:"channelLayout"`
	AudioMixChannels []AudioMixChannel `json:"audioMixChannels"`
}

// StreamInput references the input stream a stream reads from.
type StreamInput struct {
	InputStreamID string `json:"inputStreamId"`
}

// Stream ties an input stream to a codec configuration within an encoding.
type Stream struct {
	ID            string        `json:"id,omitempty"`
	InputStreams  []StreamInput `json:"inputStreams"`
	CodecConfigID string        `json:"codecConfigId"`
	Mode          StreamMode    `json:"mode,omitempty"`
}

// ACLEntry grants an access level on written output objects.
type ACLEntry struct {
	Permission ACLPermission `json:"permission"`
}

// EncodingOutput defines where generated content is written and with which
// access level.
type EncodingOutput struct {
	OutputID   string     `json:"outputId"`
	OutputPath string     `json:"outputPath"`
	ACL        []ACLEntry `json:"acl,omitempty"`
}

// MuxingStream references one stream included in a muxing.
type MuxingStream struct {
	StreamID string `json:"streamId"`
}

// MP4Muxing writes the referenced streams into a single MP4 container file.
type MP4Muxing struct {
	ID       string           `json:"id,omitempty"`
	Filename string           `json:"filename"`
	Streams  []MuxingStream   `json:"streams"`
	Outputs  []EncodingOutput `json:"outputs"`
}

// Message is a log entry the service attaches to a task.
type Message struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// Task is the status snapshot of a started encoding.
type Task struct {
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Messages []Message `json:"messages,omitempty"`
}

// ErrorMessages returns the texts of all ERROR-typed messages attached to the
// task, in order.
func (t *Task) ErrorMessages() []string {
	if t == nil {
		return nil
	}
	var texts []string
	for _, m := range t.Messages {
		if m.Type == MessageTypeError {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
