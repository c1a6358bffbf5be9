package adts

import "fmt"

// MPEGVersion is the MPEG generation signalled by the ADTS ID bit.
type MPEGVersion uint8

const (
	MPEGUnknown MPEGVersion = iota
	MPEG2
	MPEG4
)

func (v MPEGVersion) String() string {
	switch v {
	case MPEG2:
		return "MPEG-2"
	case MPEG4:
		return "MPEG-4"
	default:
		return "unknown"
	}
}

// Profile is the AAC profile signalled in the header.
type Profile uint8

const (
	ProfileUnknown Profile = iota
	ProfileMain
	ProfileLC
	ProfileSSR
	ProfileLTP
)

func (p Profile) String() string {
	switch p {
	case ProfileMain:
		return "AAC Main"
	case ProfileLC:
		return "AAC LC (Low Complexity)"
	case ProfileSSR:
		return "AAC SSR (Scalable Sample Rate)"
	case ProfileLTP:
		return "AAC LTP (Long Term Prediction)"
	default:
		return "unknown"
	}
}

// ProfileFromCode maps a header profile code to a Profile.
// Code 0 is reserved.
func ProfileFromCode(code uint8) (Profile, error) {
	switch code {
	case 1:
		return ProfileMain, nil
	case 2:
		return ProfileLC, nil
	case 3:
		return ProfileSSR, nil
	case 4:
		return ProfileLTP, nil
	default:
		return ProfileUnknown, ErrInvalidProfile
	}
}

// ChannelConfiguration is the speaker layout signalled in the header.
//
// ChannelUnknown means the field could not be read at all; ChannelReserved
// means a reserved code (8-15) was read.
type ChannelConfiguration uint8

const (
	ChannelUnknown ChannelConfiguration = iota
	ChannelInbandPCE
	ChannelFrontCenter
	ChannelFrontLR
	ChannelFrontCLR
	ChannelQuad
	ChannelFive
	ChannelFiveOneLFE
	ChannelSevenOneLFE
	ChannelReserved
)

var channelDescriptions = [...]string{
	ChannelInbandPCE:   "Channel configuration is sent via inband PCE",
	ChannelFrontCenter: "1 channel: front-center",
	ChannelFrontLR:     "2 channels: front-left, front-right",
	ChannelFrontCLR:    "3 channels: front-center, front-left, front-right",
	ChannelQuad:        "4 channels: front-center, front-left, front-right, back-center",
	ChannelFive:        "5 channels: front-center, front-left, front-right, back-left, back-right",
	ChannelFiveOneLFE:  "6 channels: front-center, front-left, front-right, back-left, back-right, LFE-channel",
	ChannelSevenOneLFE: "8 channels: front-center, front-left, front-right, side-left, side-right, back-left, back-right, LFE-channel",
}

// ChannelConfigurationFromCode maps a 3-bit channel configuration code.
// Codes 8-15 are reserved.
func ChannelConfigurationFromCode(code uint8) (ChannelConfiguration, error) {
	if code > 7 {
		return ChannelReserved, ErrInvalidChannelConfig
	}
	return ChannelConfiguration(code) + ChannelInbandPCE, nil
}

// Code returns the header code for c, or -1 for ChannelUnknown and
// ChannelReserved.
func (c ChannelConfiguration) Code() int {
	if c < ChannelInbandPCE || c > ChannelSevenOneLFE {
		return -1
	}
	return int(c - ChannelInbandPCE)
}

// Channels returns the number of output channels, 0 when the layout is
// carried in a PCE or unknown.
func (c ChannelConfiguration) Channels() int {
	switch c {
	case ChannelFrontCenter, ChannelFrontLR, ChannelFrontCLR, ChannelQuad, ChannelFive, ChannelFiveOneLFE:
		return c.Code()
	case ChannelSevenOneLFE:
		return 8
	default:
		return 0
	}
}

func (c ChannelConfiguration) String() string {
	switch c {
	case ChannelUnknown:
		return "unknown"
	case ChannelReserved:
		return "reserved"
	}
	return fmt.Sprintf("%d - %s", c.Code(), channelDescriptions[c])
}

// SamplingFrequencies maps the 4-bit sampling frequency index to Hz.
// Indices 13-15 are invalid.
var SamplingFrequencies = [13]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000,
	7350,
}

// SamplingFrequencyFromIndex returns the sampling frequency in Hz for index.
func SamplingFrequencyFromIndex(index uint8) (int, error) {
	if int(index) >= len(SamplingFrequencies) {
		return 0, ErrInvalidSamplingFrequency
	}
	return SamplingFrequencies[index], nil
}

// HeaderInfo holds the fixed header fields of one ADTS frame.
//
// Fields that failed to decode keep their Unknown value (0 for
// SamplingFrequency); the Report that produced the HeaderInfo says why.
type HeaderInfo struct {
	MPEGVersion          MPEGVersion
	CRCPresent           bool
	Profile              Profile
	SamplingFrequency    int // Hz
	ChannelConfiguration ChannelConfiguration
}

// Field identifies one decoded header field.
type Field uint8

const (
	FieldSync Field = iota
	FieldMPEGVersion
	FieldLayer
	FieldProtectionAbsent
	FieldProfile
	FieldSamplingFrequency
	FieldPrivateBit
	FieldChannelConfiguration

	numFields
)

var fieldNames = [numFields]string{
	FieldSync:                 "sync word",
	FieldMPEGVersion:          "MPEG version",
	FieldLayer:                "layer",
	FieldProtectionAbsent:     "protection absent",
	FieldProfile:              "profile",
	FieldSamplingFrequency:    "sampling frequency",
	FieldPrivateBit:           "private bit",
	FieldChannelConfiguration: "channel configuration",
}

func (f Field) String() string {
	if f >= numFields {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return fieldNames[f]
}
