package inspector

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/zachfi/adtsinfo/pkg/adts"
)

// Render writes res to w in the given format.
func Render(w io.Writer, res *Result, format string) error {
	switch format {
	case FormatText, "":
		return renderText(w, res)
	case FormatYAML:
		return renderYAML(w, res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderText(w io.Writer, res *Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n", res.Path)
	if res.Title != "" {
		fmt.Fprintf(&b, "Stream title: %s\n", res.Title)
	}

	if len(res.Report.Fields) > 0 {
		r, h := res.Report, res.Report.Header
		fmt.Fprintf(&b, "MPEG version: %s\n", fieldValue(r, adts.FieldMPEGVersion, h.MPEGVersion.String()))
		fmt.Fprintf(&b, "CRC: %s\n", fieldValue(r, adts.FieldProtectionAbsent, crcString(h.CRCPresent)))
		fmt.Fprintf(&b, "Profile: %s\n", fieldValue(r, adts.FieldProfile, h.Profile.String()))
		fmt.Fprintf(&b, "Sampling frequency: %s\n", fieldValue(r, adts.FieldSamplingFrequency, fmt.Sprintf("%d Hz", h.SamplingFrequency)))
		fmt.Fprintf(&b, "Channel configuration: %s\n", fieldValue(r, adts.FieldChannelConfiguration, h.ChannelConfiguration.String()))
		if layer := r.Result(adts.FieldLayer); !layer.OK() {
			fmt.Fprintf(&b, "Layer: invalid (%s)\n", failureReason(layer.Err))
		}
	}

	if res.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", res.Err)
	} else {
		fmt.Fprintf(&b, "Number of frames in AAC file: %d\n", res.Frames)
		if len(res.Offsets) > 0 {
			offsets := make([]string, len(res.Offsets))
			for i, o := range res.Offsets {
				offsets[i] = strconv.Itoa(o)
			}
			fmt.Fprintf(&b, "Frame offsets: %s\n", strings.Join(offsets, " "))
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func fieldValue(r adts.Report, f adts.Field, value string) string {
	res := r.Result(f)
	if res.OK() {
		return value
	}
	return fmt.Sprintf("invalid (%s)", failureReason(res.Err))
}

// failureReason strips the field name from a field error, which the report
// already shows.
func failureReason(err error) string {
	var fe *adts.FieldError
	if !errors.As(err, &fe) {
		return err.Error()
	}
	if errors.Is(fe.Err, adts.ErrSyncNotFound) || errors.Is(fe.Err, adts.ErrTruncatedHeader) {
		return fe.Err.Error()
	}
	return fmt.Sprintf("%v, code %d", fe.Err, fe.Code)
}

func crcString(present bool) string {
	if present {
		return "present"
	}
	return "absent"
}

type document struct {
	File     string       `yaml:"file"`
	Title    string       `yaml:"stream_title,omitempty"`
	Error    string       `yaml:"error,omitempty"`
	Header   *headerDoc   `yaml:"header,omitempty"`
	Failures []failureDoc `yaml:"failures,omitempty"`
	Frames   *int         `yaml:"frames,omitempty"`
	Offsets  []int        `yaml:"frame_offsets,omitempty,flow"`
}

// headerDoc leaves fields that failed to decode null.
type headerDoc struct {
	MPEGVersion          *string `yaml:"mpeg_version"`
	CRCPresent           *bool   `yaml:"crc_present"`
	Profile              *string `yaml:"profile"`
	SamplingFrequency    *int    `yaml:"sampling_frequency_hz"`
	ChannelConfiguration *string `yaml:"channel_configuration"`
}

type failureDoc struct {
	Field  string `yaml:"field"`
	Reason string `yaml:"reason"`
}

func newDocument(res *Result) document {
	doc := document{
		File:    res.Path,
		Title:   res.Title,
		Offsets: res.Offsets,
	}
	if res.Err != nil {
		doc.Error = res.Err.Error()
	} else {
		frames := res.Frames
		doc.Frames = &frames
	}

	r := res.Report
	if len(r.Fields) == 0 {
		return doc
	}

	h := r.Header
	hd := &headerDoc{}
	if r.Result(adts.FieldMPEGVersion).OK() {
		hd.MPEGVersion = ptr(h.MPEGVersion.String())
	}
	if r.Result(adts.FieldProtectionAbsent).OK() {
		hd.CRCPresent = ptr(h.CRCPresent)
	}
	if r.Result(adts.FieldProfile).OK() {
		hd.Profile = ptr(h.Profile.String())
	}
	if r.Result(adts.FieldSamplingFrequency).OK() {
		hd.SamplingFrequency = ptr(h.SamplingFrequency)
	}
	if r.Result(adts.FieldChannelConfiguration).OK() {
		hd.ChannelConfiguration = ptr(h.ChannelConfiguration.String())
	}
	doc.Header = hd

	for _, failed := range r.Failures() {
		doc.Failures = append(doc.Failures, failureDoc{
			Field:  failed.Field.String(),
			Reason: failureReason(failed.Err),
		})
	}
	return doc
}

func renderYAML(w io.Writer, res *Result) error {
	out, err := yaml.Marshal(newDocument(res))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func ptr[T any](v T) *T {
	return &v
}
