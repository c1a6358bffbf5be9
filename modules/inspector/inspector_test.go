package inspector

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/zachfi/adtsinfo/pkg/adts"
)

// lcStereoFrame is an MPEG-4, no CRC, LC, 48 kHz, front-left/right frame with
// a short zero payload.
var lcStereoFrame = []byte{0xFF, 0xF1, 0x0E, 0x02, 0x00, 0x1F, 0xFC, 0x00, 0x00, 0x00}

// reservedProfileFrame carries profile code 0.
var reservedProfileFrame = []byte{0xFF, 0xF1, 0x0C, 0x02, 0x00, 0x1F, 0xFC, 0x00, 0x00, 0x00}

func frames(frame []byte, n int) []byte {
	return bytes.Repeat(frame, n)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestInspector(t *testing.T, cfg Config, out io.Writer) *Inspector {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	i, err := New(cfg, logger, out)
	require.NoError(t, err)
	return i
}

func TestNewValidatesConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := New(Config{Format: "xml"}, logger, io.Discard)
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, err = New(Config{Interval: -time.Second}, logger, io.Discard)
	assert.Error(t, err)

	i, err := New(Config{SampleSize: maxSampleSize * 2}, logger, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, FormatText, i.cfg.Format)
	assert.Equal(t, maxSampleSize, i.cfg.SampleSize)
	assert.Equal(t, int64(defaultMaxBodySize), i.cfg.MaxBodySize)
}

func TestInspectFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "track.aac", frames(lcStereoFrame, 3))
	i := newTestInspector(t, Config{ListOffsets: true}, io.Discard)

	framesBefore := testutil.ToFloat64(metricFrames)
	okBefore := testutil.ToFloat64(metricFiles.WithLabelValues(resultOK))

	res, err := i.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Report.OK())
	assert.Equal(t, 3, res.Frames)
	assert.Equal(t, []int{0, 10, 20}, res.Offsets)
	assert.Equal(t, adts.HeaderInfo{
		MPEGVersion:          adts.MPEG4,
		Profile:              adts.ProfileLC,
		SamplingFrequency:    48000,
		ChannelConfiguration: adts.ChannelFrontLR,
	}, res.Report.Header)

	assert.Equal(t, 3.0, testutil.ToFloat64(metricFrames)-framesBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(metricFiles.WithLabelValues(resultOK))-okBefore)
	assert.Equal(t, 3.0, testutil.ToFloat64(metricLastFrames.WithLabelValues(path)))
}

func TestInspectMissingFile(t *testing.T) {
	i := newTestInspector(t, Config{}, io.Discard)

	res, err := i.Inspect(context.Background(), filepath.Join(t.TempDir(), "missing.aac"))
	require.Error(t, err)
	assert.ErrorIs(t, err, adts.ErrSourceUnavailable)
	assert.Equal(t, err, res.Err)
	assert.Empty(t, res.Report.Fields)
}

func TestInspectAggregatesFieldFailures(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.aac", frames(reservedProfileFrame, 2))

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{path}}, &out)

	before := testutil.ToFloat64(metricFieldFailures.WithLabelValues("profile"))
	require.NoError(t, i.InspectAll(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metricFieldFailures.WithLabelValues("profile"))-before)
	assert.Equal(t, "File: "+path+"\n"+
		"MPEG version: MPEG-4\n"+
		"CRC: absent\n"+
		"Profile: invalid (adts: invalid profile, code 0)\n"+
		"Sampling frequency: 48000 Hz\n"+
		"Channel configuration: 2 - 2 channels: front-left, front-right\n"+
		"Number of frames in AAC file: 2\n\n", out.String())
}

func TestInspectStrictStopsAtFirstFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.aac", frames(reservedProfileFrame, 2))

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{path}, Strict: true}, &out)

	err := i.InspectAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, adts.ErrInvalidProfile)

	assert.Contains(t, out.String(), "Error: profile: adts: invalid profile (code 0)\n")
	assert.NotContains(t, out.String(), "Number of frames")
}

func TestInspectAllText(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.aac", frames(lcStereoFrame, 4))
	missing := filepath.Join(dir, "missing.aac")

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{good, missing}}, &out)

	err := i.InspectAll(context.Background())
	assert.ErrorIs(t, err, adts.ErrSourceUnavailable)

	reports := strings.Split(strings.TrimSpace(out.String()), "\n\n")
	require.Len(t, reports, 2)
	assert.Equal(t, "File: "+good+"\n"+
		"MPEG version: MPEG-4\n"+
		"CRC: absent\n"+
		"Profile: AAC LC (Low Complexity)\n"+
		"Sampling frequency: 48000 Hz\n"+
		"Channel configuration: 2 - 2 channels: front-left, front-right\n"+
		"Number of frames in AAC file: 4", reports[0])
	assert.True(t, strings.HasPrefix(reports[1], "File: "+missing+"\nError: failed to load input: "), reports[1])
}

func TestInspectAllWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	a := writeFile(t, dir, "a.aac", frames(lcStereoFrame, 1))
	b := writeFile(t, sub, "b.ADTS", frames(lcStereoFrame, 2))
	writeFile(t, dir, "notes.txt", []byte("not audio"))

	files, err := expandPath(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{dir}}, &out)
	require.NoError(t, i.InspectAll(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "File: "))
}

func TestInspectSyncNotFound(t *testing.T) {
	path := writeFile(t, t.TempDir(), "noise.aac", []byte{0x00, 0x01, 0x02, 0xFF, 0x00})

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{path}}, &out)
	require.NoError(t, i.InspectAll(context.Background()))

	assert.Contains(t, out.String(), "MPEG version: invalid (adts: sync word not found)\n")
	assert.Contains(t, out.String(), "Number of frames in AAC file: 0\n")
}

func TestRenderYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.aac", frames(reservedProfileFrame, 3))

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{path}, Format: FormatYAML, ListOffsets: true}, &out)
	require.NoError(t, i.InspectAll(context.Background()))
	require.True(t, strings.HasPrefix(out.String(), "---\n"))

	var doc document
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, path, doc.File)
	require.NotNil(t, doc.Frames)
	assert.Equal(t, 3, *doc.Frames)
	assert.Equal(t, []int{0, 10, 20}, doc.Offsets)

	require.NotNil(t, doc.Header)
	assert.Nil(t, doc.Header.Profile)
	require.NotNil(t, doc.Header.SamplingFrequency)
	assert.Equal(t, 48000, *doc.Header.SamplingFrequency)
	require.NotNil(t, doc.Header.CRCPresent)
	assert.False(t, *doc.Header.CRCPresent)
	assert.Equal(t, []failureDoc{{Field: "profile", Reason: "adts: invalid profile, code 0"}}, doc.Failures)
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, Render(io.Discard, &Result{}, "xml"))
}

func TestInspectStreamURL(t *testing.T) {
	audio := frames(lcStereoFrame, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/aac")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	i := newTestInspector(t, Config{SampleSize: 35}, io.Discard)
	res, err := i.Inspect(context.Background(), srv.URL+"/live")
	require.NoError(t, err)
	// 35 bytes hold three full frames and the sync word of a fourth.
	assert.Equal(t, 4, res.Frames)
	assert.Equal(t, adts.ProfileLC, res.Report.Header.Profile)
}

func TestServiceInspectsOnceAndTerminates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "track.aac", frames(lcStereoFrame, 2))

	var out bytes.Buffer
	i := newTestInspector(t, Config{Paths: []string{path}}, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, i.StartAsync(ctx))
	require.NoError(t, i.AwaitTerminated(ctx))
	assert.Contains(t, out.String(), "Number of frames in AAC file: 2\n")
}

func TestServiceRepeatsOnInterval(t *testing.T) {
	path := writeFile(t, t.TempDir(), "track.aac", frames(lcStereoFrame, 1))

	out := &syncBuffer{}
	i := newTestInspector(t, Config{Paths: []string{path}, Interval: 10 * time.Millisecond}, out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, i.StartAsync(ctx))
	require.NoError(t, i.AwaitRunning(ctx))
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "File: ") >= 3
	}, 5*time.Second, 10*time.Millisecond)

	i.StopAsync()
	require.NoError(t, i.AwaitTerminated(ctx))
}

func TestExpandPathErrors(t *testing.T) {
	files, err := expandPath("http://example.com/stream")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.com/stream"}, files)

	missing := filepath.Join(t.TempDir(), "gone.aac")
	files, err = expandPath(missing)
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, files)
}

// syncBuffer guards a bytes.Buffer read by the test while the service writes.
type syncBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.String()
}
