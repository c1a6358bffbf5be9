// Package adts inspects AAC elementary streams framed as ADTS (Audio Data
// Transport Stream).
//
// It decodes the fixed header of the first frame into a HeaderInfo and counts
// the frame boundaries in a buffer:
//
//	data, err := adts.LoadFile("track.aac")
//	if err != nil {
//	    return err
//	}
//	report := adts.Decode(data)
//	frames := adts.CountFrames(data, report.Header)
//
// Every header field is decoded independently. A failure in one field is
// recorded in the Report and does not stop the remaining fields from being
// read; callers wanting early termination use Report.Strict.
//
// The package does no I/O after the buffer is loaded and holds no state, so
// all functions are safe for concurrent use.
package adts
