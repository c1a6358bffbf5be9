package adts

import "errors"

// FieldResult is the outcome of decoding one header field.
type FieldResult struct {
	Field Field
	Err   error // *FieldError, nil on success
}

// OK reports whether the field decoded successfully.
func (r FieldResult) OK() bool {
	return r.Err == nil
}

// Report is the outcome of decoding the first ADTS header in a buffer.
//
// Every field is attempted; a failed field leaves its HeaderInfo value unknown
// and records the reason in Fields.
type Report struct {
	// SyncOffset is the index of the first 0xFF byte of the sync word,
	// -1 when no sync word was found.
	SyncOffset int
	Header     HeaderInfo
	Fields     []FieldResult
}

// Result returns the result recorded for f.
func (r Report) Result(f Field) FieldResult {
	for _, res := range r.Fields {
		if res.Field == f {
			return res
		}
	}
	return FieldResult{Field: f, Err: &FieldError{Field: f, Err: ErrSyncNotFound}}
}

// OK reports whether every field decoded successfully.
func (r Report) OK() bool {
	return r.Strict() == nil
}

// Failures returns the failed field results in decode order.
func (r Report) Failures() []FieldResult {
	var failed []FieldResult
	for _, res := range r.Fields {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err returns all field failures joined, or nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failures() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Strict returns the first field failure in decode order, or nil.
func (r Report) Strict() error {
	for _, res := range r.Fields {
		if !res.OK() {
			return res.Err
		}
	}
	return nil
}

// FindSync returns the index of the first byte pair forming an ADTS sync
// word: a byte of eight set bits followed by a byte whose top four bits are
// set. It returns -1 when there is none.
func FindSync(data []byte) int {
	for i := 0; i+1 < len(data); i++ {
		if allOnes(data[i], 8) && allOnes(data[i+1], 4) {
			return i
		}
	}
	return -1
}

// Decode locates the first sync word in data and decodes the fixed header
// that follows it.
func Decode(data []byte) Report {
	d := decoder{data: data, pos: -1}

	report := Report{
		SyncOffset: FindSync(data),
		Fields:     make([]FieldResult, 0, numFields),
	}

	sync := FieldResult{Field: FieldSync}
	if report.SyncOffset < 0 {
		sync.Err = &FieldError{Field: FieldSync, Err: ErrSyncNotFound}
	} else {
		// Header bits continue inside the second sync byte.
		d.pos = report.SyncOffset + 1
	}
	report.Fields = append(report.Fields, sync)

	for _, s := range decodeSteps {
		res := FieldResult{Field: s.field}
		if code, err := s.decode(&d); err != nil {
			res.Err = &FieldError{Field: s.field, Code: code, Err: err}
		}
		report.Fields = append(report.Fields, res)
	}

	report.Header = d.header
	return report
}

// decodeSteps run in header order. Offsets passed to byteAt are relative to
// the byte holding the last four sync bits.
var decodeSteps = [...]struct {
	field  Field
	decode func(*decoder) (uint8, error)
}{
	{FieldMPEGVersion, (*decoder).mpegVersion},
	{FieldLayer, (*decoder).layer},
	{FieldProtectionAbsent, (*decoder).protectionAbsent},
	{FieldProfile, (*decoder).profile},
	{FieldSamplingFrequency, (*decoder).samplingFrequency},
	{FieldPrivateBit, (*decoder).privateBit},
	{FieldChannelConfiguration, (*decoder).channelConfiguration},
}

type decoder struct {
	data   []byte
	pos    int
	header HeaderInfo
}

func (d *decoder) byteAt(rel int) (byte, error) {
	if d.pos < 0 {
		return 0, ErrSyncNotFound
	}
	i := d.pos + rel
	if i >= len(d.data) {
		return 0, ErrTruncatedHeader
	}
	return d.data[i], nil
}

func (d *decoder) mpegVersion() (uint8, error) {
	b, err := d.byteAt(0)
	if err != nil {
		return 0, err
	}
	bit := ReadBit(b, 4)
	if bit == 0 {
		d.header.MPEGVersion = MPEG4
	} else {
		d.header.MPEGVersion = MPEG2
	}
	return bit, nil
}

func (d *decoder) layer() (uint8, error) {
	b, err := d.byteAt(0)
	if err != nil {
		return 0, err
	}
	code := ReadBit(b, 5)<<1 | ReadBit(b, 6)
	if code != 0 {
		return code, ErrInvalidLayer
	}
	return code, nil
}

func (d *decoder) protectionAbsent() (uint8, error) {
	b, err := d.byteAt(0)
	if err != nil {
		return 0, err
	}
	bit := ReadBit(b, 7)
	d.header.CRCPresent = bit == 0
	return bit, nil
}

func (d *decoder) profile() (uint8, error) {
	b, err := d.byteAt(1)
	if err != nil {
		return 0, err
	}
	code := ReadBits(b, 0, 2)
	d.header.Profile, err = ProfileFromCode(code)
	return code, err
}

func (d *decoder) samplingFrequency() (uint8, error) {
	b, err := d.byteAt(1)
	if err != nil {
		return 0, err
	}
	index := ReadBits(b, 2, 4)
	d.header.SamplingFrequency, err = SamplingFrequencyFromIndex(index)
	return index, err
}

// privateBit is read for completeness and discarded.
func (d *decoder) privateBit() (uint8, error) {
	b, err := d.byteAt(1)
	if err != nil {
		return 0, err
	}
	return ReadBits(b, 6, 1), nil
}

// channelConfiguration recombines the field's high bit, the top bit of the
// profile byte, with the two low bits of the following byte.
func (d *decoder) channelConfiguration() (uint8, error) {
	hi, err := d.byteAt(1)
	if err != nil {
		return 0, err
	}
	lo, err := d.byteAt(2)
	if err != nil {
		return 0, err
	}
	code := ReadBits(hi, 7, 1)<<2 | ReadBits(lo, 0, 2)
	d.header.ChannelConfiguration, err = ChannelConfigurationFromCode(code)
	return code, err
}
