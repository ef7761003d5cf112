package fp3

// magic is the 3-byte prefix every FP3 blob must start with.
var magic = [3]byte{'F', 'P', '3'}

// Decode parses an FP3 container into a Template. buf is borrowed: Decode
// never mutates it and never retains a reference to it past return (all
// fields of Template are copies).
//
// Decode follows the container's wire format exactly, including two
// non-obvious conventions: the metadata dictionary
// is consumed but never interpreted (it is always empty in practice), and
// the print-data payload begins directly with the outer array length --
// there is no GVariant type-signature string in front of it, even though
// a literal reading of the container's nominal type would suggest one.
// Treating the payload as signature-elided is required to stay in sync
// with real FP3 blobs; a strict variant parse desyncs immediately.
func Decode(buf []byte) (*Template, error) {
	if len(buf) < 3 || buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] {
		return nil, wrapErr(errBadMagic, 0)
	}

	r := newReader(buf[3:])

	printTypeRaw, err := r.readI32LE()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	printType := PrintType(printTypeRaw)
	if printType != PrintTypeNBIS && printType != PrintTypeURU4000 {
		return nil, wrapErr(errUnsupportedPrintType, r.pos+3)
	}

	driver, err := r.readCStr()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	device, err := r.readCStr()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}

	deviceStoredByte, err := r.readByte()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	fingerCode, err := r.readByte()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}

	username, hasUsername, err := r.readOptionalCStr()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	description, hasDescription, err := r.readOptionalCStr()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}

	julianDate, err := r.readI32LE()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}

	metaCount, err := r.readU32LE()
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	metadata := make(map[string][]byte, metaCount)
	for i := uint32(0); i < metaCount; i++ {
		key, err := r.readCStr()
		if err != nil {
			return nil, wrapErr(err, r.pos+3)
		}
		// The embedded variant value is never materialized: in every
		// observed FP3 blob the metadata dictionary is empty, so this
		// loop body never actually runs. Should a producer ever emit
		// entries, there is no reliable signature to size the value
		// against (see the package doc on signature elision), so the
		// key is recorded with a nil value rather than guessing at a
		// byte count and desynchronizing the rest of the payload.
		metadata[key] = nil
	}

	prints, err := decodePrints(r)
	if err != nil {
		return nil, wrapErr(err, r.pos+3)
	}
	if len(prints) == 0 {
		return nil, wrapErr(errEmptyTemplate, r.pos+3)
	}

	return &Template{
		PrintType:      printType,
		DriverID:       driver,
		DeviceID:       device,
		DeviceStored:   deviceStoredByte != 0,
		FingerCode:     fingerCode,
		Username:       username,
		HasUsername:    hasUsername,
		Description:    description,
		HasDescription: hasDescription,
		JulianDate:     julianDate,
		Metadata:       metadata,
		Prints:         prints,
	}, nil
}

// decodePrints reads the outer length-prefixed sequence of minutiae
// tuples that makes up the remainder of an FP3 buffer after the header.
func decodePrints(r *reader) ([]MinutiaSet, error) {
	outerCount, err := r.readU32LE()
	if err != nil {
		return nil, err
	}

	prints := make([]MinutiaSet, 0, outerCount)
	for i := uint32(0); i < outerCount; i++ {
		if err := r.alignTo(4); err != nil {
			return nil, err
		}
		xs, err := r.readI32Array()
		if err != nil {
			return nil, err
		}

		if err := r.alignTo(4); err != nil {
			return nil, err
		}
		ys, err := r.readI32Array()
		if err != nil {
			return nil, err
		}

		if err := r.alignTo(4); err != nil {
			return nil, err
		}
		thetas, err := r.readI32Array()
		if err != nil {
			return nil, err
		}

		if len(xs) != len(ys) || len(xs) != len(thetas) {
			return nil, errShapeMismatch
		}

		n := len(xs)
		if n > MaxPoints {
			n = MaxPoints
		}
		prints = append(prints, MinutiaSet{
			X:     xs[:n],
			Y:     ys[:n],
			Theta: thetas[:n],
		})
	}

	return prints, nil
}
