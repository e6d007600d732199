package dongleconn

// parseIdentifier splits a dongle frame identifier (the text before the
// first colon on a line, e.g. "x0", "i1", or a bare "r") into its frame
// kind letter and numeric port/sensor slot. A missing digit defaults to
// slot 0.
func parseIdentifier(identifier string) (kind byte, portID byte) {
	for i := 0; i < len(identifier); i++ {
		c := identifier[i]
		switch {
		case c >= 'a' && c <= 'z':
			kind = c
		case c >= '0' && c <= '9':
			portID = c - '0'
		}
	}
	return kind, portID
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, errInvalidHex
	}
}
