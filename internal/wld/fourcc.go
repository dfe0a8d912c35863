package wld

// FourCC is a four-byte chunk tag. Tags are compared by exact byte equality
// and are not aligned within the file. Non-printable bytes are legal.
type FourCC [4]byte

// String renders the tag as four characters, substituting '.' for
// non-printable bytes.
func (id FourCC) String() string {
	out := [4]byte(id)
	for i, c := range out {
		if c < 0x20 || c > 0x7e {
			out[i] = '.'
		}
	}
	return string(out[:])
}

// Recognized chunk tags. fccBSC carries a literal trailing space.
var (
	fccBUIV = FourCC{'B', 'U', 'I', 'V'}
	fccVERC = FourCC{'V', 'E', 'R', 'C'}
	fccWRLD = FourCC{'W', 'R', 'L', 'D'}
	fccWLIF = FourCC{'W', 'L', 'I', 'F'}
	fccDTRS = FourCC{'D', 'T', 'R', 'S'}
	fccDIMP = FourCC{'D', 'I', 'M', 'P'}
	fccDPOS = FourCC{'D', 'P', 'O', 'S'}
	fccDICT = FourCC{'D', 'I', 'C', 'T'}
	fccDEND = FourCC{'D', 'E', 'N', 'D'}
	fccBRAR = FourCC{'B', 'R', 'A', 'R'}
	fccBR3D = FourCC{'B', 'R', '3', 'D'}
	fccBRMP = FourCC{'B', 'R', 'M', 'P'}
	fccBREN = FourCC{'B', 'R', 'E', 'N'}
	fccBSC  = FourCC{'B', 'S', 'C', ' '}
	fccVTXs = FourCC{'V', 'T', 'X', 's'}
	fccPLNs = FourCC{'P', 'L', 'N', 's'}
	fccEDGs = FourCC{'E', 'D', 'G', 's'}
	fccBPOs = FourCC{'B', 'P', 'O', 's'}
	fccBSP0 = FourCC{'B', 'S', 'P', '0'}
	fccSHMP = FourCC{'S', 'H', 'M', 'P'}
	fccPSLS = FourCC{'P', 'S', 'L', 'S'}
	fccPSLE = FourCC{'P', 'S', 'L', 'E'}
	fccEOAR = FourCC{'E', 'O', 'A', 'R'}
	fccTRAR = FourCC{'T', 'R', 'A', 'R'}
	fccTRRN = FourCC{'T', 'R', 'R', 'N'}
	fccTREN = FourCC{'T', 'R', 'E', 'N'}
	fccEOTA = FourCC{'E', 'O', 'T', 'A'}
	fccWSTA = FourCC{'W', 'S', 'T', 'A'}
	fccWEND = FourCC{'W', 'E', 'N', 'D'}
)
