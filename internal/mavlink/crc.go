package mavlink

const crcInit uint16 = 0xFFFF

// accumulate folds one byte into a CRC-16/MCRF4XX (X.25) checksum.
func accumulate(b byte, crc uint16) uint16 {
	tmp := b ^ byte(crc&0xFF)
	tmp ^= tmp << 4
	t := uint16(tmp)
	return (crc >> 8) ^ (t << 8) ^ (t << 3) ^ (t >> 4)
}

func crc16(data []byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc = accumulate(b, crc)
	}
	return crc
}

// checksum is the frame checksum: the CRC over data followed by the seed byte.
func checksum(data []byte, extra uint8) uint16 {
	return accumulate(extra, crc16(data))
}

// crcExtra maps message ids to the seed byte of their definition.
var crcExtra = map[uint8]uint8{
	MsgIDHeartbeat:             50,
	MsgIDParamValue:            220,
	MsgIDRCChannelsScaled:      237,
	MsgIDRCChannelsRaw:         244,
	MsgIDNamedValueFloat:       170,
	MsgIDStatusText:            83,
	MsgIDRadioCalibration:      71,
	MsgIDUalbertaSysStatus:     15,
	MsgIDUalbertaControlEffort: 204,
}
