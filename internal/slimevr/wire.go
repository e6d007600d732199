package slimevr

import (
	"encoding/binary"
	"math"

	"github.com/haritora-bridge/slimetora/internal/model"
)

// Packet type tags from the SlimeVR firmware wire protocol.
const (
	packetHeartbeat   uint32 = 0
	packetAccel       uint32 = 4
	packetHandshake   uint32 = 3
	packetBattery     uint32 = 12
	packetUserAction  uint32 = 20
	packetSensorInfo  uint32 = 15
	packetRotationV2  uint32 = 17
)

const (
	boardHaritora     byte = 100
	mcuHaritora       byte = 100
	imuTypeUnknown    byte = 0
	sensorStatusOK    byte = 1
	firmwareProtoVer  = 13
)

// encodePacket writes the 4-byte packet type followed by the 8-byte packet
// counter that prefixes every SlimeVR firmware packet.
func encodePacket(packetType uint32, counter uint64, payload []byte) []byte {
	buf := make([]byte, 12+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], packetType)
	binary.BigEndian.PutUint64(buf[4:12], counter)
	copy(buf[12:], payload)
	return buf
}

// encodeHandshake builds the initial handshake packet a tracker sends to
// announce itself to the SlimeVR server.
func encodeHandshake(counter uint64, mac [6]byte, firmwareName string) []byte {
	name := []byte(firmwareName)
	payload := make([]byte, 0, 4+4+4+4+1+6+1+len(name))
	payload = appendUint32(payload, firmwareProtoVer)
	payload = appendUint32(payload, uint32(boardHaritora))
	payload = appendUint32(payload, uint32(imuTypeUnknown))
	payload = appendUint32(payload, uint32(mcuHaritora))
	payload = append(payload, mac[:]...)
	payload = append(payload, byte(len(name)))
	payload = append(payload, name...)
	return encodePacket(packetHandshake, counter, payload)
}

// encodeHeartbeat builds a heartbeat keepalive packet.
func encodeHeartbeat(counter uint64) []byte {
	return encodePacket(packetHeartbeat, counter, nil)
}

// encodeSensorInfo announces a single IMU sensor attached to the tracker.
func encodeSensorInfo(counter uint64, sensorID byte) []byte {
	payload := []byte{sensorID, sensorStatusOK, imuTypeUnknown}
	return encodePacket(packetSensorInfo, counter, payload)
}

// encodeRotation builds a normalized-quaternion rotation packet for sensorID.
func encodeRotation(counter uint64, sensorID byte, q model.Quaternion) []byte {
	payload := make([]byte, 0, 1+1+16+1)
	payload = append(payload, sensorID)
	payload = append(payload, 1) // SensorDataType::Normal
	payload = appendFloat32(payload, float32(q.X))
	payload = appendFloat32(payload, float32(q.Y))
	payload = appendFloat32(payload, float32(q.Z))
	payload = appendFloat32(payload, float32(q.W))
	payload = append(payload, 1) // calibration info
	return encodePacket(packetRotationV2, counter, payload)
}

// encodeAccel builds a linear-acceleration packet for sensorID.
func encodeAccel(counter uint64, sensorID byte, v model.Vector3) []byte {
	payload := make([]byte, 0, 12+1)
	payload = appendFloat32(payload, float32(v.X))
	payload = appendFloat32(payload, float32(v.Y))
	payload = appendFloat32(payload, float32(v.Z))
	payload = append(payload, sensorID)
	return encodePacket(packetAccel, counter, payload)
}

// encodeBattery builds a battery-level/voltage packet.
func encodeBattery(counter uint64, percent, voltage float32) []byte {
	payload := make([]byte, 0, 8)
	payload = appendFloat32(payload, voltage)
	payload = appendFloat32(payload, percent)
	return encodePacket(packetBattery, counter, payload)
}

// encodeUserAction builds a button-induced user-action packet.
func encodeUserAction(counter uint64, action byte) []byte {
	return encodePacket(packetUserAction, counter, []byte{action})
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendFloat32(b []byte, v float32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
	return append(b, tmp[:]...)
}
