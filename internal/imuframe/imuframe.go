// Package imuframe decodes the 14-byte fixed-point IMU payload shared by
// every HaritoraX model and derives linear acceleration by rotating out
// gravity with a Hamilton quaternion product.
package imuframe

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/haritora-bridge/slimetora/internal/model"
)

const (
	frameLen = 14

	rotationScalar  = 0.01 / 180
	gravityScalar   = 1.0 / 256
	gravityConstant = 9.81
	gravityAdjust   = 1.2
)

// Decode parses a 14-byte fixed-point IMU payload into an model.IMUData.
// trackerName must be non-empty; data must be at least 14 bytes (trailing
// bytes, if any, are ignored — they carry model-specific extras the caller
// decodes separately).
func Decode(data []byte, trackerName string) (model.IMUData, error) {
	if trackerName == "" || len(data) < frameLen {
		return model.IMUData{}, model.NewError(model.ErrInvalidPacket, nil)
	}

	rx := int16(binary.LittleEndian.Uint16(data[0:2]))
	ry := int16(binary.LittleEndian.Uint16(data[2:4]))
	rz := int16(binary.LittleEndian.Uint16(data[4:6]))
	rw := int16(binary.LittleEndian.Uint16(data[6:8]))
	gx := int16(binary.LittleEndian.Uint16(data[8:10]))
	gy := int16(binary.LittleEndian.Uint16(data[10:12]))
	gz := int16(binary.LittleEndian.Uint16(data[12:14]))

	rotation := model.Quaternion{
		X: float64(rx) * rotationScalar,
		Y: float64(ry) * rotationScalar,
		Z: float64(rz) * -rotationScalar,
		W: float64(rw) * -rotationScalar,
	}

	rawGravity := model.Vector3{
		X: float64(gx) * gravityScalar,
		Y: float64(gy) * gravityScalar,
		Z: float64(gz) * gravityScalar,
	}

	accel := removeGravity(rotation, rawGravity)
	degrees := toEulerDegrees(rotation)

	return model.IMUData{
		TrackerName: trackerName,
		RawRotation: rotation,
		Degrees:     degrees,
		Accel:       accel,
	}, nil
}

// removeGravity rotates the constant gravity vector into the sensor frame
// via q* · p · q and subtracts it from the raw (gravity-inclusive) reading,
// following the vendor's fixed 1.2 empirical gain.
func removeGravity(rotation model.Quaternion, rawGravity model.Vector3) model.Vector3 {
	rc := quat.Number{Real: rotation.W, Imag: rotation.X, Jmag: rotation.Y, Kmag: rotation.Z}
	conj := quat.Conj(rc)
	p := quat.Number{Kmag: gravityConstant}

	h := quat.Mul(quat.Mul(conj, p), rc)

	return model.Vector3{
		X: rawGravity.X + h.Imag*gravityAdjust,
		Y: rawGravity.Y + h.Jmag*gravityAdjust,
		Z: rawGravity.Z - h.Kmag*gravityAdjust,
	}
}

// toEulerDegrees converts the quaternion to intrinsic ZYX Euler angles in
// degrees, normalizing first since the raw fixed-point components need not
// have unit magnitude.
func toEulerDegrees(q model.Quaternion) model.Euler {
	norm := quat.Abs(quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z})
	if norm == 0 {
		return model.Euler{}
	}
	x, y, z, w := q.X/norm, q.Y/norm, q.Z/norm, q.W/norm

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (w*y - z*x)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	const toDeg = 180 / math.Pi
	return model.Euler{X: roll * toDeg, Y: pitch * toDeg, Z: yaw * toDeg}
}

// NormalizedRotation returns the unit quaternion for rotation, matching the
// normalization the emulator adapter applies before sending it over UDP.
func NormalizedRotation(rotation model.Quaternion) model.Quaternion {
	norm := quat.Abs(quat.Number{Real: rotation.W, Imag: rotation.X, Jmag: rotation.Y, Kmag: rotation.Z})
	if norm == 0 {
		return model.Quaternion{W: 1}
	}
	return model.Quaternion{
		X: rotation.X / norm,
		Y: rotation.Y / norm,
		Z: rotation.Z / norm,
		W: rotation.W / norm,
	}
}
