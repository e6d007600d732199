// Package bleconn implements the BLE GATT backend that scans for and
// maintains connections to HaritoraX trackers, wrapping
// tinygo.org/x/bluetooth.
package bleconn

import "strings"

// Service is a known GATT service exposed by a HaritoraX tracker.
type Service struct {
	UUID string
	Name string
}

// Services lists every service name recovered from the vendor app,
// covering both Bluetooth SIG standard services and the two
// vendor-specific ones used for tracker data and settings.
var Services = []Service{
	{"1800", "Generic Access"},
	{"1801", "Generic Attribute"},
	{"180a", "Device Information"},
	{"180f", "Battery Service"},
	{"fe59", "DFU Service"},
	{"00dbec3a-90aa-11ed-a1eb-0242ac120002", "Tracker Service"},
	{"ef84369a-90a9-11ed-a1eb-0242ac120002", "Setting Service"},
}

// TrackerServiceUUID and SettingServiceUUID are the two vendor services.
// When the device name prefix is not recognized, the scan-time
// advertisement match falls back to SettingServiceUUID alone.
const (
	TrackerServiceUUID = "00dbec3a-90aa-11ed-a1eb-0242ac120002"
	SettingServiceUUID = "ef84369a-90a9-11ed-a1eb-0242ac120002"
)

// Characteristic is one GATT characteristic this backend understands.
type Characteristic struct {
	UUID         string
	Name         string
	Subscribable bool
}

// Characteristics is the full vendor characteristic table: standard
// Device Information/Battery characteristics plus the Tracker Service and
// Setting Service's vendor-specific ones.
var Characteristics = []Characteristic{
	{"2a19", "BatteryLevel", true},
	{"2a25", "SerialNumber", false},
	{"2a29", "Manufacturer", false},
	{"2a27", "HardwareRevision", false},
	{"2a26", "FirmwareRevision", false},
	{"2a28", "SoftwareRevision", false},
	{"2a24", "ModelNumber", false},
	{"00dbf1c6-90aa-11ed-a1eb-0242ac120002", "Sensor", true},
	{"00dbf07c-90aa-11ed-a1eb-0242ac120002", "NumberOfImu", false},
	{"00dbf306-90aa-11ed-a1eb-0242ac120002", "Magnetometer", true},
	{"00dbf450-90aa-11ed-a1eb-0242ac120002", "MainButton", true},
	{"00dbf586-90aa-11ed-a1eb-0242ac120002", "SecondaryButton", true},
	{"00dbf6a8-90aa-11ed-a1eb-0242ac120002", "TertiaryButton", true},
	{"ef844202-90a9-11ed-a1eb-0242ac120002", "FpsSetting", false},
	{"ef8443f6-90a9-11ed-a1eb-0242ac120002", "TofSetting", false},
	{"ef8445c2-90a9-11ed-a1eb-0242ac120002", "SensorModeSetting", false},
	{"ef84c300-90a9-11ed-a1eb-0242ac120002", "WirelessModeSetting", false},
	{"ef84c301-90a9-11ed-a1eb-0242ac120002", "BodyPartAssignment", false},
	{"ef84c305-90a9-11ed-a1eb-0242ac120002", "AutoCalibrationSetting", false},
	{"ef844766-90a9-11ed-a1eb-0242ac120002", "SensorDataControl", false},
	{"ef843b54-90a9-11ed-a1eb-0242ac120002", "BatteryVoltage", true},
	{"ef843cb2-90a9-11ed-a1eb-0242ac120002", "ChargeStatus", true},
	{"8ec90003-f315-4f60-9fb8-838830daea50", "DFUControl", false},
	{"0c900914-a85e-11ed-afa1-0242ac120002", "CommandMode", false},
	{"0c900c84-a85e-11ed-afa1-0242ac120002", "Command", false},
	{"0c900df6-a85e-11ed-afa1-0242ac120002", "Response", false},
}

// ExpandUUID converts a 4-hex short form to the Bluetooth base UUID; long
// forms are returned unchanged (lowercased).
func ExpandUUID(uuid string) string {
	uuid = strings.ToLower(uuid)
	if len(uuid) == 4 {
		return "0000" + uuid + "-0000-1000-8000-00805f9b34fb"
	}
	return uuid
}

var charByUUID = buildCharIndex()

func buildCharIndex() map[string]Characteristic {
	idx := make(map[string]Characteristic, len(Characteristics))
	for _, c := range Characteristics {
		idx[ExpandUUID(c.UUID)] = c
	}
	return idx
}

// CharacteristicName returns the table name for a characteristic UUID
// (short or long form), and whether it was recognized.
func CharacteristicName(uuid string) (string, bool) {
	c, ok := charByUUID[ExpandUUID(uuid)]
	if !ok {
		return "", false
	}
	return c.Name, true
}

// SubscribableCharacteristics returns every characteristic marked
// subscribable in the table, in table order.
func SubscribableCharacteristics() []Characteristic {
	var out []Characteristic
	for _, c := range Characteristics {
		if c.Subscribable {
			out = append(out, c)
		}
	}
	return out
}

// BodyPartAssignmentUUID identifies the single-byte characteristic read
// once on connect to resolve a tracker's body-part label.
const BodyPartAssignmentUUID = "ef84c301-90a9-11ed-a1eb-0242ac120002"
