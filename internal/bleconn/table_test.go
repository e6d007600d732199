package bleconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandUUID_ShortForm(t *testing.T) {
	assert.Equal(t, "00002a19-0000-1000-8000-00805f9b34fb", ExpandUUID("2a19"))
	assert.Equal(t, "00002a19-0000-1000-8000-00805f9b34fb", ExpandUUID("2A19"))
}

func TestExpandUUID_LongFormPassesThrough(t *testing.T) {
	long := "ef843b54-90a9-11ed-a1eb-0242ac120002"
	assert.Equal(t, long, ExpandUUID(long))
	assert.Equal(t, long, ExpandUUID("EF843B54-90A9-11ED-A1EB-0242AC120002"))
}

func TestCharacteristicName_KnownShortForm(t *testing.T) {
	name, ok := CharacteristicName("2a19")
	assert.True(t, ok)
	assert.Equal(t, "BatteryLevel", name)
}

func TestCharacteristicName_KnownLongForm(t *testing.T) {
	name, ok := CharacteristicName("ef843b54-90a9-11ed-a1eb-0242ac120002")
	assert.True(t, ok)
	assert.Equal(t, "BatteryVoltage", name)
}

func TestCharacteristicName_Unknown(t *testing.T) {
	_, ok := CharacteristicName("dead")
	assert.False(t, ok)
}

func TestSubscribableCharacteristics_OnlyMarkedOnes(t *testing.T) {
	subs := SubscribableCharacteristics()
	assert.NotEmpty(t, subs)
	for _, c := range subs {
		assert.True(t, c.Subscribable)
	}
	for _, c := range subs {
		if c.Name == "BodyPartAssignment" {
			t.Fatal("BodyPartAssignment must not be subscribable")
		}
	}
}

func TestBodyPartAssignmentUUID_MatchesTableEntry(t *testing.T) {
	name, ok := CharacteristicName(BodyPartAssignmentUUID)
	assert.True(t, ok)
	assert.Equal(t, "BodyPartAssignment", name)
}
