package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeviceID = "device-7f3a"

func TestParseRawMessage(t *testing.T) {
	msgTime := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	t.Run("modern lte snapshot", func(t *testing.T) {
		data := []byte(`{"device_id":"device-7f3a","observed_at":"2024-04-26T15:09:30Z","cells":[
			{"type":"lte","registered":true,"ci":26543105,"tac":4401,"mcc_string":"310","mnc_string":"260"}]}`)
		snap, set, err := ParseRawMessage(RawMessage{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, testDeviceID, snap.DeviceID)
		assert.Equal(t, time.Date(2024, 4, 26, 15, 9, 30, 0, time.UTC), snap.ObservedAt)
		require.Len(t, set, 1)
		assert.Equal(t, LTEObservation{CI: 26543105, TAC: 4401, PLMN: PLMN{MCC: "310", MNC: "260"}, Registered: true}, set[0])
	})

	t.Run("legacy gsm snapshot", func(t *testing.T) {
		data := []byte(`{"device_id":"device-7f3a","cells":[
			{"type":"gsm","registered":true,"cid":501,"lac":12,"mcc":310,"mnc":26}]}`)
		snap, set, err := ParseRawMessage(RawMessage{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, msgTime, snap.ObservedAt)
		require.Len(t, set, 1)
		assert.Equal(t, GSMObservation{CID: 501, LAC: 12, PLMN: PLMN{MCC: "310", MNC: "26"}, Registered: true}, set[0])
	})

	t.Run("order preserved and unknown kept", func(t *testing.T) {
		data := []byte(`{"device_id":"device-7f3a","cells":[
			{"type":"NR","registered":false},
			{"type":"wcdma","registered":true,"cid":7,"lac":3,"mcc_string":"404","mnc_string":"45"}]}`)
		_, set, err := ParseRawMessage(RawMessage{Value: data})

		require.NoError(t, err)
		require.Len(t, set, 2)
		assert.Equal(t, UnknownObservation{Kind: "nr"}, set[0])
		assert.Equal(t, TechnologyWCDMA, set[1].Technology())
	})

	t.Run("empty cells", func(t *testing.T) {
		_, set, err := ParseRawMessage(RawMessage{Value: []byte(`{"device_id":"d","cells":[]}`)})
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, _, err := ParseRawMessage(RawMessage{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw message")
		assert.Equal(t, CodeInvalidArgument, ErrorCode(err))
	})

	t.Run("missing device id", func(t *testing.T) {
		_, _, err := ParseRawMessage(RawMessage{Value: []byte(`{"cells":[]}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate snapshot")
		assert.Equal(t, CodeInvalidArgument, ErrorCode(err))
	})

	t.Run("cell without type", func(t *testing.T) {
		_, _, err := ParseRawMessage(RawMessage{Value: []byte(`{"device_id":"d","cells":[{"cid":1,"lac":1}]}`)})
		require.Error(t, err)
		assert.Equal(t, CodeInvalidArgument, ErrorCode(err))
	})

	t.Run("lte without tac is incomplete", func(t *testing.T) {
		_, set, err := ParseRawMessage(RawMessage{Value: []byte(`{"device_id":"d","cells":[{"type":"lte","ci":1}]}`)})
		require.NoError(t, err)
		require.Len(t, set, 1)
		assert.Equal(t, IncompleteObservation{Kind: "lte", Reason: "lte cell requires ci and tac"}, set[0])

		_, err = Normalize(set)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ci and tac")
		assert.Equal(t, CodeInvalidArgument, ErrorCode(err))
	})

	t.Run("incomplete neighbor does not hide registered primary", func(t *testing.T) {
		data := []byte(`{"device_id":"d","cells":[
			{"type":"gsm","registered":true,"cid":501,"lac":12,"mcc_string":"310","mnc_string":"260"},
			{"type":"lte","registered":false,"tac":7}]}`)
		_, set, err := ParseRawMessage(RawMessage{Value: data})
		require.NoError(t, err)
		require.Len(t, set, 2)
		assert.IsType(t, IncompleteObservation{}, set[1])

		rec, err := Normalize(set)
		require.NoError(t, err)
		assert.Equal(t, CanonicalCellRecord{ID: 501, LocationAreaCode: 12, MobileCountryCode: "310", MobileNetworkCode: "260"}, rec)
	})

	t.Run("registered incomplete primary fails", func(t *testing.T) {
		data := []byte(`{"device_id":"d","cells":[
			{"type":"gsm","registered":false,"cid":501,"lac":12,"mcc_string":"310","mnc_string":"260"},
			{"type":"wcdma","registered":true,"cid":7}]}`)
		_, set, err := ParseRawMessage(RawMessage{Value: data})
		require.NoError(t, err)

		_, err = Normalize(set)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidArgument, ErrorCode(err))
	})
}

func TestWireCell_PLMN(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	tests := []struct {
		name     string
		cell     WireCell
		expected PLMN
	}{
		{"strings", WireCell{MCCString: str("310"), MNCString: str("026")}, PLMN{MCC: "310", MNC: "026"}},
		{"legacy", WireCell{MCC: num(310), MNC: num(26)}, PLMN{MCC: "310", MNC: "26"}},
		{"strings win over legacy", WireCell{MCCString: str("310"), MNCString: str("026"), MCC: num(1), MNC: num(2)}, PLMN{MCC: "310", MNC: "026"}},
		{"mixed", WireCell{MCCString: str("404"), MNC: num(45)}, PLMN{MCC: "404", MNC: "45"}},
		{"absent", WireCell{}, PLMN{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cell.plmn())
		})
	}
}
