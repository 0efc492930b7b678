package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Location sources recorded on a report.
const (
	LocationSourceOpenCellID = "opencellid"
	LocationSourceNone       = "none"
	LocationSourceFailed     = "failed"
)

// CellReport is the published form of a normalized snapshot.
type CellReport struct {
	ID         string              `json:"id"`
	DeviceID   string              `json:"device_id"`
	Technology Technology          `json:"technology"`
	Cell       CanonicalCellRecord `json:"cell"`
	ObservedAt time.Time           `json:"observed_at"`

	Location       *CellLocation `json:"location,omitempty"`
	LocationSource string        `json:"location_source,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// NewCellReport wraps a canonical record for publication and stamps
// processed_at from the package clock.
func NewCellReport(deviceID string, tech Technology, cell CanonicalCellRecord, observedAt time.Time) CellReport {
	return CellReport{
		ID:          generateID(deviceID, tech, cell),
		DeviceID:    deviceID,
		Technology:  tech,
		Cell:        cell,
		ObservedAt:  observedAt.UTC(),
		ProcessedAt: clock.Now().UTC(),
	}
}

// generateID produces a deterministic ID so that reprocessing the same
// snapshot yields the same report key.
func generateID(deviceID string, tech Technology, cell CanonicalCellRecord) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		deviceID, tech, cell.MobileCountryCode, cell.MobileNetworkCode, cell.LocationAreaCode, cell.ID)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if tech == "" {
		return short
	}
	return string(tech) + "-" + short
}
