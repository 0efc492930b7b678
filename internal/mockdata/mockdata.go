// Package mockdata loads and generates cell snapshot fixtures shared by the
// pipeline tests, the integration tests, and the genmock and validate tools.
package mockdata

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
)

// Case is one fixture entry: a device snapshot and either the record its
// primary cell normalizes to or the error code it must fail with.
type Case struct {
	Name          string              `json:"name"`
	Message       domain.CellSnapshot `json:"message"`
	Expected      *Expected           `json:"expected,omitempty"`
	ExpectedError string              `json:"expected_error,omitempty"`
}

// Expected is the normalized outcome of a successful case.
type Expected struct {
	Technology domain.Technology          `json:"technology"`
	Cell       domain.CanonicalCellRecord `json:"cell"`
}

// RawMessage encodes the case snapshot the way a device would publish it.
func (c Case) RawMessage(topic string) (domain.RawMessage, error) {
	payload, err := json.Marshal(c.Message)
	if err != nil {
		return domain.RawMessage{}, fmt.Errorf("marshal case %q: %w", c.Name, err)
	}
	return domain.RawMessage{
		Key:       []byte(c.Message.DeviceID),
		Value:     payload,
		Topic:     topic,
		Timestamp: c.Message.ObservedAt,
	}, nil
}

// Load reads a JSON fixture file.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return cases, nil
}

// Write stores cases as an indented JSON fixture.
func Write(path string, cases []Case) error {
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

var baseTime = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

var operators = []struct{ mcc, mnc string }{
	{"310", "260"},
	{"310", "410"},
	{"404", "45"},
	{"234", "15"},
	{"262", "01"},
	{"001", "01"},
}

var technologies = []domain.Technology{
	domain.TechnologyLTE,
	domain.TechnologyGSM,
	domain.TechnologyWCDMA,
}

// Generate builds n deterministic cases from seed. Roughly one in ten has no
// cells and one in ten is served by an unsupported radio; the rest carry
// one to four cells with at most one registered.
func Generate(seed uint64, n int) []Case {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cases := make([]Case, 0, n)

	for i := range n {
		c := Case{
			Name: fmt.Sprintf("generated-%03d", i+1),
			Message: domain.CellSnapshot{
				DeviceID:   fmt.Sprintf("device-%04d", rng.IntN(10000)),
				ObservedAt: baseTime.Add(time.Duration(i) * time.Minute),
				Cells:      []domain.WireCell{},
			},
		}

		switch roll := rng.IntN(10); roll {
		case 0:
			c.ExpectedError = domain.CodeNoDataAvailable
		case 1:
			c.Message.Cells = append(c.Message.Cells, domain.WireCell{Type: "nr", Registered: true})
			c.Message.Cells = append(c.Message.Cells, randomCell(rng, false))
			c.ExpectedError = domain.CodeUnsupportedTechnology
		default:
			count := 1 + rng.IntN(4)
			primary := 0
			registered := rng.IntN(4) != 0
			if registered {
				primary = rng.IntN(count)
			}
			var expected Expected
			for j := range count {
				cell := randomCell(rng, registered && j == primary)
				if j == primary {
					expected = expectedFor(cell)
				}
				c.Message.Cells = append(c.Message.Cells, cell)
			}
			c.Expected = &expected
		}
		cases = append(cases, c)
	}
	return cases
}

func randomCell(rng *rand.Rand, registered bool) domain.WireCell {
	op := operators[rng.IntN(len(operators))]
	cell := domain.WireCell{
		Type:       string(technologies[rng.IntN(len(technologies))]),
		Registered: registered,
	}

	// Older devices only report integer operator codes.
	if rng.IntN(5) == 0 {
		mcc, _ := strconv.Atoi(op.mcc)
		mnc, _ := strconv.Atoi(op.mnc)
		cell.MCC, cell.MNC = &mcc, &mnc
	} else {
		cell.MCCString, cell.MNCString = &op.mcc, &op.mnc
	}

	area := uint32(1 + rng.IntN(65534))
	switch domain.Technology(cell.Type) {
	case domain.TechnologyLTE:
		ci := uint64(rng.IntN(1 << 28))
		cell.CI, cell.TAC = &ci, &area
	default:
		cid := uint64(rng.IntN(1 << 16))
		if cell.Type == string(domain.TechnologyWCDMA) {
			cid = uint64(rng.IntN(1 << 28))
		}
		cell.CID, cell.LAC = &cid, &area
	}
	return cell
}

func expectedFor(cell domain.WireCell) Expected {
	mcc, mnc := "", ""
	if cell.MCCString != nil {
		mcc, mnc = *cell.MCCString, *cell.MNCString
	} else {
		mcc, mnc = strconv.Itoa(*cell.MCC), strconv.Itoa(*cell.MNC)
	}

	rec := domain.CanonicalCellRecord{MobileCountryCode: mcc, MobileNetworkCode: mnc}
	if cell.CI != nil {
		rec.ID, rec.LocationAreaCode = *cell.CI, *cell.TAC
	} else {
		rec.ID, rec.LocationAreaCode = *cell.CID, *cell.LAC
	}
	return Expected{Technology: domain.Technology(cell.Type), Cell: rec}
}
