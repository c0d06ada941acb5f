package cache

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

// decodeSet tracks which pilot/field pairs have already logged a decode
// failure during one Refresh, so a malformed value is logged once per
// refresh; every later refresh that still reads it logs it again.
type decodeSet map[string]bool

func (s decodeSet) warnOnce(logger *slog.Logger, field string, pilotID flight.PilotID, err error) {
	key := field + ":" + strconv.FormatInt(int64(pilotID), 10)
	if s[key] {
		return
	}
	s[key] = true
	logger.Warn("cache: decode error, substituting default", "field", field, "pilot_id", pilotID, "error", err)
}

func decodeLocation(raw string) (flight.Location, error) {
	var v flight.Location
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func decodeAction(raw string) (flight.PilotAction, error) {
	var v flight.PilotAction
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func decodePhysics(raw string) (flight.Physics, error) {
	var v flight.Physics
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func decodeShipInfo(raw string) (flight.ShipInfo, error) {
	var v flight.ShipInfo
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func encodeLocation(v flight.Location) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func encodeAction(v flight.PilotAction) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func encodePhysics(v flight.Physics) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func encodeShipInfo(v flight.ShipInfo) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// parsePilotID parses a hash field name (the pilot id as decimal text) into
// a PilotID, skipping malformed keys entirely (not a decode-of-value error;
// there's no pilot id to attribute the warning to).
func parsePilotID(field string) (flight.PilotID, bool) {
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, false
	}
	return flight.PilotID(n), true
}
