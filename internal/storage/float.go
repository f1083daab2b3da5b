package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that encodes ±Inf and NaN as the JSON strings "+Inf",
// "-Inf" and "NaN". Finite values stay plain numbers.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !(math.IsNaN(v) || math.IsInf(v, 0)) {
			return fmt.Errorf("storage: invalid float %q", s)
		}
		*f = Float(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Floats converts a metric map for encoding.
func Floats(m map[string]float64) map[string]Float {
	if m == nil {
		return nil
	}
	out := make(map[string]Float, len(m))
	for k, v := range m {
		out[k] = Float(v)
	}
	return out
}

func float64s(m map[string]Float) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

type metadataFields RunMetadata

// metadataWire shadows the fields of RunMetadata that may legitimately be
// non-finite: drift after a close encounter, min separation of a lone body.
type metadataWire struct {
	*metadataFields
	Metrics       map[string]Float `json:"metrics"`
	MomentumDrift Float            `json:"momentum_drift"`
	EnergyDrift   Float            `json:"energy_drift"`
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataWire{
		metadataFields: (*metadataFields)(&m),
		Metrics:        Floats(m.Metrics),
		MomentumDrift:  Float(m.MomentumDrift),
		EnergyDrift:    Float(m.EnergyDrift),
	})
}

func (m *RunMetadata) UnmarshalJSON(data []byte) error {
	w := metadataWire{metadataFields: (*metadataFields)(m)}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Metrics = float64s(w.Metrics)
	m.MomentumDrift = float64(w.MomentumDrift)
	m.EnergyDrift = float64(w.EnergyDrift)
	return nil
}
