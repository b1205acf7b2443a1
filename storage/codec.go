package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/zeu5/ladders-rl/core"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrVersionMismatch = errors.New("record version mismatch")
	ErrCorrupt         = errors.New("corrupt snapshot encoding")
)

func EncodeJSON(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	if err := checkVersion(s.VersionedRecord); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func EncodeHistory(h *core.TrainingHistory) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeHistory(data []byte) (*core.TrainingHistory, error) {
	h := core.NewTrainingHistory()
	if err := json.Unmarshal(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema %d codec %d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

// table lines, one state per line:
// {"state":"12","entries":{"-1":-3.5,"+1":4.25}}
type tableLine struct {
	State   string             `json:"state"`
	Entries map[string]float64 `json:"entries"`
}

func EncodeTableLines(entries []Entry) []byte {
	bs := new(bytes.Buffer)
	var cur *tableLine
	flush := func() {
		if cur == nil {
			return
		}
		line, err := json.Marshal(cur)
		if err == nil {
			bs.Write(line)
			bs.Write([]byte("\n"))
		}
	}
	for _, e := range entries {
		state := e.State.Hash()
		if cur == nil || cur.State != state {
			flush()
			cur = &tableLine{State: state, Entries: make(map[string]float64)}
		}
		cur.Entries[e.Action] = e.Value
	}
	flush()
	return bs.Bytes()
}

func DecodeTableLines(r io.Reader) ([]Entry, error) {
	out := make([]Entry, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var line tableLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("error reading table contents: %w", err)
		}
		state, err := strconv.Atoi(line.State)
		if err != nil {
			return nil, fmt.Errorf("error reading table state %q: %w", line.State, err)
		}
		for _, a := range []core.Action{core.Decrement, core.Increment, core.Auto} {
			if v, ok := line.Entries[a.String()]; ok {
				out = append(out, Entry{State: core.Cell(state), Action: a.String(), Value: v})
				delete(line.Entries, a.String())
			}
		}
		if len(line.Entries) > 0 {
			return nil, fmt.Errorf("state %d: %w", state, core.ErrUnknownAction)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// binary field numbers
const (
	fieldID        protowire.Number = 1
	fieldRunID     protowire.Number = 2
	fieldBoard     protowire.Number = 3
	fieldAlpha     protowire.Number = 4
	fieldGamma     protowire.Number = 5
	fieldEpsilon0  protowire.Number = 6
	fieldSchema    protowire.Number = 7
	fieldCodec     protowire.Number = 8
	fieldEntry     protowire.Number = 9
	fieldEpisodes  protowire.Number = 10
	fieldCreatedAt protowire.Number = 11

	fieldEntryState  protowire.Number = 1
	fieldEntryAction protowire.Number = 2
	fieldEntryValue  protowire.Number = 3
)

// EncodeBinary writes the snapshot in protobuf wire format. CreatedAt is kept
// at millisecond precision.
func EncodeBinary(s Snapshot) ([]byte, error) {
	var b []byte
	b = appendString(b, fieldID, s.ID)
	b = appendString(b, fieldRunID, s.RunID)
	b = appendString(b, fieldBoard, s.Board)
	b = appendDouble(b, fieldAlpha, s.Alpha)
	b = appendDouble(b, fieldGamma, s.Gamma)
	b = appendDouble(b, fieldEpsilon0, s.Epsilon0)
	b = appendVarint(b, fieldSchema, uint64(s.SchemaVersion))
	b = appendVarint(b, fieldCodec, uint64(s.CodecVersion))
	b = appendVarint(b, fieldEpisodes, uint64(s.Episodes))
	if !s.CreatedAt.IsZero() {
		b = protowire.AppendTag(b, fieldCreatedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(s.CreatedAt.UnixMilli()))
	}
	for _, e := range s.Entries {
		a, err := core.ParseAction(e.Action)
		if err != nil {
			return nil, fmt.Errorf("entry for state %d: %w", e.State, err)
		}
		var eb []byte
		eb = appendVarint(eb, fieldEntryState, uint64(e.State))
		eb = appendVarint(eb, fieldEntryAction, uint64(a))
		eb = appendDouble(eb, fieldEntryValue, e.Value)
		b = protowire.AppendTag(b, fieldEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, eb)
	}
	return b, nil
}

func DecodeBinary(data []byte) (Snapshot, error) {
	var s Snapshot
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldID && typ == protowire.BytesType:
			return consumeString(b, &s.ID)
		case num == fieldRunID && typ == protowire.BytesType:
			return consumeString(b, &s.RunID)
		case num == fieldBoard && typ == protowire.BytesType:
			return consumeString(b, &s.Board)
		case num == fieldAlpha && typ == protowire.Fixed64Type:
			return consumeDouble(b, &s.Alpha)
		case num == fieldGamma && typ == protowire.Fixed64Type:
			return consumeDouble(b, &s.Gamma)
		case num == fieldEpsilon0 && typ == protowire.Fixed64Type:
			return consumeDouble(b, &s.Epsilon0)
		case num == fieldSchema && typ == protowire.VarintType:
			return consumeInt(b, &s.SchemaVersion)
		case num == fieldCodec && typ == protowire.VarintType:
			return consumeInt(b, &s.CodecVersion)
		case num == fieldEpisodes && typ == protowire.VarintType:
			return consumeInt(b, &s.Episodes)
		case num == fieldCreatedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			s.CreatedAt = time.UnixMilli(protowire.DecodeZigZag(v)).UTC()
			return n, nil
		case num == fieldEntry && typ == protowire.BytesType:
			eb, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			e, err := decodeEntry(eb)
			if err != nil {
				return n, err
			}
			s.Entries = append(s.Entries, e)
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if err := checkVersion(s.VersionedRecord); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldEntryState && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			e.State = core.Cell(v)
			return n, nil
		case num == fieldEntryAction && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			a := core.Action(v)
			if !a.Valid() {
				return n, fmt.Errorf("%w: action %d", ErrCorrupt, v)
			}
			e.Action = a.String()
			return n, nil
		case num == fieldEntryValue && typ == protowire.Fixed64Type:
			return consumeDouble(b, &e.Value)
		}
		return -1, nil
	})
	return e, err
}

// consumeFields walks a message. handle returns the bytes it consumed, or -1
// to skip an unknown field.
func consumeFields(data []byte, handle func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		data = data[n:]
		m, err := handle(num, typ, data)
		if err != nil {
			return fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, err)
		}
		if m < 0 {
			m = protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(m))
			}
		}
		data = data[m:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func consumeString(b []byte, out *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	*out = v
	return n, nil
}

func consumeDouble(b []byte, out *float64) (int, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	*out = math.Float64frombits(v)
	return n, nil
}

func consumeInt(b []byte, out *int) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	*out = int(v)
	return n, nil
}
