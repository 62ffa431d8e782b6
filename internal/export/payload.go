package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ayusman/handfuse/internal/hand"
)

// ErrUnknownStatusField is returned for a status field the payload cannot fill.
var ErrUnknownStatusField = errors.New("unknown status field")

// Status fields. "arr1" is the frame counter as a one-element array, the
// shape older Unity clients read.
const (
	StatusResult = "result"
	StatusSeq    = "seq"
	StatusHands  = "hands"
	statusArr1   = "arr1"

	resultSuccess = "Success"
)

// Selection says which fields to send for each object.
type Selection struct {
	// HandFields are the Region fields sent for every hand, as hand_0, hand_1, ...
	HandFields []string
	// StatusName names the per-frame status object; empty disables it.
	StatusName   string
	StatusFields []string
}

// DefaultSelection sends label, anchor and landmarks per hand plus a status
// object carrying the frame counter.
func DefaultSelection() Selection {
	return Selection{
		HandFields:   []string{hand.FieldLabel, hand.FieldAnchor, hand.FieldLandmarks},
		StatusName:   "status",
		StatusFields: []string{StatusResult, StatusSeq},
	}
}

// Validate checks every selected field name.
func (s Selection) Validate() error {
	if _, err := (hand.Region{}).Fields(s.HandFields); err != nil {
		return err
	}
	if s.StatusName == "" {
		return nil
	}
	_, err := statusObject(Cycle{}, s.StatusFields)
	return err
}

// Payload is the serialized form of one cycle.
type Payload struct {
	Serial  string                    `json:"serial,omitempty"`
	Seq     uint64                    `json:"seq"`
	Objects map[string]map[string]any `json:"objects"`
}

// HandName returns the object name of the i-th hand in a cycle.
func HandName(i int) string {
	return "hand_" + strconv.Itoa(i)
}

// BuildPayload selects the configured fields from a cycle.
func BuildPayload(c Cycle, sel Selection) (Payload, error) {
	p := Payload{
		Serial:  c.Serial,
		Seq:     c.Seq,
		Objects: make(map[string]map[string]any, len(c.Hands)+1),
	}

	for i, r := range c.Hands {
		fields, err := r.Fields(sel.HandFields)
		if err != nil {
			return Payload{}, fmt.Errorf("build %s: %w", HandName(i), err)
		}
		p.Objects[HandName(i)] = fields
	}

	if sel.StatusName != "" {
		status, err := statusObject(c, sel.StatusFields)
		if err != nil {
			return Payload{}, fmt.Errorf("build %s: %w", sel.StatusName, err)
		}
		p.Objects[sel.StatusName] = status
	}

	return p, nil
}

func statusObject(c Cycle, names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		switch name {
		case StatusResult:
			out[name] = resultSuccess
		case StatusSeq:
			out[name] = c.Seq
		case statusArr1:
			out[name] = []uint64{c.Seq}
		case StatusHands:
			out[name] = len(c.Hands)
		default:
			return nil, fmt.Errorf("status field %q: %w", name, ErrUnknownStatusField)
		}
	}
	return out, nil
}
