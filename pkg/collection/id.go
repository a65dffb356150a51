package collection

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// ID identifies a record inside a collection. Records written by the browser
// dashboard used numeric ids; those decode to their decimal text.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
