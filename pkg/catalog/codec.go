package catalog

import (
	"encoding/json"
	"errors"
)

var errMissingID = errors.New("record has no id")

func encodeRecord(r Record) ([]byte, error) {
	if r.ID == "" {
		return nil, errMissingID
	}
	return json.Marshal(r)
}

func decodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	if r.ID == "" {
		return Record{}, errMissingID
	}
	return r, nil
}
