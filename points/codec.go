package points

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/xraph/housecup/house"
)

// Top-level keys of the wire format.
const (
	KeyUserPoints  = "user_points"
	KeyHousePoints = "house_points"
)

// ErrMalformed is returned by Decode when data is not a valid snapshot.
var ErrMalformed = errors.New("points: malformed snapshot")

// ErrInvalidKey is returned by Encode for a member or house name that is
// not valid UTF-8. Such a key cannot be written without altering it.
var ErrInvalidKey = errors.New("points: key is not valid UTF-8")

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// Encode renders the snapshot in its wire format:
//
//	{
//	    "user_points": { "<member-id>": <int>, ... },
//	    "house_points": { "<house>": <int>, ... }
//	}
//
// Keys are written in slice order so member first-seen order is preserved.
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"` + KeyUserPoints + `":{`)
	for i, m := range s.Members {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, m.MemberID, m.Points); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`},"` + KeyHousePoints + `":{`)
	for i, h := range s.Houses {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, string(h.House), h.Points); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)

	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

func writeEntry(buf *bytes.Buffer, key string, value int64) error {
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("points: encode key %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatInt(value, 10))
	return nil
}

// Decode parses a snapshot in wire format. Object key order is kept.
// Missing sections decode as empty; anything else that does not match the
// format yields an error wrapping ErrMalformed. The house table is returned
// as found; callers normalize it against their house set.
func Decode(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: root is not an object", ErrMalformed)
	}

	s := &Snapshot{Members: []MemberTotal{}, Houses: []HouseTotal{}}

	positions := make(map[string]int)
	err := eachEntry(root, KeyUserPoints, func(key string, value int64) {
		if i, ok := positions[key]; ok {
			s.Members[i].Points = value
			return
		}
		positions[key] = len(s.Members)
		s.Members = append(s.Members, MemberTotal{MemberID: key, Points: value})
	})
	if err != nil {
		return nil, err
	}

	housePos := make(map[house.Name]int)
	err = eachEntry(root, KeyHousePoints, func(key string, value int64) {
		n := house.Name(key)
		if i, ok := housePos[n]; ok {
			s.Houses[i].Points = value
			return
		}
		housePos[n] = len(s.Houses)
		s.Houses = append(s.Houses, HouseTotal{House: n, Points: value})
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func eachEntry(root gjson.Result, section string, fn func(key string, value int64)) error {
	sec := root.Get(section)
	if !sec.Exists() {
		return nil
	}
	if !sec.IsObject() {
		return fmt.Errorf("%w: %s is not an object", ErrMalformed, section)
	}

	var err error
	sec.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("%w: %s[%q] is not a number", ErrMalformed, section, key.String())
			return false
		}
		n, perr := strconv.ParseInt(value.Raw, 10, 64)
		if perr != nil {
			err = fmt.Errorf("%w: %s[%q] is not an integer: %s", ErrMalformed, section, key.String(), value.Raw)
			return false
		}
		fn(key.String(), n)
		return true
	})
	return err
}
