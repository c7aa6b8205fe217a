package permissions

import "encoding/json"

// MarshalJSON encodes the set as a JSON array, never null.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON accepts a JSON array of strings; null decodes to an empty set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var caps []string
	if err := json.Unmarshal(data, &caps); err != nil {
		return err
	}
	*s = NewSet(caps...)
	return nil
}
