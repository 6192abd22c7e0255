// Package state holds the identifiers and credentials cached between runs.
//
// The cache is a dotenv file shared with the API tokens. It is read once at
// the start of a run and rewritten whole when identifiers change.
package state

import "maps"

// Keys used in the cache file.
const (
	KeyToken       = "TOKEN"
	KeyBypassToken = "BYPASS_TOKEN"
	KeyIPAddress   = "IP_ADDRESS"
	KeyZoneID      = "ZONE_ID"
	KeyRecordID    = "RECORD_ID"
	KeyAccountID   = "ACCOUNT_ID"
	KeyGroupID     = "GROUP_ID"
)

// State is the cached run state. An empty field means absent.
type State struct {
	IPAddress string
	ZoneID    string
	RecordID  string
	AccountID string
	GroupID   string

	// Token authorizes DNS calls, BypassToken authorizes Access calls.
	Token       string
	BypassToken string

	// Extra carries keys this program does not know so a rewrite keeps them.
	Extra map[string]string
}

// FromMap builds a State from dotenv key/value pairs.
func FromMap(m map[string]string) *State {
	s := &State{Extra: map[string]string{}}
	for k, v := range m {
		switch k {
		case KeyToken:
			s.Token = v
		case KeyBypassToken:
			s.BypassToken = v
		case KeyIPAddress:
			s.IPAddress = v
		case KeyZoneID:
			s.ZoneID = v
		case KeyRecordID:
			s.RecordID = v
		case KeyAccountID:
			s.AccountID = v
		case KeyGroupID:
			s.GroupID = v
		default:
			s.Extra[k] = v
		}
	}
	return s
}

// ToMap returns the dotenv key/value pairs for s. Empty fields are omitted.
func (s *State) ToMap() map[string]string {
	m := make(map[string]string, len(s.Extra)+7)
	maps.Copy(m, s.Extra)

	set := func(key, value string) {
		if value != "" {
			m[key] = value
		} else {
			delete(m, key)
		}
	}
	set(KeyToken, s.Token)
	set(KeyBypassToken, s.BypassToken)
	set(KeyIPAddress, s.IPAddress)
	set(KeyZoneID, s.ZoneID)
	set(KeyRecordID, s.RecordID)
	set(KeyAccountID, s.AccountID)
	set(KeyGroupID, s.GroupID)

	return m
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.Extra = maps.Clone(s.Extra)
	if c.Extra == nil {
		c.Extra = map[string]string{}
	}
	return &c
}
