package cloudflare

import (
	"encoding/json"
	"fmt"
)

// Rule set keys of an Access group document.
const (
	RuleSetInclude = "include"
	RuleSetRequire = "require"
	RuleSetExclude = "exclude"
)

// ruleSetKeys lists the rule sets in the order they are processed.
var ruleSetKeys = []string{RuleSetInclude, RuleSetRequire, RuleSetExclude}

// ipRuleType is the rule type key for IP range rules.
const ipRuleType = "ip"

// Rule is one Access rule: a single rule type ("ip", "email", "group", ...)
// mapped to its parameters.
type Rule map[string]map[string]any

// RuleSet is an ordered list of rules.
type RuleSet []Rule

// AccessGroup is an Access group document as returned by the API.
type AccessGroup map[string]any

// Name returns the group's "name" field.
func (g AccessGroup) Name() (string, bool) {
	name, ok := g["name"].(string)
	return name, ok
}

// SubstituteIP returns a new group document in which every "ip" rule of the
// include and require sets points at ip alone. Exclude rules are carried
// over untouched. The result holds the rule sets present in doc plus its
// name and nothing else, since the API replaces the whole document on PUT.
//
// doc is not modified.
func SubstituteIP(doc AccessGroup, ip string) (AccessGroup, error) {
	name, ok := doc["name"]
	if !ok {
		return nil, fmt.Errorf("%w: access group document has no name", ErrUnsuccessful)
	}

	out := AccessGroup{"name": name}

	for _, key := range ruleSetKeys {
		raw, present := doc[key]
		if !present {
			continue
		}

		rules, err := decodeRuleSet(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s rules: %w", ErrParse, key, err)
		}

		if key != RuleSetExclude {
			for _, rule := range rules {
				if _, isIP := rule[ipRuleType]; isIP {
					rule[ipRuleType] = map[string]any{ipRuleType: ip}
				}
			}
		}

		out[key] = rules
	}

	return out, nil
}

// decodeRuleSet converts a decoded JSON value into a fresh RuleSet. The
// round trip through JSON guarantees the result shares no maps with v.
func decodeRuleSet(v any) (RuleSet, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	return rules, nil
}
