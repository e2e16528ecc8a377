package model

import (
	"fmt"
	"strings"
)

// StrategyID identifies one of the fixed investment personas.
type StrategyID string

const (
	StrategyValue      StrategyID = "BUFFETT"
	StrategyContrarian StrategyID = "MARKS"
	StrategyMomentum   StrategyID = "ACKMAN"
	StrategyNeural     StrategyID = "NEURAL"
)

// StrategyIDs lists every persona in display order.
var StrategyIDs = []StrategyID{StrategyValue, StrategyContrarian, StrategyMomentum, StrategyNeural}

var strategyAliases = map[string]StrategyID{
	"buffett":    StrategyValue,
	"value":      StrategyValue,
	"marks":      StrategyContrarian,
	"contrarian": StrategyContrarian,
	"ackman":     StrategyMomentum,
	"momentum":   StrategyMomentum,
	"neural":     StrategyNeural,
	"random":     StrategyNeural,
}

// ParseStrategyID accepts either the persona tag or its style name, case-insensitive.
func ParseStrategyID(s string) (StrategyID, error) {
	id, ok := strategyAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported strategy: %q", s)
	}
	return id, nil
}

// Style is the short, human-friendly name of the persona's approach.
func (id StrategyID) Style() string {
	switch id {
	case StrategyValue:
		return "value"
	case StrategyContrarian:
		return "contrarian"
	case StrategyMomentum:
		return "momentum"
	case StrategyNeural:
		return "neural"
	default:
		return "unknown"
	}
}
