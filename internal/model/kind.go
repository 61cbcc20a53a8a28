// Package model trains one of three classifier families on demand and scores
// a single ticket with it.
package model

import (
	"fmt"
	"strings"

	"deskinsight/internal/domain"
)

// Kind is the closed set of model families.
type Kind int

const (
	KindRegression Kind = iota + 1
	KindTree
	KindForest
)

// Kinds lists every model family in display order.
var Kinds = []Kind{KindRegression, KindTree, KindForest}

func (k Kind) String() string {
	switch k {
	case KindRegression:
		return "regression"
	case KindTree:
		return "tree"
	case KindForest:
		return "forest"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	return k >= KindRegression && k <= KindForest
}

// ParseKind maps a model name to its Kind. Names are case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "regression":
		return KindRegression, nil
	case "tree":
		return KindTree, nil
	case "forest":
		return KindForest, nil
	}
	return 0, &domain.UnsupportedModelError{Kind: name}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, &domain.UnsupportedModelError{Kind: k.String()}
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
