package types

import (
	"fmt"
	"strings"
)

// Field names one unknown of the R13 system
type Field uint8

const (
	Theta Field = iota // temperature
	S                  // heat flux
	P                  // pressure
	U                  // velocity
	Sigma              // stress deviator
)

var fieldNames = [...]string{"theta", "s", "p", "u", "sigma"}

var fieldRanks = [...]int{0, 1, 0, 1, 2}

func (f Field) String() string {
	if int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", f)
	}
	return fieldNames[f]
}

// Rank is the tensor rank of the field: 0 scalar, 1 vector, 2 symmetric tensor
func (f Field) Rank() int {
	return fieldRanks[f]
}

func AllFields() []Field {
	return []Field{Theta, S, P, U, Sigma}
}

func ParseField(name string) (f Field, err error) {
	lname := strings.ToLower(strings.TrimSpace(name))
	for i, fn := range fieldNames {
		if fn == lname {
			f = Field(i)
			return
		}
	}
	err = fmt.Errorf("unknown field name: %q", name)
	return
}

// Mode selects which of the decoupled or coupled systems is solved
type Mode uint8

const (
	Heat Mode = iota
	Stress
	Coupled
)

func (m Mode) String() string {
	switch m {
	case Heat:
		return "heat"
	case Stress:
		return "stress"
	case Coupled:
		return "coupled"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

func ParseMode(name string) (m Mode, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "heat":
		m = Heat
	case "stress":
		m = Stress
	case "coupled":
		m = Coupled
	default:
		err = fmt.Errorf("unknown mode %q, must be one of heat, stress or coupled", name)
	}
	return
}

// Fields returns the unknowns of the mixed system in their assembly order
func (m Mode) Fields() []Field {
	switch m {
	case Heat:
		return []Field{Theta, S}
	case Stress:
		return []Field{P, U, Sigma}
	default:
		return []Field{Theta, S, P, U, Sigma}
	}
}

func (m Mode) HasHeat() bool   { return m == Heat || m == Coupled }
func (m Mode) HasStress() bool { return m == Stress || m == Coupled }
