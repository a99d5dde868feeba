package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexBool is a boolean that accepts true/false, "yes"/"no", "on"/"off" and numbers.
// yaml.v3 only resolves true/false as booleans, so the rest arrive as strings.
type FlexBool bool

// Bool returns the plain bool value.
func (fb FlexBool) Bool() bool {
	return bool(fb)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for FlexBool.
func (fb *FlexBool) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*fb = FlexBool(b)
	case "!!str":
		switch strings.ToLower(strings.TrimSpace(value.Value)) {
		case "yes", "y", "on":
			*fb = true
			return nil
		case "no", "n", "off", "":
			*fb = false
			return nil
		}
		b, err := strconv.ParseBool(value.Value)
		if err != nil {
			return fmt.Errorf("cannot unmarshal string %q into FlexBool", value.Value)
		}
		*fb = FlexBool(b)
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return err
		}
		*fb = FlexBool(f != 0)
	default:
		return fmt.Errorf("cannot unmarshal %s into FlexBool", value.Tag)
	}
	return nil
}
