package configs

import "reflect"

// Configurable types can be set from an enkel configuration script by a
// global variable named after the type.
type Configurable interface {
	EnkelConfigurable()
}

var configurableType = reflect.TypeFor[Configurable]()
