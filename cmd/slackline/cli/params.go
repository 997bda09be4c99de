// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by flag groups that register themselves.
// [StoreConfig] is one: every store command embeds it to get --config,
// --store-dir, and --verbose.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams returns a flag set bound to params, a pointer to a
// struct. It panics when params cannot be bound, since that is a bug in
// the command definition.
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for every field of *params tagged
// `flag:"name"` or `flag:"name,x"` (x being the shorthand), with help
// text from the desc tag. Tagged fields must be string or bool; both
// default to their zero value.
//
// Fields whose address implements [FlagBinder] bind themselves, and
// other embedded structs are walked recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	pointer := reflect.ValueOf(params)
	if pointer.Kind() != reflect.Pointer || pointer.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(pointer.Elem(), flagSet)
}

func bindStruct(value reflect.Value, flagSet *pflag.FlagSet) error {
	for i := range value.NumField() {
		field := value.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		target := value.Field(i).Addr().Interface()

		if binder, ok := target.(FlagBinder); ok {
			binder.AddFlags(flagSet)
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(value.Field(i), flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag, ok := field.Tag.Lookup("flag")
		if !ok {
			continue
		}
		name, shorthand, _ := strings.Cut(tag, ",")
		usage := field.Tag.Get("desc")

		switch target := target.(type) {
		case *string:
			flagSet.StringVarP(target, name, shorthand, "", usage)
		case *bool:
			flagSet.BoolVarP(target, name, shorthand, false, usage)
		default:
			return fmt.Errorf("field %s: unsupported type %s for --%s", field.Name, field.Type, name)
		}
	}
	return nil
}
